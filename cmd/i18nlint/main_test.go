package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocale(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "fr.yaml", "language: fr\nmessages:\n  send: \"Expédier\"\n")

	tests := []struct {
		name   string
		fail   bool
		strict bool
		want   int
	}{
		{"report only", false, true, 0},
		{"missing keys allowed", true, false, 0},
		{"missing keys strict", true, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.want, run(&out, dir, tt.fail, tt.strict))
			assert.Contains(t, out.String(), "--- [fr] ---")
			assert.Contains(t, out.String(), "Unknown keys: None")
		})
	}
}

func TestRun_UnknownAndEmptyKeys(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "es.yaml", "language: es\nmessages:\n  greeting: \"Hola\"\n  send: \"  \"\n")

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, dir, true, false))
	assert.Contains(t, out.String(), "Unknown keys:\n  - greeting")
	assert.Contains(t, out.String(), "Empty keys:\n  - send")
}

func TestRun_UnsupportedLanguage(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "de.yaml", "language: de\nmessages:\n  send: \"Senden\"\n")

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, dir, true, false))
	assert.Contains(t, out.String(), "File errors:")
	assert.Contains(t, out.String(), `unsupported language "de"`)
}

func TestRun_MissingDir(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, filepath.Join(t.TempDir(), "nope"), false, false))
	assert.Contains(t, out.String(), "Error:")
}
