package i18n

import (
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

func TestFor_AllSupportedLanguagesArePopulated(t *testing.T) {
	for _, lang := range Supported() {
		t.Run(lang, func(t *testing.T) {
			b := For(lang)
			assert.Equal(t, lang, b.Lang)
			for _, key := range Keys {
				assert.NotEmpty(t, b.Get(key), "key %s", key)
			}
		})
	}
}

func TestFor_English(t *testing.T) {
	b := For("en")
	assert.Equal(t, "Kingston Waste Collection Assistant", b.Title)
	assert.Equal(t, "Thinking...", b.Thinking)
	assert.Equal(t, "Send", b.Send)
}

func TestFor_French(t *testing.T) {
	b := For("fr")
	assert.Equal(t, "Envoyer", b.Send)
	assert.Equal(t, "Réflexion...", b.Thinking)
}

func TestFor_Chinese(t *testing.T) {
	assert.Equal(t, "发送", For("zh").Send)
}

func TestFor_FallsBackToEnglish_UnknownLang(t *testing.T) {
	b := For("de")
	assert.Equal(t, For("en"), b)
	assert.Equal(t, "en", b.Lang)
}

func TestFor_EmptyLang_UsesEnglish(t *testing.T) {
	assert.Equal(t, For("en"), For(""))
}

func TestFor_IsCaseSensitive(t *testing.T) {
	assert.Equal(t, "en", For("FR").Lang)
}

func TestTranslate_Spanish(t *testing.T) {
	assert.Equal(t, "Pensando...", Translate(KeyThinking, "es"))
}

func TestTranslate_FallsBackToEnglish_UnknownLang(t *testing.T) {
	assert.Equal(t, "Change language", Translate(KeyChangeLang, "tk"))
}

func TestTranslate_UnknownKey_ReturnsKey(t *testing.T) {
	assert.Equal(t, "does.not.exist", Translate("does.not.exist", "en"))
}

func TestBundle_GetUnknownKey(t *testing.T) {
	assert.Equal(t, "", For("en").Get("nope"))
}

func TestSupported_ReturnsCopy(t *testing.T) {
	langs := Supported()
	langs[0] = "xx"
	assert.True(t, IsSupported("en"))
	assert.False(t, IsSupported("xx"))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"fr-CA,fr;q=0.9,en;q=0.8", "fr"},
		{"es-MX", "es"},
		{"zh-CN,zh;q=0.9", "zh"},
		{"en-US,en;q=0.5", "en"},
		{"de-DE", "en"},
		{"", "en"},
		{"not a header ;;;", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.expected, Match(tt.header))
		})
	}
}

func TestCatalog_LoadYAMLDir_Overrides(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "fr.yaml", "language: fr\nmessages:\n  send: \"Expédier\"\n")
	writeLocale(t, dir, "README.md", "ignored")

	c := Default()
	require.NoError(t, c.LoadYAMLDir(dir))

	assert.Equal(t, "Expédier", c.For("fr").Send)
	assert.Equal(t, "Réflexion...", c.For("fr").Thinking)
	// package-level table is untouched
	assert.Equal(t, "Envoyer", For("fr").Send)
}

func TestCatalog_LoadYAMLDir_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "fr.yaml", "language: fr\nmessages:\n  greeting: \"Bonjour\"\n")

	err := Default().LoadYAMLDir(dir)
	assert.Error(t, err)
}

func TestCatalog_LoadYAMLDir_UnsupportedLanguage(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "de.yml", "language: de\nmessages:\n  send: \"Senden\"\n")

	err := Default().LoadYAMLDir(dir)
	assert.Error(t, err)
}

func TestCatalog_LoadYAMLDir_MissingLanguageField(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "x.yaml", "messages:\n  send: \"Senden\"\n")

	err := Default().LoadYAMLDir(dir)
	assert.Error(t, err)
}

func TestCatalog_LoadYAMLDir_MissingDir(t *testing.T) {
	err := Default().LoadYAMLDir(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestCatalog_Validate(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())

	require.NoError(t, c.Register("es", map[string]string{KeyTip: "  "}))
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "es.tip")
}

func TestLint(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "fr.yaml", "language: fr\nmessages:\n  send: \"\"\n  greeting: \"Bonjour\"\n")
	writeLocale(t, dir, "de.yaml", "language: de\nmessages: {}\n")

	res, err := Lint(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"fr"}, res.Languages)
	assert.Equal(t, []string{KeySend}, res.EmptyKeys["fr"])
	assert.Equal(t, []string{"greeting"}, res.UnknownKeys["fr"])
	assert.Len(t, res.MissingKeys["fr"], len(Keys)-1)
	assert.Len(t, res.Errors, 1)
	assert.True(t, res.HasIssues(false))
}

func TestLint_MissingKeysOnlyStrict(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "es.yaml", "language: es\nmessages:\n  send: \"Mandar\"\n")

	res, err := Lint(dir)
	require.NoError(t, err)

	assert.False(t, res.HasIssues(false))
	assert.True(t, res.HasIssues(true))
}
