package chat

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/richxcame/waste-chat/internal/widget"
	"github.com/richxcame/waste-chat/pkg/httpclient"
	"github.com/richxcame/waste-chat/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func guardedSettings(name string) resilience.Settings {
	return resilience.BuildSettings(name, time.Minute, time.Hour, 2, 1)
}

func TestGuardedBackend_PassesThrough(t *testing.T) {
	backend := new(MockBackend)
	backend.On("Post", mock.Anything, ChatPath, mock.Anything, mock.Anything).
		Return([]byte(`{"ok":true,"reply":"hi"}`), nil)

	g := NewGuardedBackend(backend, guardedSettings("test-pass"))

	data, err := g.Post(context.Background(), ChatPath, ChatRequest{Message: "x", Lang: "en"}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"reply":"hi"}`, string(data))
	assert.Equal(t, "closed", g.State())
}

func TestGuardedBackend_ErrorStatusDoesNotTrip(t *testing.T) {
	httpErr := &httpclient.HTTPError{StatusCode: http.StatusInternalServerError, Body: []byte(`{"ok":false}`)}
	backend := new(MockBackend)
	backend.On("Post", mock.Anything, ChatPath, mock.Anything, mock.Anything).Return([]byte(nil), httpErr)

	g := NewGuardedBackend(backend, guardedSettings("test-status"))

	for i := 0; i < 5; i++ {
		_, err := g.Post(context.Background(), ChatPath, nil, nil)
		got, ok := httpclient.AsHTTPError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
	}
	assert.Equal(t, "closed", g.State())
	backend.AssertNumberOfCalls(t, "Post", 5)
}

func TestGuardedBackend_TransportFailuresOpen(t *testing.T) {
	backend := new(MockBackend)
	backend.On("Post", mock.Anything, ChatPath, mock.Anything, mock.Anything).
		Return([]byte(nil), errors.New("connection refused"))

	g := NewGuardedBackend(backend, guardedSettings("test-open"))

	for i := 0; i < 2; i++ {
		_, err := g.Post(context.Background(), ChatPath, nil, nil)
		require.Error(t, err)
	}
	assert.Equal(t, "open", g.State())

	_, err := g.Post(context.Background(), ChatPath, nil, nil)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	backend.AssertNumberOfCalls(t, "Post", 2)
}

func TestGuardedBackend_OpenBreakerShowsApology(t *testing.T) {
	backend := new(MockBackend)
	backend.On("Post", mock.Anything, ChatPath, mock.Anything, mock.Anything).
		Return([]byte(nil), errors.New("connection refused"))

	g := NewGuardedBackend(backend, guardedSettings("test-apology"))
	for i := 0; i < 2; i++ {
		_, _ = g.Post(context.Background(), ChatPath, nil, nil)
	}

	log := widget.NewMessageLog(nil)
	var hookErr error
	client := NewClient(g, log, fixedLanguage("en"), WithFailureHook(func(_ context.Context, err error) {
		hookErr = err
	}))

	outcome := client.SendText(context.Background(), "When is pickup?")

	assert.Equal(t, OutcomeTransportError, outcome)
	assert.ErrorIs(t, hookErr, resilience.ErrCircuitOpen)
	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, NetworkErrorMessage, entries[1].Content)
	backend.AssertNumberOfCalls(t, "Post", 2)
}
