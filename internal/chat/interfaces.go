package chat

import (
	"context"

	"github.com/richxcame/waste-chat/internal/widget"
)

// BackendInterface is the transport used to reach the chat endpoint.
type BackendInterface interface {
	Post(ctx context.Context, path string, body interface{}, headers map[string]string) ([]byte, error)
}

// LogInterface is the message log a conversation is rendered into.
type LogInterface interface {
	Append(content string, role widget.Role, opts widget.AppendOptions) string
	Remove(id string)
}

// LanguageInterface supplies the active language code.
type LanguageInterface interface {
	Language(ctx context.Context) string
}

// Input is the text field a submission is read from.
type Input interface {
	Value() string
	Clear()
}
