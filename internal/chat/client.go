package chat

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/waste-chat/internal/widget"
	"github.com/richxcame/waste-chat/pkg/httpclient"
	"github.com/richxcame/waste-chat/pkg/i18n"
	"github.com/richxcame/waste-chat/pkg/logger"
	"go.uber.org/zap"
)

const (
	// ChatPath is the backend endpoint, relative to its base URL.
	ChatPath = "/chat"

	// NetworkErrorMessage is shown when the backend cannot be reached.
	// It is not localized.
	NetworkErrorMessage = "Sorry — I couldn't reach the server. Is the backend running?"

	// FallbackErrorMessage is shown when the backend fails without saying why.
	FallbackErrorMessage = "Something went wrong."
)

var exchangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_exchanges_total",
		Help: "Total number of chat exchanges with the backend by outcome",
	},
	[]string{"outcome"},
)

// FailureHook is told about exchanges that never reached the backend.
type FailureHook func(ctx context.Context, err error)

// Option configures a Client.
type Option func(*Client)

// WithCatalog resolves display strings from catalog instead of the
// compiled-in table.
func WithCatalog(catalog *i18n.Catalog) Option {
	return func(c *Client) {
		c.catalog = catalog
	}
}

// WithFailureHook sets the hook called on transport failures.
func WithFailureHook(hook FailureHook) Option {
	return func(c *Client) {
		c.onFailure = hook
	}
}

// Client runs one question/answer exchange per submission and renders it
// into a message log.
type Client struct {
	backend   BackendInterface
	log       LogInterface
	lang      LanguageInterface
	catalog   *i18n.Catalog
	onFailure FailureHook
}

// NewClient creates a chat client rendering into log.
func NewClient(backend BackendInterface, log LogInterface, lang LanguageInterface, opts ...Option) *Client {
	c := &Client{
		backend: backend,
		log:     log,
		lang:    lang,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendMessage submits the input's text. Blank input is ignored.
//
// The user's text is appended escaped, the input cleared, and a loading
// entry shown until the backend answers. The loading entry is always removed
// before the answer or error is appended. It blocks for the whole round trip;
// concurrent calls each track their own loading entry. The outcome is
// empty when the input was blank.
func (c *Client) SendMessage(ctx context.Context, input Input) Outcome {
	text := strings.TrimSpace(input.Value())
	if text == "" {
		return ""
	}

	lang := c.lang.Language(ctx)
	bundle := c.bundle(lang)

	c.log.Append(widget.EscapeHTML(text), widget.RoleUser, widget.AppendOptions{})
	input.Clear()

	loadingID := c.log.Append(bundle.Thinking, widget.RoleLoading, widget.AppendOptions{})

	body, err := c.backend.Post(ctx, ChatPath, ChatRequest{Message: text, Lang: lang}, nil)
	if err != nil {
		if _, ok := httpclient.AsHTTPError(err); !ok {
			c.log.Remove(loadingID)
			c.log.Append(NetworkErrorMessage, widget.RoleAssistant, widget.AppendOptions{})
			logger.WithContext(ctx).Error("chat backend unreachable", zap.Error(err))
			if c.onFailure != nil {
				c.onFailure(ctx, err)
			}
			exchangesTotal.WithLabelValues(string(OutcomeTransportError)).Inc()
			return OutcomeTransportError
		}
	}

	c.log.Remove(loadingID)

	var resp ChatResponse
	decodeErr := json.Unmarshal(body, &resp)

	if err != nil || decodeErr != nil || !resp.OK {
		message := FallbackErrorMessage
		if decodeErr == nil && resp.Error != "" {
			message = resp.Error
		}
		c.log.Append(widget.EscapeHTML(message), widget.RoleAssistant, widget.AppendOptions{})
		logger.WithContext(ctx).Warn("chat backend reported failure",
			zap.String("lang", lang),
			zap.String("error", message),
			zap.NamedError("transport", err),
		)
		exchangesTotal.WithLabelValues(string(OutcomeBackendError)).Inc()
		return OutcomeBackendError
	}

	c.log.Append(resp.Reply, widget.RoleAssistant, widget.AppendOptions{HTML: true})
	exchangesTotal.WithLabelValues(string(OutcomeOK)).Inc()
	return OutcomeOK
}

// SendText submits text as if it had been typed into the input.
func (c *Client) SendText(ctx context.Context, text string) Outcome {
	return c.SendMessage(ctx, &TextInput{Text: text})
}

func (c *Client) bundle(lang string) i18n.Bundle {
	if c.catalog != nil {
		return c.catalog.For(lang)
	}
	return i18n.For(lang)
}

// TextInput is an Input holding a fixed value.
type TextInput struct {
	Text    string
	Cleared bool
}

func (t *TextInput) Value() string { return t.Text }

func (t *TextInput) Clear() {
	t.Text = ""
	t.Cleared = true
}
