package server

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/richxcame/waste-chat/internal/chat"
	"github.com/richxcame/waste-chat/internal/widget"
	"github.com/richxcame/waste-chat/pkg/common"
	"github.com/richxcame/waste-chat/pkg/i18n"
	"github.com/richxcame/waste-chat/pkg/logger"
	"github.com/richxcame/waste-chat/pkg/middleware"
	"github.com/richxcame/waste-chat/pkg/preferences"
	"github.com/richxcame/waste-chat/pkg/ratelimit"
	ws "github.com/richxcame/waste-chat/pkg/websocket"
	"go.uber.org/zap"
)

//go:embed web/index.html
var pageTemplate []byte

//go:embed web/widget.js
var widgetScript []byte

const (
	// ProfileCookie identifies the browser profile a language preference belongs to.
	ProfileCookie = "kw_profile"
	profileMaxAge = 365 * 24 * 60 * 60

	// RootID is the element carrying the session id for the browser script.
	RootID = "widget"

	// Websocket message types.
	MsgAppend     = string(widget.EventAppend)
	MsgRemove     = string(widget.EventRemove)
	MsgClearInput = "clear_input"
	MsgSubmit     = "submit"
	MsgLimited    = "rate_limited"
	MsgShutdown   = "shutdown"

	maxMessageLength = 2000
)

// Options tunes the handler.
type Options struct {
	// LangFromBrowser seeds a new profile's language from Accept-Language
	// instead of English.
	LangFromBrowser bool
	// SecureCookies marks the profile cookie Secure.
	SecureCookies bool
	// AllowedOrigins lists websocket origins besides the page's own; "*" allows any.
	AllowedOrigins []string
	// OnFailure is told about chat exchanges that never reached the backend.
	OnFailure chat.FailureHook
	// Page replaces the embedded page template.
	Page []byte
	// Limiter caps submissions per browser profile. Nil disables limiting.
	Limiter *ratelimit.Limiter
}

// SubmitRequest is the body of POST /api/messages.
type SubmitRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Message   string `json:"message" validate:"max=2000"`
}

type wsQuery struct {
	Session string `form:"session" validate:"required,uuid"`
}

// Handler serves the widget page and its session endpoints.
type Handler struct {
	store    preferences.Store
	catalog  *i18n.Catalog
	backend  chat.BackendInterface
	sessions *Registry
	hub      *ws.Hub
	opts     Options
	page     []byte
	upgrader websocket.Upgrader
	inflight sync.WaitGroup
}

// NewHandler creates a handler. The hub must be running.
func NewHandler(store preferences.Store, catalog *i18n.Catalog, backend chat.BackendInterface, sessions *Registry, hub *ws.Hub, opts Options) *Handler {
	if catalog == nil {
		catalog = i18n.Default()
	}
	h := &Handler{
		store:    store,
		catalog:  catalog,
		backend:  backend,
		sessions: sessions,
		hub:      hub,
		opts:     opts,
		page:     pageTemplate,
	}
	if len(opts.Page) > 0 {
		h.page = opts.Page
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	hub.RegisterHandler(MsgSubmit, h.handleSocketSubmit)
	sessions.KeepWhile(func(id string) bool {
		return len(hub.GetClientsInSession(id)) > 0
	})
	sessions.OnEvict(func(s *Session) {
		hub.RemoveSession(s.ID)
	})
	return h
}

// RegisterRoutes registers the widget routes.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Index)
	r.GET("/lang/:code", h.ChangeLanguage)
	r.GET("/ws", h.HandleWebSocket)
	r.GET("/static/widget.js", h.Script)

	api := r.Group("/api")
	api.Use(middleware.MaxBodySize(16 << 10))
	{
		api.POST("/messages", middleware.ValidateJSONContentType(), h.SubmitMessage)
	}
}

// NotifyShutdown tells every open page that the server is going away.
func (h *Handler) NotifyShutdown() {
	h.hub.SendToAll(&ws.Message{Type: MsgShutdown, Timestamp: time.Now()})
}

// Wait blocks until every in-flight submission has finished.
func (h *Handler) Wait() {
	h.inflight.Wait()
}

// Index renders a fresh session page in the profile's language.
// GET /
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	profileID := h.profileID(c)
	resolver := preferences.NewResolver(h.store, profileID)

	if h.opts.LangFromBrowser {
		resolver.EnsureDefaultTo(ctx, i18n.Match(c.GetHeader("Accept-Language")))
	} else {
		resolver.EnsureDefault(ctx)
	}

	sess, err := h.newSession(profileID, resolver)
	if err != nil {
		logger.WithContext(ctx).Error("failed to build page", zap.Error(err))
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to render page")
		return
	}
	widget.Populate(sess.Doc, resolver.Bundle(ctx, h.catalog))

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := sess.Doc.Render(c.Writer); err != nil {
		logger.WithContext(ctx).Warn("failed to write page", zap.Error(err))
	}
}

// ChangeLanguage stores the profile's language and sends the browser back to the page.
// GET /lang/:code
func (h *Handler) ChangeLanguage(c *gin.Context) {
	resolver := preferences.NewResolver(h.store, h.profileID(c))

	if err := resolver.SetLanguage(c.Request.Context(), c.Param("code")); err != nil {
		if errors.Is(err, preferences.ErrUnsupportedLanguage) {
			common.ErrorResponse(c, http.StatusBadRequest, "unsupported language")
			return
		}
		logger.WithContext(c.Request.Context()).Error("failed to store language", zap.Error(err))
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to store language")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitMessage starts a chat exchange for a session and returns immediately.
// POST /api/messages
func (h *Handler) SubmitMessage(c *gin.Context) {
	var req SubmitRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	sess, err := h.sessions.Get(req.SessionID)
	if err != nil {
		common.ErrorResponse(c, http.StatusNotFound, "session not found")
		return
	}
	if h.opts.Limiter != nil && !ratelimit.Enforce(c, h.opts.Limiter, sess.ProfileID) {
		return
	}

	accepted := strings.TrimSpace(req.Message) != ""
	if accepted {
		h.submit(c.Request.Context(), sess, req.Message)
	}
	common.SuccessResponse(c, http.StatusAccepted, gin.H{"accepted": accepted})
}

// HandleWebSocket streams a session's log events to the browser.
// GET /ws?session=<id>
func (h *Handler) HandleWebSocket(c *gin.Context) {
	var q wsQuery
	if err := middleware.ValidateQuery(c, &q); err != nil {
		middleware.RespondWithValidationError(c, err)
		return
	}

	sess, err := h.sessions.Get(q.Session)
	if err != nil {
		common.ErrorResponse(c, http.StatusNotFound, "session not found")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithContext(c.Request.Context()).Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(uuid.NewString(), conn, h.hub, sess.ID, logger.WithContext(c.Request.Context()))

	// The log is held while the snapshot is queued and the client joins,
	// so live events follow the replayed entries.
	joined := false
	sess.Log.Replay(func(snapshot []widget.Event) {
		for _, e := range snapshot {
			client.Enqueue(eventMessage(sess.ID, e))
		}
		joined = h.hub.Join(client)
	})
	if !joined {
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// Script serves the browser script.
// GET /static/widget.js
func (h *Handler) Script(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", widgetScript)
}

func (h *Handler) handleSocketSubmit(client *ws.Client, msg *ws.Message) {
	sess, err := h.sessions.Get(msg.SessionID)
	if err != nil {
		return
	}
	text, _ := msg.Data["message"].(string)
	if strings.TrimSpace(text) == "" || utf8.RuneCountInString(text) > maxMessageLength {
		return
	}

	if h.opts.Limiter != nil {
		result, err := h.opts.Limiter.Allow(context.Background(), sess.ProfileID)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
		} else if !result.Allowed {
			client.Enqueue(&ws.Message{
				Type:      MsgLimited,
				SessionID: sess.ID,
				Data:      map[string]interface{}{"retry_after": ratelimit.RetryAfterSeconds(result)},
				Timestamp: time.Now(),
			})
			return
		}
	}
	h.submit(context.Background(), sess, text)
}

// submit runs the exchange on its own goroutine. The request context only
// contributes its values; the exchange outlives the HTTP request.
func (h *Handler) submit(ctx context.Context, sess *Session, text string) {
	ctx = context.WithoutCancel(ctx)
	input := &sessionInput{
		text: text,
		clear: func() {
			h.hub.SendToSession(sess.ID, &ws.Message{Type: MsgClearInput, SessionID: sess.ID, Timestamp: time.Now()})
		},
	}

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		sess.Chat.SendMessage(ctx, input)
	}()
}

func (h *Handler) newSession(profileID string, resolver *preferences.Resolver) (*Session, error) {
	doc, err := widget.ParseDocument(bytes.NewReader(h.page))
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	doc.SetAttr(RootID, "data-session", id)

	log := widget.NewMessageLog(doc)
	sess := &Session{
		ID:        id,
		ProfileID: profileID,
		Doc:       doc,
		Log:       log,
		Chat: chat.NewClient(h.backend, log, resolver,
			chat.WithCatalog(h.catalog),
			chat.WithFailureHook(h.opts.OnFailure),
		),
	}
	sess.unsubscribe = log.Subscribe(widget.ObserverFunc(func(e widget.Event) {
		h.hub.SendToSession(id, eventMessage(id, e))
	}))
	h.sessions.Add(sess)
	return sess, nil
}

// profileID returns the profile cookie, issuing a new one if absent.
func (h *Handler) profileID(c *gin.Context) string {
	if v, err := c.Cookie(ProfileCookie); err == nil {
		if _, err := uuid.Parse(v); err == nil {
			return v
		}
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ProfileCookie, id, profileMaxAge, "/", "", h.opts.SecureCookies, true)
	return id
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func eventMessage(sessionID string, e widget.Event) *ws.Message {
	data := map[string]interface{}{
		"id":   e.ID,
		"role": string(e.Role),
	}
	if e.Type == widget.EventAppend {
		data["html"] = e.Markup
		data["scroll"] = true
	}
	return &ws.Message{
		Type:      string(e.Type),
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// sessionInput is the browser's text field as seen from the server.
type sessionInput struct {
	text  string
	clear func()
}

func (i *sessionInput) Value() string { return i.text }

func (i *sessionInput) Clear() {
	i.text = ""
	i.clear()
}
