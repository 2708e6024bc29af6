package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/richxcame/waste-chat/internal/chat"
	"github.com/richxcame/waste-chat/internal/widget"
	"github.com/richxcame/waste-chat/pkg/logger"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Session is one rendered page: its document, message log and chat client.
type Session struct {
	ID        string
	ProfileID string
	Doc       *widget.Document
	Log       *widget.MessageLog
	Chat      *chat.Client

	mu          sync.Mutex
	lastSeen    time.Time
	unsubscribe func()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Registry holds live sessions in memory.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	onEvict  []func(*Session)
	inUse    func(id string) bool
}

// NewRegistry creates a registry evicting sessions idle for longer than ttl.
// A non-positive ttl keeps sessions forever.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// OnEvict registers fn to run for every evicted session.
func (r *Registry) OnEvict(fn func(*Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = append(r.onEvict, fn)
}

// KeepWhile protects sessions for which inUse reports true from eviction.
// Their idle clock restarts at every sweep while they are in use.
func (r *Registry) KeepWhile(inUse func(id string) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inUse = inUse
}

// Add stores s.
func (r *Registry) Add(s *Session) {
	s.touch(r.now())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get returns the session and marks it active.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	now := r.now()
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	var evicted []*Session
	for id, s := range r.sessions {
		if !s.idleSince().Before(cutoff) {
			continue
		}
		if r.inUse != nil && r.inUse(id) {
			s.touch(now)
			continue
		}
		evicted = append(evicted, s)
		delete(r.sessions, id)
	}
	hooks := r.onEvict
	r.mu.Unlock()

	for _, s := range evicted {
		s.close()
		for _, fn := range hooks {
			fn(s)
		}
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logger.Debug("evicted idle sessions", zap.Int("count", n), zap.Int("remaining", r.Len()))
			}
		}
	}
}
