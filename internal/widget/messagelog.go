package widget

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// Role is the kind of chat entry; it doubles as the CSS class.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleLoading   Role = "loading"
)

// EventType names a log mutation.
type EventType string

const (
	EventAppend EventType = "append"
	EventRemove EventType = "remove"
)

// Entry is one visible chat turn.
type Entry struct {
	ID      string
	Role    Role
	Content string
	HTML    bool
}

// AppendOptions controls how Append renders content.
type AppendOptions struct {
	// HTML inserts the content untouched. Only backend replies use it.
	HTML bool
}

// Event describes a mutation of the log. Markup is the rendered entry for
// appends and empty for removals.
type Event struct {
	Type   EventType
	ID     string
	Role   Role
	Markup string
}

// Observer receives log events in the order they happened.
// OnLogEvent is called with the log locked and must not block.
type Observer interface {
	OnLogEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnLogEvent(e Event) { f(e) }

// MessageLog is the list of chat entries shown in the page's chat container.
type MessageLog struct {
	mu        sync.Mutex
	doc       *Document
	entries   []Entry
	observers map[int]Observer
	nextObs   int

	now  func() time.Time
	intn func(int) int
}

// NewMessageLog binds a log to doc. A nil doc keeps entries in memory only.
func NewMessageLog(doc *Document) *MessageLog {
	return &MessageLog{
		doc:       doc,
		observers: make(map[int]Observer),
		now:       time.Now,
		intn:      rand.IntN,
	}
}

// Subscribe registers o and returns a function that unregisters it.
func (l *MessageLog) Subscribe(o Observer) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextObs
	l.nextObs++
	l.observers[id] = o
	return func() {
		l.mu.Lock()
		delete(l.observers, id)
		l.mu.Unlock()
	}
}

// Append adds an entry at the end of the chat container and returns its id.
// Plain content is formatted; callers escape untrusted text first.
func (l *MessageLog) Append(content string, role Role, opts AppendOptions) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.newID()
	entry := Entry{ID: id, Role: role, Content: content, HTML: opts.HTML}
	markup := renderEntry(entry)

	if l.doc != nil && l.doc.Has(IDContainer) {
		// ParseFragment only fails on reader errors.
		_ = l.doc.AppendHTML(IDContainer, markup)
	}
	l.entries = append(l.entries, entry)
	l.notify(Event{Type: EventAppend, ID: id, Role: role, Markup: markup})
	return id
}

// Remove deletes the entry with the given id. Unknown ids are ignored.
func (l *MessageLog) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, e := range l.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	role := l.entries[idx].Role
	l.entries = append(l.entries[:idx], l.entries[idx+1:]...)
	if l.doc != nil {
		l.doc.Remove(id)
	}
	l.notify(Event{Type: EventRemove, ID: id, Role: role})
}

// Entries returns a copy of the current entries, oldest first.
func (l *MessageLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *MessageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Replay calls fn with the append events that rebuild the current log.
// Observers receive nothing while fn runs, so a subscriber added inside fn
// sees every later event after the snapshot and none twice.
func (l *MessageLog) Replay(fn func([]Event)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.snapshot())
}

func (l *MessageLog) snapshot() []Event {
	events := make([]Event, 0, len(l.entries))
	for _, e := range l.entries {
		events = append(events, Event{Type: EventAppend, ID: e.ID, Role: e.Role, Markup: renderEntry(e)})
	}
	return events
}

func (l *MessageLog) notify(e Event) {
	for _, o := range l.observers {
		o.OnLogEvent(e)
	}
}

// newID returns msg-<unixmillis>-<0..9999>, retrying until unused.
func (l *MessageLog) newID() string {
	ms := l.now().UnixMilli()
	for attempt := 1; ; attempt++ {
		id := fmt.Sprintf("msg-%d-%d", ms, l.intn(10000))
		if !l.inUse(id) {
			return id
		}
		if attempt%10000 == 0 {
			ms++
		}
	}
}

func (l *MessageLog) inUse(id string) bool {
	for _, e := range l.entries {
		if e.ID == id {
			return true
		}
	}
	return l.doc != nil && l.doc.Has(id)
}

func renderEntry(e Entry) string {
	body := e.Content
	if !e.HTML {
		body = Format(body)
	}
	return fmt.Sprintf(`<div id="%s" class="message %s"><p>%s</p></div>`, e.ID, e.Role, body)
}
