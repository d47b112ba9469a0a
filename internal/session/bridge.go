package session

import (
	"sync"
	"time"
)

// Listener receives session lifecycle and output events. Implementations
// must not block: emit happens on drain and registry goroutines, and a
// slow listener stalls output delivery for its session.
type Listener interface {
	SessionCreated(v View)
	SessionClosed(sessionID string)
	OutputAppended(sessionID string, chunk Chunk)
	ConfirmationRequested(req ConfirmView)
	ConfirmationResolved(sessionID, requestID string, outcome ConfirmOutcome)
}

// ConfirmView is the public representation of a pending confirmation.
type ConfirmView struct {
	RequestID    string    `json:"request_id"`
	SessionID    string    `json:"session_id"`
	UnreadChunks int       `json:"unread_chunks"`
	CreatedAt    time.Time `json:"created_at"`
}

// Bridge fans session events out to attached listeners. Attachment and
// detachment are safe concurrent with emission; a listener attached
// mid-stream sees only subsequent events.
type Bridge struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

func NewBridge() *Bridge {
	return &Bridge{listeners: make(map[int]Listener)}
}

// Attach registers l and returns a detach function. Detaching twice is
// a no-op.
func (b *Bridge) Attach(l Listener) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bridge) sessionCreated(v View) {
	for _, l := range b.snapshot() {
		l.SessionCreated(v)
	}
}

func (b *Bridge) sessionClosed(sessionID string) {
	for _, l := range b.snapshot() {
		l.SessionClosed(sessionID)
	}
}

func (b *Bridge) outputAppended(sessionID string, chunk Chunk) {
	for _, l := range b.snapshot() {
		l.OutputAppended(sessionID, chunk)
	}
}

func (b *Bridge) confirmationRequested(req ConfirmView) {
	for _, l := range b.snapshot() {
		l.ConfirmationRequested(req)
	}
}

func (b *Bridge) confirmationResolved(sessionID, requestID string, outcome ConfirmOutcome) {
	for _, l := range b.snapshot() {
		l.ConfirmationResolved(sessionID, requestID, outcome)
	}
}

func (b *Bridge) snapshot() []Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		out = append(out, l)
	}
	return out
}
