package session

import (
	"sync"
	"time"
)

// State is a session lifecycle state.
type State string

const (
	// StateCreated: process spawned, no command executed yet.
	StateCreated State = "created"
	// StateRunning: a command is outstanding.
	StateRunning State = "running"
	// StateIdle: process alive, no command outstanding.
	StateIdle State = "idle"
	// StateClosing: close requested, awaiting process exit.
	StateClosing State = "closing"
	// StateClosed: terminal; process handle released.
	StateClosed State = "closed"
)

// Session binds one shell process to its output record and lifecycle state.
// All mutable fields are guarded by mu; the Registry holds the only
// references, so unrelated sessions never contend on each other's locks.
type Session struct {
	ID         string
	WorkingDir string // validated absolute, immutable after creation
	CreatedAt  time.Time

	mu           sync.Mutex
	state        State
	lastActivity time.Time
	lastCommand  string
	commandCount int
	proc         *Process
	buf          *Buffer
	lastWriter   Origin

	// Sentinel for the outstanding command; empty when none. markerCh is
	// closed by the drain loop when the marker shows up in output.
	marker   string
	markerCh chan struct{}

	pending *ConfirmRequest

	closed    chan struct{}
	closeOnce sync.Once
}

// signalClosed cancels every wait parked on this session. Safe to call
// more than once.
func (s *Session) signalClosed() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View captures a consistent external snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		SessionID:    s.ID,
		State:        s.state,
		WorkingDir:   s.WorkingDir,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.lastActivity,
		CommandCount: s.commandCount,
		LastCommand:  s.lastCommand,
	}
}

// Output returns a read-only copy of the retained output record. The
// presentation surface renders from this; it never moves the read cursor.
func (s *Session) Output() []Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Snapshot()
}

// View is the public representation of a session.
type View struct {
	SessionID    string    `json:"session_id"`
	State        State     `json:"state"`
	WorkingDir   string    `json:"working_dir"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	CommandCount int       `json:"command_count"`
	LastCommand  string    `json:"last_command,omitempty"`
}
