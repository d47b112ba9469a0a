package session

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shellmux/shellmux/internal/logging"
)

func newTestRegistry(t *testing.T, cfg Config) *Registry {
	t.Helper()
	r := NewRegistry(cfg, &logging.Logger{Logger: zap.NewNop()})
	t.Cleanup(r.Shutdown)
	return r
}

// recordListener collects bridge events on channels so tests can wait for
// them without polling.
type recordListener struct {
	created   chan View
	closed    chan string
	output    chan Chunk
	requested chan ConfirmView
	resolved  chan ConfirmOutcome
}

func newRecordListener() *recordListener {
	return &recordListener{
		created:   make(chan View, 16),
		closed:    make(chan string, 16),
		output:    make(chan Chunk, 256),
		requested: make(chan ConfirmView, 16),
		resolved:  make(chan ConfirmOutcome, 16),
	}
}

func (l *recordListener) SessionCreated(v View)                    { l.created <- v }
func (l *recordListener) SessionClosed(sessionID string)           { l.closed <- sessionID }
func (l *recordListener) OutputAppended(_ string, c Chunk)         { l.output <- c }
func (l *recordListener) ConfirmationRequested(req ConfirmView)    { l.requested <- req }
func (l *recordListener) ConfirmationResolved(_, _ string, o ConfirmOutcome) {
	l.resolved <- o
}

func waitForState(t *testing.T, r *Registry, sessionID string, want State, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		v, err := r.Get(sessionID)
		if err == nil && v.State == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	v, _ := r.Get(sessionID)
	t.Fatalf("session %s never reached state %s (last seen %s)", sessionID, want, v.State)
}
