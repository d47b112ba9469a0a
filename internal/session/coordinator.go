package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shellmux/shellmux/internal/shell/risk"
)

// ExecStatus tells the caller whether output came back inline or the
// command is still running.
type ExecStatus string

const (
	StatusCompleted ExecStatus = "completed"
	StatusPending   ExecStatus = "pending"
)

// ExecResult is the outcome of one command submission.
type ExecResult struct {
	SessionID string
	Status    ExecStatus
	Output    string
	Risk      risk.Verdict
}

const markerPrefix = "__SMX_DONE_"

// newMarker returns a completion sentinel unlikely to collide with any
// text the shell or a user could plausibly produce.
func newMarker() string {
	return markerPrefix + uuid.NewString()
}

// markerEcho builds the echo command that makes the shell print the
// sentinel after the user command finishes. The sentinel is split across
// two quoted pieces so the PTY's echo of our own input never contains it
// contiguously; only the shell's evaluated output does.
func markerEcho(marker string) string {
	return fmt.Sprintf("echo '%s'\"%s\"", marker[:3], marker[3:])
}

// Execute submits a command to a session and waits up to CommandWait for
// completion. Completion is detected by a sentinel echoed after the
// command; if the sentinel arrives within the window the result carries
// the captured output inline, otherwise the command keeps running and the
// result is pending. Blocked commands never reach the process. A session
// with a command already outstanding returns ErrSessionBusy.
func (r *Registry) Execute(sessionID, command string) (*ExecResult, error) {
	cls := risk.Classify(command)
	if cls.Verdict == risk.Blocked {
		r.log.Warn("command blocked",
			zap.String("session_id", sessionID),
			zap.String("reason", cls.Reason))
		return nil, fmt.Errorf("%w: %s", ErrCommandBlocked, cls.Reason)
	}

	s, err := r.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	switch {
	case s.state == StateClosed || s.state == StateClosing:
		s.mu.Unlock()
		return nil, ErrSessionClosed
	case s.marker != "" || s.state == StateRunning:
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}

	marker := newMarker()
	markerCh := make(chan struct{})
	startPos := s.buf.End()

	s.marker = marker
	s.markerCh = markerCh
	s.state = StateRunning
	s.lastWriter = OriginAutomated
	s.lastCommand = command
	s.commandCount++
	s.lastActivity = time.Now()

	// Both lines go out under the lock so no operator input lands between
	// the command and its sentinel echo.
	werr := s.proc.WriteLine(command)
	if werr == nil {
		werr = s.proc.WriteLine(markerEcho(marker))
	}
	if werr != nil {
		s.marker = ""
		s.markerCh = nil
		s.state = StateIdle
		s.mu.Unlock()
		if we, ok := werr.(*WriteError); ok {
			we.SessionID = sessionID
		}
		return nil, werr
	}
	s.mu.Unlock()

	r.log.Debug("command submitted",
		zap.String("session_id", sessionID),
		zap.String("risk", string(cls.Verdict)))

	select {
	case <-markerCh:
		s.mu.Lock()
		output := s.buf.TextSince(startPos)
		if s.state == StateRunning {
			s.state = StateIdle
		}
		s.lastActivity = time.Now()
		s.mu.Unlock()
		return &ExecResult{
			SessionID: sessionID,
			Status:    StatusCompleted,
			Output:    output,
			Risk:      cls.Verdict,
		}, nil

	case <-time.After(r.cfg.CommandWait):
		go r.watchCompletion(s, markerCh)
		r.log.Debug("command handed off as pending",
			zap.String("session_id", sessionID))
		return &ExecResult{
			SessionID: sessionID,
			Status:    StatusPending,
			Risk:      cls.Verdict,
		}, nil

	case <-s.closed:
		return nil, ErrSessionClosed
	}
}

// watchCompletion returns a pending session to idle once its sentinel
// finally shows up. Output stays buffered for disclosure via the
// confirmation gate.
func (r *Registry) watchCompletion(s *Session, markerCh <-chan struct{}) {
	select {
	case <-markerCh:
	case <-s.closed:
		return
	}

	s.mu.Lock()
	if s.state == StateRunning {
		s.state = StateIdle
	}
	s.lastActivity = time.Now()
	s.mu.Unlock()

	r.log.Debug("pending command completed",
		zap.String("session_id", s.ID))
}
