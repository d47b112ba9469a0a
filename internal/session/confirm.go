package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/shellmux/shellmux/internal/shared/id"
)

// ConfirmOutcome is the terminal state of a read confirmation.
type ConfirmOutcome string

const (
	OutcomeApproved ConfirmOutcome = "approved"
	OutcomeDeclined ConfirmOutcome = "declined"
	OutcomeTimedOut ConfirmOutcome = "timed_out"
)

// ConfirmRequest is a pending human gate on output disclosure. At most
// one exists per session; the decision channel is buffered so the
// resolving side never blocks behind the waiter.
type ConfirmRequest struct {
	ID        string
	SessionID string
	CreatedAt time.Time

	decision chan bool
}

func (r *ConfirmRequest) view(unread int) ConfirmView {
	return ConfirmView{
		RequestID:    r.ID,
		SessionID:    r.SessionID,
		UnreadChunks: unread,
		CreatedAt:    r.CreatedAt,
	}
}

// ReadResult reports whether the gate opened and what it disclosed.
type ReadResult struct {
	RequestID string
	Outcome   ConfirmOutcome
	Disclosed bool
	Output    string
}

// RequestRead asks a human to approve disclosure of the session's unread
// output and blocks until a decision, the configured wait elapses, or
// the session closes. Approval drains the unread region and advances the
// read cursor; every other outcome leaves the cursor untouched. A second
// request while one is pending fails with ErrConflict.
func (r *Registry) RequestRead(sessionID string) (*ReadResult, error) {
	s, err := r.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state == StateClosed || s.state == StateClosing {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.pending != nil {
		s.mu.Unlock()
		return nil, ErrConflict
	}
	req := &ConfirmRequest{
		ID:        id.NewRequestID().String(),
		SessionID: sessionID,
		CreatedAt: time.Now(),
		decision:  make(chan bool, 1),
	}
	s.pending = req
	unread := s.buf.UnreadCount()
	s.mu.Unlock()

	r.bridge.confirmationRequested(req.view(unread))
	r.log.Info("read confirmation requested",
		zap.String("session_id", sessionID),
		zap.String("request_id", req.ID),
		zap.Int("unread_chunks", unread))

	var (
		outcome  ConfirmOutcome
		approved bool
	)
	select {
	case approved = <-req.decision:
		if approved {
			outcome = OutcomeApproved
		} else {
			outcome = OutcomeDeclined
		}
	case <-time.After(r.cfg.ConfirmWait):
		outcome = OutcomeTimedOut
	case <-s.closed:
		outcome = OutcomeDeclined
	}

	res := &ReadResult{RequestID: req.ID, Outcome: outcome}
	s.mu.Lock()
	if s.pending == req {
		s.pending = nil
	}
	if approved {
		res.Disclosed = true
		res.Output = s.buf.DrainUnread()
		s.lastActivity = time.Now()
	}
	s.mu.Unlock()

	r.bridge.confirmationResolved(sessionID, req.ID, outcome)
	r.log.Info("read confirmation resolved",
		zap.String("session_id", sessionID),
		zap.String("request_id", req.ID),
		zap.String("outcome", string(outcome)))
	return res, nil
}

// ResolveConfirmation delivers a human decision for a pending request.
// Decisions for requests that already timed out, were superseded, or
// belong to an unknown session are discarded with ErrNotFound.
func (r *Registry) ResolveConfirmation(sessionID, requestID string, approve bool) error {
	s, err := r.get(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.pending.ID != requestID {
		return ErrNotFound
	}
	select {
	case s.pending.decision <- approve:
	default:
		// Already resolved; the first decision wins.
	}
	return nil
}
