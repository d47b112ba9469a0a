package session

import (
	"errors"
	"fmt"

	"github.com/shellmux/shellmux/internal/shared/paths"
)

// Sentinel errors for the session taxonomy. Callers match with errors.Is.
var (
	// ErrNotFound reports an unknown session id.
	ErrNotFound = errors.New("session not found")

	// ErrSessionBusy reports a command submitted while another is outstanding.
	ErrSessionBusy = errors.New("session has a command outstanding")

	// ErrConflict reports a confirmation request while one is already pending.
	ErrConflict = errors.New("confirmation request already pending")

	// ErrSessionClosed reports an operation raced against session closure.
	ErrSessionClosed = errors.New("session is closed")

	// ErrCommandBlocked reports a command vetoed by risk classification.
	ErrCommandBlocked = errors.New("command blocked by risk classification")

	// ErrSessionLimit reports that the live-session cap has been reached.
	ErrSessionLimit = errors.New("session limit reached")
)

// SpawnError reports a failure to start the shell process.
type SpawnError struct {
	WorkingDir string
	Err        error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn shell in %q: %v", e.WorkingDir, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// WriteError reports a failure to forward text to the shell process.
type WriteError struct {
	SessionID string
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write to session %s: %v", e.SessionID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ErrorCode maps a taxonomy error to a stable machine-readable code.
func ErrorCode(err error) string {
	var (
		pathErr  *paths.InvalidPathError
		spawnErr *SpawnError
		writeErr *WriteError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSessionBusy):
		return "session_busy"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrSessionClosed):
		return "session_closed"
	case errors.Is(err, ErrCommandBlocked):
		return "command_blocked"
	case errors.Is(err, ErrSessionLimit):
		return "session_limit"
	case errors.As(err, &pathErr):
		return "invalid_path"
	case errors.As(err, &spawnErr):
		return "spawn_error"
	case errors.As(err, &writeErr):
		return "write_error"
	default:
		return "internal"
	}
}
