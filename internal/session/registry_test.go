package session

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellmux/shellmux/internal/shared/paths"
)

// TestCreateRejectsBadWorkingDir verifies the path gate runs before any
// process is spawned.
func TestCreateRejectsBadWorkingDir(t *testing.T) {
	r := newTestRegistry(t, DefaultConfig())

	_, err := r.Create("relative/dir")
	var pathErr *paths.InvalidPathError
	require.ErrorAs(t, err, &pathErr)

	_, err = r.Create(t.TempDir() + "/missing")
	require.ErrorAs(t, err, &pathErr)
}

// TestCreateAndList covers creation, Get, and List ordering.
func TestCreateAndList(t *testing.T) {
	r := newTestRegistry(t, DefaultConfig())

	dir := t.TempDir()
	first, err := r.Create(dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.SessionID, "sess_"))
	assert.Equal(t, StateCreated, first.State)
	assert.Equal(t, dir, first.WorkingDir)

	second, err := r.Create(t.TempDir())
	require.NoError(t, err)

	got, err := r.Get(first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, got.SessionID)

	views := r.List()
	require.Len(t, views, 2)
	assert.Equal(t, first.SessionID, views[0].SessionID)
	assert.Equal(t, second.SessionID, views[1].SessionID)

	_, err = r.Get("sess_does_not_exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestSessionLimit verifies the live-session cap and that closing a
// session frees a slot.
func TestSessionLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSessions = 1
	r := newTestRegistry(t, cfg)

	v, err := r.Create(t.TempDir())
	require.NoError(t, err)

	_, err = r.Create(t.TempDir())
	assert.ErrorIs(t, err, ErrSessionLimit)

	require.NoError(t, r.Close(v.SessionID))

	_, err = r.Create(t.TempDir())
	assert.NoError(t, err)
}

// TestCloseIdempotent verifies repeated closes succeed and unknown ids do
// not.
func TestCloseIdempotent(t *testing.T) {
	r := newTestRegistry(t, DefaultConfig())

	v, err := r.Create(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, r.Close(v.SessionID))
	require.NoError(t, r.Close(v.SessionID))

	got, err := r.Get(v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, got.State)

	assert.ErrorIs(t, r.Close("sess_never_existed"), ErrNotFound)
}

// TestCloseEmitsBridgeEvent verifies lifecycle events reach listeners.
func TestCloseEmitsBridgeEvent(t *testing.T) {
	r := newTestRegistry(t, DefaultConfig())
	l := newRecordListener()
	detach := r.Bridge().Attach(l)
	defer detach()

	v, err := r.Create(t.TempDir())
	require.NoError(t, err)

	select {
	case created := <-l.created:
		assert.Equal(t, v.SessionID, created.SessionID)
	case <-time.After(time.Second):
		t.Fatal("no session-created event")
	}

	require.NoError(t, r.Close(v.SessionID))
	select {
	case closed := <-l.closed:
		assert.Equal(t, v.SessionID, closed)
	case <-time.After(10 * time.Second):
		t.Fatal("no session-closed event")
	}
}

// TestOperatorCommandAttribution verifies operator input reaches the shell
// and its output is attributed to the operator.
func TestOperatorCommandAttribution(t *testing.T) {
	r := newTestRegistry(t, DefaultConfig())

	v, err := r.Create(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, r.SubmitOperatorCommand(v.SessionID, "echo operator-token-xyz"))

	deadline := time.Now().Add(5 * time.Second)
	for {
		chunks, err := r.Output(v.SessionID)
		require.NoError(t, err)
		var all strings.Builder
		operatorSeen := false
		for _, c := range chunks {
			all.WriteString(c.Text)
			if c.Origin == OriginOperator {
				operatorSeen = true
			}
		}
		if strings.Contains(all.String(), "operator-token-xyz") {
			assert.True(t, operatorSeen, "output not attributed to operator")
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("operator output never arrived; have %q", all.String())
		}
		time.Sleep(20 * time.Millisecond)
	}

	assert.ErrorIs(t, r.SubmitOperatorCommand("sess_nope", "ls"), ErrNotFound)
}

// TestProcessExitClosesSession verifies a shell exiting on its own moves
// the session to closed.
func TestProcessExitClosesSession(t *testing.T) {
	r := newTestRegistry(t, DefaultConfig())

	v, err := r.Create(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, r.SubmitOperatorCommand(v.SessionID, "exit"))
	waitForState(t, r, v.SessionID, StateClosed, 10*time.Second)

	err = r.SubmitOperatorCommand(v.SessionID, "echo too-late")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

// TestSplitTailKeepsRunesWhole verifies the sentinel hold-back never cuts
// a multi-byte rune, so buffered chunks stay valid UTF-8 on their own.
func TestSplitTailKeepsRunesWhole(t *testing.T) {
	marker := newMarker()

	// Vary the hold-back width so the byte-count split lands on every
	// offset inside a 3-byte rune at least once.
	text := strings.Repeat("界", len(marker))
	for d := 0; d < 3; d++ {
		markerLen := len(marker) - d
		head, tail := splitTail(text, markerLen)
		assert.Equal(t, text, head+tail)
		assert.True(t, utf8.ValidString(head), "head %q splits a rune", head)
		assert.True(t, utf8.ValidString(tail), "tail %q splits a rune", tail)
		assert.NotEmpty(t, head)
		assert.GreaterOrEqual(t, len(tail), markerLen-1)
	}

	// Text shorter than the hold-back window is withheld entirely.
	head, tail := splitTail("x", len(marker))
	assert.Empty(t, head)
	assert.Equal(t, "x", tail)
}

// TestErrorCodes pins the wire codes for the session error taxonomy.
func TestErrorCodes(t *testing.T) {
	assert.Equal(t, "not_found", ErrorCode(ErrNotFound))
	assert.Equal(t, "session_busy", ErrorCode(ErrSessionBusy))
	assert.Equal(t, "conflict", ErrorCode(ErrConflict))
	assert.Equal(t, "session_closed", ErrorCode(ErrSessionClosed))
	assert.Equal(t, "command_blocked", ErrorCode(ErrCommandBlocked))
	assert.Equal(t, "session_limit", ErrorCode(ErrSessionLimit))
	assert.Equal(t, "invalid_path", ErrorCode(&paths.InvalidPathError{Path: "x", Reason: "y"}))
	assert.Equal(t, "spawn_error", ErrorCode(&SpawnError{WorkingDir: "/x", Err: errors.New("boom")}))
	assert.Equal(t, "write_error", ErrorCode(&WriteError{SessionID: "s", Err: errors.New("boom")}))
	assert.Equal(t, "internal", ErrorCode(errors.New("anything else")))
}
