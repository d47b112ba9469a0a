package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBufferCursorMonotone verifies the cursor only ever moves forward and
// nothing is disclosed twice.
func TestBufferCursorMonotone(t *testing.T) {
	b := NewBuffer(10)
	b.Append(OriginAutomated, "one ")
	b.Append(OriginAutomated, "two ")

	assert.Equal(t, 2, b.UnreadCount())
	assert.Equal(t, "one two ", b.DrainUnread())
	assert.Equal(t, 0, b.UnreadCount())
	assert.Equal(t, "", b.DrainUnread())

	b.Append(OriginOperator, "three")
	assert.Equal(t, 1, b.UnreadCount())
	assert.Equal(t, "three", b.DrainUnread())
	assert.Equal(t, b.End(), b.Cursor())
}

// TestBufferTrimsOnlyDisclosed verifies retention never drops chunks the
// caller has not yet seen.
func TestBufferTrimsOnlyDisclosed(t *testing.T) {
	b := NewBuffer(3)
	b.Append(OriginAutomated, "a")
	b.Append(OriginAutomated, "b")
	b.Append(OriginAutomated, "c")
	b.Append(OriginAutomated, "d")

	// Nothing disclosed, so nothing may be trimmed even over the cap.
	assert.Equal(t, 4, b.UnreadCount())
	assert.Equal(t, "abcd", b.DrainUnread())

	// All four are now disclosed; the next append may trim down to cap.
	b.Append(OriginAutomated, "e")
	assert.LessOrEqual(t, len(b.Snapshot()), 3)
	assert.Equal(t, "e", b.DrainUnread())
}

// TestBufferTextSince verifies absolute positions survive trimming.
func TestBufferTextSince(t *testing.T) {
	b := NewBuffer(2)
	b.Append(OriginAutomated, "a")
	b.Append(OriginAutomated, "b")
	mark := b.End()
	b.DrainUnread()

	b.Append(OriginAutomated, "c")
	b.Append(OriginAutomated, "d")
	assert.Equal(t, "cd", b.TextSince(mark))

	// A position older than the retained window clamps to what remains.
	assert.Equal(t, b.TextSince(b.base), b.TextSince(0))
}

// TestBufferSnapshotIsCopy verifies mutating a snapshot cannot affect the
// buffer.
func TestBufferSnapshotIsCopy(t *testing.T) {
	b := NewBuffer(10)
	b.Append(OriginOperator, "original")

	snap := b.Snapshot()
	snap[0].Text = "mutated"

	assert.Equal(t, "original", b.Snapshot()[0].Text)
	assert.Equal(t, OriginOperator, b.Snapshot()[0].Origin)
}
