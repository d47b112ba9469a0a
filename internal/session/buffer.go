package session

import (
	"strings"
	"time"
)

// Origin identifies which actor a chunk is attributed to.
type Origin string

const (
	OriginAutomated Origin = "automated"
	OriginOperator  Origin = "operator"
)

// Chunk is one decoded piece of session output.
type Chunk struct {
	Origin Origin    `json:"origin"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
}

// Buffer is an append-only record of session output with a forward-only
// read cursor. Positions are absolute so retention trimming never moves
// the cursor. The Buffer is not internally locked; the owning Session's
// lock serializes all access.
type Buffer struct {
	chunks []Chunk
	base   int // absolute position of chunks[0]
	cursor int // next undisclosed position; base <= cursor <= End()
	max    int // retained chunk cap; only disclosed chunks are trimmed
}

// NewBuffer creates a buffer retaining at most max chunks.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 4096
	}
	return &Buffer{max: max}
}

// Append records one chunk and returns it for event fan-out.
func (b *Buffer) Append(origin Origin, text string) Chunk {
	c := Chunk{Origin: origin, Text: text, Time: time.Now()}
	b.chunks = append(b.chunks, c)

	// Trim only chunks already disclosed through the cursor: retention must
	// never silently truncate output the caller has not seen.
	if excess := len(b.chunks) - b.max; excess > 0 {
		disclosed := b.cursor - b.base
		drop := excess
		if drop > disclosed {
			drop = disclosed
		}
		if drop > 0 {
			b.chunks = append([]Chunk(nil), b.chunks[drop:]...)
			b.base += drop
		}
	}
	return c
}

// End returns the absolute position one past the last chunk.
func (b *Buffer) End() int { return b.base + len(b.chunks) }

// Cursor returns the absolute position of the next undisclosed chunk.
func (b *Buffer) Cursor() int { return b.cursor }

// UnreadCount returns how many chunks are undisclosed.
func (b *Buffer) UnreadCount() int { return b.End() - b.cursor }

// DrainUnread returns all undisclosed text and advances the cursor past it.
// The cursor only ever moves forward, so no chunk is drained twice.
func (b *Buffer) DrainUnread() string {
	var sb strings.Builder
	for i := b.cursor - b.base; i < len(b.chunks); i++ {
		sb.WriteString(b.chunks[i].Text)
	}
	b.cursor = b.End()
	return sb.String()
}

// TextSince returns the text of every chunk at or after the absolute
// position from, without moving the cursor.
func (b *Buffer) TextSince(from int) string {
	start := from - b.base
	if start < 0 {
		start = 0
	}
	var sb strings.Builder
	for i := start; i < len(b.chunks); i++ {
		sb.WriteString(b.chunks[i].Text)
	}
	return sb.String()
}

// Snapshot returns a copy of all retained chunks. This is the read-only
// view handed to the presentation surface; it never moves the cursor.
func (b *Buffer) Snapshot() []Chunk {
	out := make([]Chunk, len(b.chunks))
	copy(out, b.chunks)
	return out
}
