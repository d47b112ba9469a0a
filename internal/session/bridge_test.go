package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestBridgeAttachDetach verifies listeners receive events only while
// attached and that detaching twice is harmless.
func TestBridgeAttachDetach(t *testing.T) {
	b := NewBridge()
	l := newRecordListener()

	detach := b.Attach(l)

	b.sessionCreated(View{SessionID: "sess_a"})
	select {
	case v := <-l.created:
		assert.Equal(t, "sess_a", v.SessionID)
	case <-time.After(time.Second):
		t.Fatal("attached listener saw no event")
	}

	detach()
	detach() // second call is a no-op

	b.sessionCreated(View{SessionID: "sess_b"})
	select {
	case v := <-l.created:
		t.Fatalf("detached listener saw event for %s", v.SessionID)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestBridgeFanOut verifies every attached listener sees every event.
func TestBridgeFanOut(t *testing.T) {
	b := NewBridge()
	first := newRecordListener()
	second := newRecordListener()
	defer b.Attach(first)()
	defer b.Attach(second)()

	chunk := Chunk{Origin: OriginOperator, Text: "hi", Time: time.Now()}
	b.outputAppended("sess_x", chunk)
	b.confirmationRequested(ConfirmView{RequestID: "req_1", SessionID: "sess_x"})
	b.confirmationResolved("sess_x", "req_1", OutcomeApproved)
	b.sessionClosed("sess_x")

	for _, l := range []*recordListener{first, second} {
		assert.Equal(t, "hi", (<-l.output).Text)
		assert.Equal(t, "req_1", (<-l.requested).RequestID)
		assert.Equal(t, OutcomeApproved, <-l.resolved)
		assert.Equal(t, "sess_x", <-l.closed)
	}
}
