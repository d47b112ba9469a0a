package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/shellmux/shellmux/internal/session"
)

func newTestMetrics(t *testing.T) *Metrics {
	m := NewMetricsWith(prometheus.NewRegistry())
	t.Cleanup(m.Close)
	return m
}

func TestRecorderTracksSessionLifecycle(t *testing.T) {
	m := newTestMetrics(t)
	r := NewRecorder(m)

	r.SessionCreated(session.View{SessionID: "sess_a"})
	r.SessionCreated(session.View{SessionID: "sess_b"})
	r.SessionClosed("sess_a")
	r.OutputAppended("sess_b", session.Chunk{Text: "hi"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsClosed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutputChunks))
	assert.Equal(t, int64(1), m.Snapshot().ActiveSessions)
}

func TestCommandAndConfirmationCounters(t *testing.T) {
	m := newTestMetrics(t)

	m.CommandFinished("completed")
	m.CommandFinished("completed")
	m.CommandFinished("session_busy")
	m.ConfirmationFinished("declined")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("session_busy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Confirmations.WithLabelValues("declined")))
}

func TestHTTPSnapshot(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordHTTPRequest("GET", "/health", "200", 10*time.Millisecond, 0, 32)
	m.RecordHTTPRequest("POST", "/services/execute", "500", 20*time.Millisecond, 64, 128)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
}

func TestCloseIsIdempotent(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())
	m.Close()
	m.Close()
}
