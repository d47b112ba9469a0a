package monitoring

import (
	"github.com/shellmux/shellmux/internal/session"
)

// Recorder adapts Metrics to the session event stream. Attach it to the
// registry bridge and session lifecycle and output volume show up in
// Prometheus without the session package knowing about metrics.
type Recorder struct {
	metrics *Metrics
}

// NewRecorder creates a bridge listener that feeds metrics.
func NewRecorder(metrics *Metrics) *Recorder {
	return &Recorder{metrics: metrics}
}

func (r *Recorder) SessionCreated(session.View) {
	r.metrics.SessionsCreated.Inc()
	r.metrics.SessionsActive.Inc()
	r.metrics.setActiveSessions(1)
}

func (r *Recorder) SessionClosed(string) {
	r.metrics.SessionsClosed.Inc()
	r.metrics.SessionsActive.Dec()
	r.metrics.setActiveSessions(-1)
}

func (r *Recorder) OutputAppended(string, session.Chunk) {
	r.metrics.OutputChunks.Inc()
}

func (r *Recorder) ConfirmationRequested(session.ConfirmView) {}

func (r *Recorder) ConfirmationResolved(string, string, session.ConfirmOutcome) {}
