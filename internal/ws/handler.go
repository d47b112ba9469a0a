package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shellmux/shellmux/internal/infrastructure/monitoring"
	"github.com/shellmux/shellmux/internal/logging"
	"github.com/shellmux/shellmux/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

const writeWait = 5 * time.Second

// Message is the envelope for client-to-server frames.
type Message struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Text      string `json:"text,omitempty"`
	Approve   *bool  `json:"approve,omitempty"`
}

// Handler manages WebSocket connections for the presentation surface.
type Handler struct {
	sessions *session.Registry
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler. metrics may be nil.
func NewHandler(sessions *session.Registry, log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{
		sessions: sessions,
		log:      log,
		metrics:  metrics,
	}
}

// client serializes writes to one connection; bridge events and read-loop
// replies arrive from different goroutines.
type client struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	metrics *monitoring.Metrics
}

func (c *client) send(msgType string, data map[string]interface{}) error {
	payload := map[string]interface{}{
		"type":      msgType,
		"timestamp": time.Now().Unix(),
	}
	for k, v := range data {
		payload[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteJSON(payload)
	if err == nil && c.metrics != nil {
		c.metrics.RecordWSMessage("out", msgType)
	}
	return err
}

func (c *client) sendError(msg string) {
	_ = c.send("error", map[string]interface{}{"message": msg})
}

// HandleConnection upgrades the request and runs the connection: session
// events stream out, operator commands and confirmation decisions come in.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	cl := &client{conn: conn, metrics: h.metrics}

	_ = cl.send("system", map[string]interface{}{
		"message":  "connected",
		"sessions": h.sessions.List(),
	})

	detach := h.sessions.Bridge().Attach(&eventPusher{cl: cl})
	defer detach()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "operator_command":
			h.handleOperatorCommand(cl, msg)
		case "confirmation":
			h.handleConfirmation(cl, msg)
		case "ping":
			_ = cl.send("pong", nil)
		default:
			cl.sendError("unknown message type")
		}
	}
}

func (h *Handler) handleOperatorCommand(cl *client, msg Message) {
	if msg.SessionID == "" || msg.Text == "" {
		cl.sendError("operator_command requires session_id and text")
		return
	}
	if err := h.sessions.SubmitOperatorCommand(msg.SessionID, msg.Text); err != nil {
		cl.sendError(err.Error())
		return
	}
	_ = cl.send("ack", map[string]interface{}{"session_id": msg.SessionID})
}

func (h *Handler) handleConfirmation(cl *client, msg Message) {
	if msg.SessionID == "" || msg.RequestID == "" || msg.Approve == nil {
		cl.sendError("confirmation requires session_id, request_id and approve")
		return
	}
	if err := h.sessions.ResolveConfirmation(msg.SessionID, msg.RequestID, *msg.Approve); err != nil {
		cl.sendError(err.Error())
		return
	}
	_ = cl.send("ack", map[string]interface{}{"request_id": msg.RequestID})
}

// eventPusher forwards session events to one connection.
type eventPusher struct {
	cl *client
}

func (p *eventPusher) SessionCreated(v session.View) {
	_ = p.cl.send("session_created", map[string]interface{}{"session": v})
}

func (p *eventPusher) SessionClosed(sessionID string) {
	_ = p.cl.send("session_closed", map[string]interface{}{"session_id": sessionID})
}

func (p *eventPusher) OutputAppended(sessionID string, chunk session.Chunk) {
	_ = p.cl.send("output", map[string]interface{}{
		"session_id": sessionID,
		"chunk":      chunk,
	})
}

func (p *eventPusher) ConfirmationRequested(req session.ConfirmView) {
	_ = p.cl.send("confirmation_requested", map[string]interface{}{"request": req})
}

func (p *eventPusher) ConfirmationResolved(sessionID, requestID string, outcome session.ConfirmOutcome) {
	_ = p.cl.send("confirmation_resolved", map[string]interface{}{
		"session_id": sessionID,
		"request_id": requestID,
		"outcome":    string(outcome),
	})
}
