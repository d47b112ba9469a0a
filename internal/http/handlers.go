package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shellmux/shellmux/internal/infrastructure/monitoring"
	"github.com/shellmux/shellmux/internal/service"
	"github.com/shellmux/shellmux/internal/session"
	"github.com/shellmux/shellmux/internal/shared/types"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *service.Registry
	sessions *session.Registry
	metrics  *monitoring.Metrics
}

// NewHandlers creates a new handler set
func NewHandlers(registry *service.Registry, sessions *session.Registry, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		registry: registry,
		sessions: sessions,
		metrics:  metrics,
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "shellmux",
		"version": "0.1.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":           "healthy",
		"service_registry": h.registry.Stats(),
		"sessions":         gin.H{"count": len(h.sessions.List())},
	}
	if h.metrics != nil {
		snap := h.metrics.Snapshot()
		body["requests"] = gin.H{
			"total":  snap.TotalRequests,
			"errors": snap.TotalErrors,
		}
	}
	c.JSON(http.StatusOK, body)
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if categoryStr := c.Query("category"); categoryStr != "" {
		cat := types.Category(categoryStr)
		category = &cat
	}

	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(category),
		"stats":    h.registry.Stats(),
	})
}

// DiscoverServices discovers relevant services for a free-text intent
func (h *Handlers) DiscoverServices(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    req.Message,
		"services": h.registry.Discover(req.Message, 5),
	})
}

// ExecuteService executes a service tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !strings.Contains(req.ToolID, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tool_id must be <service>.<operation>"})
		return
	}

	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, requestContext(c))
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "unknown tool") {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListSessions lists all shell sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	views := h.sessions.List()
	c.JSON(http.StatusOK, gin.H{
		"sessions": views,
		"count":    len(views),
	})
}

// GetSession returns one session's state
func (h *Handlers) GetSession(c *gin.Context) {
	view, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetSessionOutput returns the retained output record for the presentation
// surface. This view never advances the read cursor, so it is safe to poll.
func (h *Handlers) GetSessionOutput(c *gin.Context) {
	chunks, err := h.sessions.Output(c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": c.Param("id"),
		"chunks":     chunks,
	})
}

// CloseSession terminates a session
func (h *Handlers) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"closed":     true,
		"session_id": c.Param("id"),
	})
}

// SubmitOperatorCommand forwards operator input typed on a non-WebSocket
// surface into the session.
func (h *Handlers) SubmitOperatorCommand(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.SubmitOperatorCommand(c.Param("id"), req.Text); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submitted": true})
}

// ResolveConfirmation delivers a human decision on a pending read request.
func (h *Handlers) ResolveConfirmation(c *gin.Context) {
	var req struct {
		Approve *bool `json:"approve" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.sessions.ResolveConfirmation(c.Param("id"), c.Param("request_id"), *req.Approve)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": true})
}

// sessionError maps the session taxonomy onto HTTP status codes.
func (h *Handlers) sessionError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrSessionClosed):
		status = http.StatusGone
	case errors.Is(err, session.ErrSessionBusy), errors.Is(err, session.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, session.ErrSessionLimit):
		status = http.StatusTooManyRequests
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  session.ErrorCode(err),
	})
}

func requestContext(c *gin.Context) *types.Context {
	reqID := c.GetHeader("X-Request-ID")
	if reqID == "" {
		return nil
	}
	return &types.Context{RequestID: &reqID}
}
