package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStartSpanMintsAndInheritsIDs(t *testing.T) {
	tracer := New("test", zap.NewNop())

	root, ctx := tracer.StartSpan(context.Background(), "parent")
	assert.NotEmpty(t, root.TraceID)
	assert.NotEmpty(t, root.SpanID)
	assert.Empty(t, root.ParentID)

	child, _ := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.NotEqual(t, root.SpanID, child.SpanID)
}

func TestGetTraceIDFromContext(t *testing.T) {
	tracer := New("test", zap.NewNop())

	assert.Empty(t, GetTraceID(context.Background()))

	span, ctx := tracer.StartSpan(context.Background(), "op")
	assert.Equal(t, span.TraceID, GetTraceID(ctx))
	assert.Equal(t, span.SpanID, GetSpanID(ctx))
}

func TestMiddlewareEchoesTraceHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := New("test", zap.NewNop())

	router := gin.New()
	router.Use(Middleware(tracer))
	router.GET("/ping", func(c *gin.Context) {
		assert.NotEmpty(t, GetTraceID(c.Request.Context()))
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Span-ID"))
}

func TestMiddlewareInheritsIncomingTrace(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := New("test", zap.NewNop())

	router := gin.New()
	router.Use(Middleware(tracer))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-ID", "upstream-trace")
	router.ServeHTTP(w, req)

	assert.Equal(t, "upstream-trace", w.Header().Get("X-Trace-ID"))
}
