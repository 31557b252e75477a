package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fatflowers/saasgen/pkg/logctx"
)

func newRouter(base *zap.SugaredLogger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(base), AccessLogMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		logctx.FromCtx(c.Request.Context(), base).Infow("handler")
		c.String(http.StatusOK, c.GetString(logctx.GinTraceIDKey))
	})
	return r
}

func TestMiddleware_PropagatesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newRouter(zap.New(core).Sugar())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	require.Equal(t, 2, logs.Len())
	for _, e := range logs.All() {
		assert.Equal(t, "req-123", e.ContextMap()["trace_id"])
	}
	access := logs.FilterMessage("http_access").All()
	require.Len(t, access, 1)
	assert.Equal(t, "/ping", access[0].ContextMap()["path"])
	assert.EqualValues(t, http.StatusOK, access[0].ContextMap()["status"])
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	r := newRouter(zap.New(core).Sugar())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}
