package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logs completed request", func(t *testing.T) {
		log, logs := newObservedLogger()

		engine := gin.New()
		engine.Use(GinMiddleware(log))
		engine.GET("/jobs/:id", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/jobs/123?detail=1", nil)
		engine.ServeHTTP(w, req)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "HTTP Request", entries[0].Message)
		assert.Equal(t, zap.InfoLevel, entries[0].Level)

		fields := entries[0].ContextMap()
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/jobs/123", fields["path"])
		assert.Equal(t, "/jobs/:id", fields["route"])
		assert.Equal(t, "detail=1", fields["query"])
		assert.EqualValues(t, 200, fields["status"])
	})

	t.Run("warns on client errors and errors on server errors", func(t *testing.T) {
		log, logs := newObservedLogger()

		engine := gin.New()
		engine.Use(GinMiddleware(log))
		engine.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
		engine.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))

		entries := logs.All()
		require.Len(t, entries, 2)
		assert.Equal(t, zap.WarnLevel, entries[0].Level)
		assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	})

	t.Run("skips configured paths", func(t *testing.T) {
		log, logs := newObservedLogger()

		engine := gin.New()
		engine.Use(GinMiddleware(log, "/health"))
		engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Zero(t, logs.Len())
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log, logs := newObservedLogger()

	engine := gin.New()
	engine.Use(Recovery(log))
	engine.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Panic recovered", entries[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns request-scoped logger set by middleware", func(t *testing.T) {
		log, logs := newObservedLogger()

		engine := gin.New()
		engine.Use(GinMiddleware(log))
		engine.GET("/ping", func(c *gin.Context) {
			GetGinLogger(c).Info("from handler")
			c.Status(http.StatusOK)
		})

		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		messages := make([]string, 0, logs.Len())
		for _, e := range logs.All() {
			messages = append(messages, e.Message)
		}
		assert.Contains(t, messages, "from handler")
	})

	t.Run("returns nop logger when none is set", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.NotNil(t, GetGinLogger(c))
	})
}
