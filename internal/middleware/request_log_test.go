package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountflow/internal/metrics"
)

type httpCall struct {
	method, route string
	status        int
}

type httpRecorder struct {
	metrics.Noop
	mu    sync.Mutex
	calls []httpCall
}

func (r *httpRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, httpCall{method, route, status})
}

func TestRequestLog_RecordsRouteTemplate(t *testing.T) {
	rec := &httpRecorder{}
	r := gin.New()
	r.Use(RequestLog(rec))
	r.GET("/api/user/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/api/user/1", "/nowhere"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, rec.calls, 2)
	assert.Equal(t, httpCall{http.MethodGet, "/api/user/:id", http.StatusNotFound}, rec.calls[0])
	assert.Equal(t, "unmatched", rec.calls[1].route)
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.POST("/api/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/login", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
