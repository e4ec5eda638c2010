package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.POST("/api/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func post(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Returns429AfterBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.5, Burst: 3, CleanupInterval: time.Minute})
	defer rl.Stop()
	r := limitedRouter(rl)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code, "request %d", i)
	}

	w := post(r, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"message":"Too many requests. Please try again later."}`, w.Body.String())
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, post(r, "10.0.0.2").Code)
	assert.Equal(t, 2, rl.ClientCount())
}

func TestRateLimiter_CleanupDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()
	rl.limiterFor("10.0.0.1")

	rl.cleanup(time.Now().Add(time.Minute))
	assert.Equal(t, 1, rl.ClientCount())

	rl.cleanup(time.Now().Add(3 * time.Minute))
	assert.Equal(t, 0, rl.ClientCount())
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1})
	rl.Stop()
	rl.Stop()
}
