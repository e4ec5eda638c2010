package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	Rate            rate.Limit // requests per second per client IP
	Burst           int
	CleanupInterval time.Duration
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a background loop that evicts idle clients; call Stop
// to end it.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	rl := &RateLimiter{
		config:   config,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware answers 429 once a client IP has used up its burst.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.limiterFor(ip).Allow() {
			slog.Warn("[ratelimit] limit exceeded", "ip", ip, "path", c.FullPath())
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(rl.config.Rate)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) ClientCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if cl, ok := rl.limiters[ip]; ok {
		cl.lastAccess = time.Now()
		return cl.limiter
	}
	l := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	rl.limiters[ip] = &clientLimiter{limiter: l, lastAccess: time.Now()}
	return l
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops clients idle for more than two cleanup intervals.
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.config.CleanupInterval * 2

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, ip)
		}
	}
}

func retryAfterSeconds(r rate.Limit) int {
	if r <= 0 {
		return 1
	}
	sec := int(math.Ceil(1.0 / float64(r)))
	if sec < 1 {
		sec = 1
	}
	return sec
}
