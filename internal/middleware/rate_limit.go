package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateWindow struct {
	count   int
	started time.Time
}

// RateLimiter is a fixed-window per-IP limiter. Windows reset lazily on the
// next request after expiry; a background sweep drops idle entries.
type RateLimiter struct {
	windows map[string]*rateWindow
	mutex   sync.Mutex
	limit   int
	window  time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*rateWindow),
		limit:   limit,
		window:  window,
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		for range ticker.C {
			rl.cleanup()
		}
	}()

	return rl
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		now := time.Now()

		rl.mutex.Lock()
		w, exists := rl.windows[clientIP]
		if !exists || now.Sub(w.started) >= rl.window {
			w = &rateWindow{started: now}
			rl.windows[clientIP] = w
		}
		w.count++
		exceeded := w.count > rl.limit
		rl.mutex.Unlock()

		if exceeded {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := time.Now().Add(-rl.window)
	for ip, w := range rl.windows {
		if w.started.Before(cutoff) {
			delete(rl.windows, ip)
		}
	}
}
