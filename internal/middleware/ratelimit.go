package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/response"
)

// RateLimiter is a token-bucket limiter for the routes a misbehaving exam
// client can hammer, the token gate and the violation report. Buckets are
// keyed by the authenticated student when claims are present, so students
// behind one school NAT do not share a bucket, and by client IP otherwise.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	interval time.Duration
}

type bucket struct {
	remaining  int
	lastRefill time.Time
}

// NewRateLimiter allows capacity requests per interval for each caller.
func NewRateLimiter(capacity int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		capacity: capacity,
		interval: interval,
	}
	go rl.evictLoop()
	return rl
}

// Middleware rejects callers whose bucket is empty with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(callerKey(c)) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func callerKey(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return "student:" + strconv.Itoa(claims.UserID)
	}
	return "ip:" + c.ClientIP()
}

func (rl *RateLimiter) allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{remaining: rl.capacity, lastRefill: now}
		rl.buckets[key] = b
	}

	if refill := int(now.Sub(b.lastRefill)/rl.interval) * rl.capacity; refill > 0 {
		b.remaining = min(b.remaining+refill, rl.capacity)
		b.lastRefill = now
	}

	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

// evictLoop drops buckets that have been idle long enough to be full again.
func (rl *RateLimiter) evictLoop() {
	for range time.Tick(time.Minute) {
		rl.mu.Lock()
		for key, b := range rl.buckets {
			if time.Since(b.lastRefill) > 3*rl.interval {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}
