package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter caps bursts of status-change writes per caller. Buckets are
// keyed by the authenticated vendor so vendors behind a shared NAT do not
// drain each other's budget and a single vendor cannot dodge the cap by
// rotating IPs. Unauthenticated callers fall back to a per-IP bucket.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*tokenBucket
	maxTokens  float64
	refillRate float64 // tokens per second
}

// NewRateLimiter creates a rate limiter allowing maxRequests per perDuration,
// with maxRequests as the burst size.
func NewRateLimiter(maxRequests int, perDuration time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:    make(map[string]*tokenBucket),
		maxTokens:  float64(maxRequests),
		refillRate: float64(maxRequests) / perDuration.Seconds(),
	}

	go rl.evictStale()

	return rl
}

// evictStale drops buckets that have been idle long enough to be full again.
func (rl *RateLimiter) evictStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.buckets {
			if now.Sub(b.lastSeen) > 10*time.Minute {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, exists := rl.buckets[key]

	if !exists {
		rl.buckets[key] = &tokenBucket{
			tokens:   rl.maxTokens - 1,
			lastSeen: now,
		}
		return true
	}

	elapsed := now.Sub(b.lastSeen).Seconds()
	b.tokens += elapsed * rl.refillRate
	if b.tokens > rl.maxTokens {
		b.tokens = rl.maxTokens
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	return false
}

// limitKey identifies the caller. The vendor claim is set by AuthMiddleware,
// so on vendor routes the budget is shared across all of that vendor's
// connections.
func limitKey(c *gin.Context) string {
	if v, ok := c.Get("vendor_id"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return "vendor:" + id.String()
		}
	}
	return "ip:" + c.ClientIP()
}

// Middleware returns a gin middleware that rate limits requests per caller.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(limitKey(c)) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			c.Abort()
			return
		}
		c.Next()
	}
}
