package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleVisitorTTL is how long an unused limiter is kept before it is swept.
const idleVisitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter stores a token bucket per client IP.
type IPRateLimiter struct {
	visitors  map[string]*visitor
	mu        sync.Mutex
	r         rate.Limit
	b         int
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter creates a limiter allowing r requests per second with burst b per IP.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		r:        r,
		b:        b,
		now:      time.Now,
	}
}

// GetLimiter returns the limiter for ip, creating it on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) > idleVisitorTTL {
		i.sweep(now)
	}

	v, ok := i.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(i.r, i.b)}
		i.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Len returns the number of tracked clients.
func (i *IPRateLimiter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.visitors)
}

// sweep drops limiters idle for longer than idleVisitorTTL. Caller holds mu.
func (i *IPRateLimiter) sweep(now time.Time) {
	for ip, v := range i.visitors {
		if now.Sub(v.lastSeen) > idleVisitorTTL {
			delete(i.visitors, ip)
		}
	}
	i.lastSweep = now
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	return RateLimiterWith(NewIPRateLimiter(r, b))
}

// RateLimiterWith rate limits requests using an existing limiter set.
func RateLimiterWith(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "too many requests"})
			return
		}
		c.Next()
	}
}
