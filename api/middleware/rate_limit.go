package middleware

import (
	"sync"
	"sync/atomic"
	"time"

	"jewelry/api/response"
	"jewelry/config"
	"jewelry/pkg/errors"
	"jewelry/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// minIdle is the shortest time a client's bucket is kept after its last request.
const minIdle = 3 * time.Minute

// RateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than it takes them to refill are dropped on a later call to Allow.
type RateLimiter struct {
	limiters  sync.Map // ip -> *visitor
	rate      rate.Limit
	burst     int
	idle      time.Duration
	lastSweep atomic.Int64
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

func NewRateLimiter(r float64, burst int) *RateLimiter {
	idle := minIdle
	if r > 0 {
		if refill := time.Duration(float64(burst) / r * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	rl := &RateLimiter{
		rate:  rate.Limit(r),
		burst: burst,
		idle:  idle,
		now:   time.Now,
	}
	rl.lastSweep.Store(rl.now().UnixNano())
	return rl
}

func (rl *RateLimiter) getVisitor(ip string) *visitor {
	if v, ok := rl.limiters.Load(ip); ok {
		return v.(*visitor)
	}

	v, _ := rl.limiters.LoadOrStore(ip, &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	return v.(*visitor)
}

// Allow consumes one token for ip.
func (rl *RateLimiter) Allow(ip string) bool {
	now := rl.now()
	rl.sweep(now)

	v := rl.getVisitor(ip)
	v.lastSeen.Store(now.UnixNano())
	return v.limiter.AllowN(now, 1)
}

// sweep drops idle buckets at most once per idle period.
func (rl *RateLimiter) sweep(now time.Time) {
	last := rl.lastSweep.Load()
	if now.UnixNano()-last < int64(rl.idle) || !rl.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-rl.idle).UnixNano()
	rl.limiters.Range(func(key, value any) bool {
		if value.(*visitor).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// Tracked reports how many client buckets are held.
func (rl *RateLimiter) Tracked() int {
	n := 0
	rl.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// RateLimitMiddleware limits requests per client IP. name tags the log line
// so the global and the tracking limiter can be told apart.
func RateLimitMiddleware(name string, cfg *config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	limiter := NewRateLimiter(cfg.Rate, cfg.Burst)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.Allow(ip) {
			logger.Warn("Rate limit exceeded",
				zap.String("limiter", name),
				zap.String("request_id", response.GetRequestID(c)),
				zap.String("client_ip", ip))

			response.HandleAppError(c, errors.TooManyRequests("Too many requests, please try again later"))
			return
		}

		c.Next()
	}
}
