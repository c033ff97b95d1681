package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
	"golang.org/x/time/rate"
)

// KeyedRateLimiter keeps one token bucket per key (client IP or actor id).
type KeyedRateLimiter struct {
	keys  map[string]*rateLimiterEntry
	mu    sync.Mutex
	r     rate.Limit
	burst int
	stop  chan struct{}
	once  sync.Once
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedRateLimiter creates a limiter allowing r events per second with the
// given burst per key. Idle keys are evicted every minute until Stop.
func NewKeyedRateLimiter(r rate.Limit, burst int) *KeyedRateLimiter {
	rl := &KeyedRateLimiter{
		keys:  make(map[string]*rateLimiterEntry),
		r:     r,
		burst: burst,
		stop:  make(chan struct{}),
	}
	go rl.cleanup(time.Minute)
	return rl
}

func (rl *KeyedRateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, entry := range rl.keys {
				if time.Since(entry.lastSeen) > 3*time.Minute {
					delete(rl.keys, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

func (rl *KeyedRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Get returns the rate limiter for key.
func (rl *KeyedRateLimiter) Get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.keys[key]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.r, rl.burst)}
		rl.keys[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// ActorLimiter adapts a KeyedRateLimiter to per-actor send throttling. It is
// the in-process counterpart of database.RedisLimiter.
type ActorLimiter struct {
	*KeyedRateLimiter
}

// NewActorLimiter allows perMinute sends per actor with a burst of a third of that.
func NewActorLimiter(perMinute int) *ActorLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	burst := perMinute / 3
	if burst < 1 {
		burst = 1
	}
	return &ActorLimiter{NewKeyedRateLimiter(rate.Limit(float64(perMinute)/60.0), burst)}
}

func (l *ActorLimiter) Allow(_ context.Context, actorID uint) (bool, error) {
	return l.Get(strconv.FormatUint(uint64(actorID), 10)).Allow(), nil
}

// GeneralLimiter: 600 requests per minute per IP.
var GeneralLimiter = NewKeyedRateLimiter(rate.Limit(10.0), 50)

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(limiter *KeyedRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !limiter.Get(ip).Allow() {
			logger.Warn().
				Str("ip", ip).
				Str("path", c.Request.URL.Path).
				Msg("Rate limit exceeded")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many requests",
				"message": "Rate limit exceeded. Please slow down.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GeneralRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(GeneralLimiter)
}
