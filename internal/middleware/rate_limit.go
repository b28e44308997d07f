package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yigit/campusprint/internal/app/models/dto"
	"golang.org/x/time/rate"
)

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether the caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// LocalLimiter keeps one token bucket per key in process memory
type LocalLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter creates an in-process limiter refilling rps tokens per second
func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	return &LocalLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      bucketTTL(rps, burst),
		now:      time.Now,
	}
}

// Allow takes one token from the bucket of key
func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); !r.OK() || delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, Limit: l.burst, RetryAfter: delay}, nil
	}

	remaining := int(v.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Limit: l.burst, Remaining: remaining}, nil
}

// sweep drops buckets idle for longer than ttl, at most once per ttl
func (l *LocalLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.ttl {
		return
	}
	l.lastSweep = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, key)
		}
	}
}

// tokenBucketScript refills and takes one token atomically.
// Returns {allowed, remaining tokens, retry after in ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals)
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RedisLimiter shares token buckets between instances through redis
type RedisLimiter struct {
	client   redis.Scripter
	burst    int
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
}

// NewRedisLimiter creates a limiter backed by client
func NewRedisLimiter(client redis.Scripter, rps float64, burst int) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		burst:    burst,
		interval: refillInterval(rps),
		ttl:      bucketTTL(rps, burst),
		now:      time.Now,
	}
}

// Allow runs the token bucket script for key
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	args := []interface{}{
		l.now().UnixMilli(),
		l.burst,
		l.interval.Milliseconds(),
		int64(math.Ceil(l.ttl.Seconds())),
	}

	vals, err := tokenBucketScript.Run(ctx, l.client, []string{key}, args...).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected result %v", vals)
	}

	return Decision{
		Allowed:    vals[0] == 1,
		Limit:      l.burst,
		Remaining:  int(vals[1]),
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

func refillInterval(rps float64) time.Duration {
	if rps <= 0 {
		return time.Second
	}
	interval := time.Duration(float64(time.Second) / rps)
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return interval
}

// bucketTTL is how long an idle bucket is kept: long enough to refill fully
func bucketTTL(rps float64, burst int) time.Duration {
	ttl := refillInterval(rps) * time.Duration(burst+1)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}

// RateLimit throttles requests per client IP and route. When primary fails
// the request is checked against fallback, or let through when fallback is nil.
func RateLimit(primary, fallback Limiter, prefix string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rateKey(prefix, c)

		decision, err := primary.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable")
			if fallback == nil {
				c.Next()
				return
			}
			if decision, err = fallback.Allow(c.Request.Context(), key); err != nil {
				c.Next()
				return
			}
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			secs := int(math.Ceil(decision.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			detail := dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests").
				WithDetails(fmt.Sprintf("Retry after %d seconds", secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(detail))
			return
		}

		c.Next()
	}
}

func rateKey(prefix string, c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return strings.Join([]string{prefix, "ip", ip, "route", c.Request.Method + " " + route}, ":")
}
