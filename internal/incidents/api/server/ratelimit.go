package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Leopold1975/incidents_control/internal/pkg/config"
	"github.com/Leopold1975/incidents_control/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// limiterScript implements a token bucket per key. Running it inside redis
// keeps refill and take atomic across server instances.
var limiterScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, retry_after_ms }
`)

// rateLimitMiddleware throttles a route per client IP. On redis failure the
// request passes through, auth must not go down with the limiter backend.
func rateLimitMiddleware(cfg config.Limiter, rdb *redis.Client, lg logger.Logger) func(next http.Handler) http.Handler {
	if !cfg.Enabled || rdb == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			key := "ratelimit:" + r.URL.Path + ":" + ip

			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}

			vals, err := limiterScript.Run(r.Context(), rdb, []string{key}, args...).Result()
			if err != nil {
				lg.Warnf("ratelimit redis error for key %s: %s", key, err.Error())
				next.ServeHTTP(w, r)

				return
			}

			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 2 {
				lg.Warnf("ratelimit unexpected script result for key %s", key)
				next.ServeHTTP(w, r)

				return
			}

			allowed, _ := arr[0].(int64)
			retryMs, _ := arr[1].(int64)

			if allowed != 1 {
				secs := int(math.Ceil(float64(retryMs) / 1000.0))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				handleError(w, "too many requests", http.StatusTooManyRequests)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
