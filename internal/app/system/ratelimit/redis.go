package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript increments the counter and starts the window on first use.
const allowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type evaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Redis is a fixed-window limiter shared across instances. It fails open
// when Redis is unreachable.
type Redis struct {
	client evaler
	window time.Duration
	max    int
	prefix string
}

// NewRedis returns a Redis-backed limiter, or nil when client is nil.
func NewRedis(client *redis.Client, prefix string, max int, window time.Duration) *Redis {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &Redis{client: client, window: window, max: max, prefix: prefix}
}

// Allow implements KeyLimiter.
func (l *Redis) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key = normalizeKey(key)
	if key == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, allowScript, []string{l.prefix + key}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
