package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindow increments the counter and arms the expiry on the first hit in one round trip.
var fixedWindow = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// FixedWindowAllow counts a hit against scope and reports whether it is within limit.
// The window opens on the first hit and is not extended by later ones.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if c == nil || c.cmd == nil {
		return false, 0, errNotConnected
	}
	if window <= 0 {
		return false, 0, fmt.Errorf("rate limit window must be positive, got %s", window)
	}

	key := c.RateLimitKey(scope)
	count, err := fixedWindow.Run(ctx, c.cmd, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return count <= limit, count, nil
}

// RateLimitKey is the counter key for scope.
func (c *Client) RateLimitKey(scope string) string {
	return c.keyspace().Key("rate_limit", scope)
}
