package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds our token, so a
// holder whose TTL lapsed cannot free a lock someone else has since taken.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// PeriodLocker implements usecase.PeriodLocker with SET NX PX.
type PeriodLocker struct {
	client *redis.Client
	prefix string
}

// NewPeriodLocker creates a new PeriodLocker.
func NewPeriodLocker(client *redis.Client) *PeriodLocker {
	return &PeriodLocker{
		client: client,
		prefix: "lock:",
	}
}

// TryLock takes the lock for key without waiting. ok is false when another
// holder owns it.
func (l *PeriodLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	fullKey := l.prefix + key
	token := ulid.Make().String()

	set, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !set {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}

	return release, true, nil
}
