package locker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
)

const (
	// lockTTL caps how long a crashed holder can block a location.
	lockTTL       = 10 * time.Second
	retryInterval = 100 * time.Millisecond
	maxAttempts   = 50
)

// RedisLocker serializes check-then-reserve per location with a redis
// SET NX lock. Contending reservation attempts spin briefly and give up
// with domain.ErrLockNotAcquired once the retry budget is spent.
type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		ok, err := l.rdb.SetNX(ctx, key, 1, lockTTL).Result()
		if err != nil {
			return nil, err
		}

		if ok {
			return func() {
				bg, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = l.rdb.Del(bg, key).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	return nil, domain.ErrLockNotAcquired
}
