package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-laundry/internal/resilience"
)

const maxLockWait = 250 * time.Millisecond

// Locker serialises updates across processes sharing one snapshot.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

var releaseScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0`)

// RedisLock is a SET NX lease held for the duration of one update.
type RedisLock struct {
	Client redis.UniversalClient
	TTL    time.Duration
	Retry  time.Duration
}

// WithLock polls with jittered backoff until the lease is acquired or ctx is done, runs
// fn, then releases the lease if it is still the holder.
func (l RedisLock) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if l.Client == nil {
		return errors.New("store: lock client not configured")
	}
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	retry := l.Retry
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	lockKey := key + ":lock"
	token := uuid.NewString()

	for attempt := 1; ; attempt++ {
		ok, err := l.Client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		if ok {
			break
		}
		wait := resilience.Backoff(retry, attempt, 0.2)
		if wait > maxLockWait || wait <= 0 {
			wait = maxLockWait
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	defer func() {
		_ = releaseScript.Run(context.WithoutCancel(ctx), l.Client, []string{lockKey}, token).Err()
	}()
	return fn(ctx)
}
