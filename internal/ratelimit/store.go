package ratelimit

import (
	"time"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// DefaultPrefix namespaces limiter counters in Redis.
const DefaultPrefix = "laundry:ratelimit"

// NewRedisStore backs the limiter with Redis so counters are shared across replicas.
func NewRedisStore(client redis.UniversalClient, prefix string) (limiter.Store, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
}

// NewMemoryStore keeps counters in process memory.
func NewMemoryStore(prefix string) limiter.Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: prefix, CleanUpInterval: time.Minute})
}

// PerMinute builds a limiter allowing max requests per minute. Zero or negative
// max returns nil, which disables limiting.
func PerMinute(store limiter.Store, max int) *limiter.Limiter {
	if store == nil || max <= 0 {
		return nil
	}
	return limiter.New(store, limiter.Rate{Period: time.Minute, Limit: int64(max)})
}
