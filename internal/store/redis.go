package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-laundry/internal/laundry"
)

// DefaultKey is the Redis key holding the workspace snapshot.
const DefaultKey = "laundry:workspace"

// Redis stores the snapshot as one JSON document under Key.
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis constructs a Redis store. An empty key uses DefaultKey.
func NewRedis(client redis.UniversalClient, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: key}
}

// Key returns the snapshot key.
func (s *Redis) Key() string { return s.key }

func (s *Redis) Load(ctx context.Context) (*laundry.Dataset, bool, error) {
	if s == nil || s.client == nil {
		return nil, false, errors.New("store: redis client not configured")
	}
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: load snapshot: %w", err)
	}
	var ds laundry.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, false, fmt.Errorf("store: decode snapshot: %w", err)
	}
	return &ds, true, nil
}

func (s *Redis) Save(ctx context.Context, ds *laundry.Dataset) error {
	if s == nil || s.client == nil {
		return errors.New("store: redis client not configured")
	}
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("store: save snapshot: %w", err)
	}
	return nil
}

func (s *Redis) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("store: redis client not configured")
	}
	return s.client.Ping(ctx).Err()
}
