package correlation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

// keyPrefix namespaces correlation entries in Redis.
const keyPrefix = "bridge:correlation:"

// RedisStore is the shared Lookup variant for multi-instance bridge
// deployments. Entries expire after TTL so abandoned activities do not leak.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at the given URL
// (e.g., "redis://localhost:6379/0"). A zero ttl means entries never expire.
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Get returns the registered context, or nil on a miss.
func (s *RedisStore) Get(ctx context.Context, activityID string) (*contract.CorrelationContext, error) {
	data, err := s.client.Get(ctx, keyPrefix+activityID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var cc contract.CorrelationContext
	if err := json.Unmarshal(data, &cc); err != nil {
		return nil, fmt.Errorf("parse stored correlation: %w", err)
	}
	return &cc, nil
}

// Set registers the context for an activity id.
func (s *RedisStore) Set(ctx context.Context, activityID string, cc contract.CorrelationContext) error {
	data, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("marshal correlation: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+activityID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
