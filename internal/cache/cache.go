package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON values by key. A miss is reported as found == false,
// never as an error.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// Keys used by the services.
const (
	KeyCurrentTerm = "portal:academic-term:current"
	KeyPaymentStat = "portal:payments:statistics"
)

// StudentPaymentStatKey scopes payment statistics to one student.
func StudentPaymentStatKey(studentID int64) string {
	return fmt.Sprintf("%s:student:%d", KeyPaymentStat, studentID)
}

// AccessKey caches the student allow-list of one identity user.
func AccessKey(userID string) string {
	return "portal:access:" + userID
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a redis-backed cache, or a no-op cache when client is nil.
func New(client *redis.Client, ttl time.Duration) Cache {
	if client == nil {
		return Noop{}
	}
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// a value we cannot decode is as good as a miss
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, interface{}) error         { return nil }
func (Noop) Delete(context.Context, ...string) error                { return nil }
