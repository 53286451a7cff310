package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"videoinvites/internal/domain"
)

// RedisOptions configures the client behind the cooldown store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient builds a go-redis client with short timeouts; the cooldown is best effort.
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

type redisCooldown struct {
	client redis.Cmdable
	prefix string
}

// NewRedisCooldown returns a CooldownStore that claims keys with SET NX and a TTL.
func NewRedisCooldown(client redis.Cmdable, prefix string) domain.CooldownStore {
	return &redisCooldown{client: client, prefix: prefix}
}

func (c *redisCooldown) TrySet(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown set %s: %w", key, err)
	}
	return ok, nil
}

type noopCooldown struct{}

// NewNoopCooldown returns a CooldownStore that never suppresses anything.
func NewNoopCooldown() domain.CooldownStore {
	return noopCooldown{}
}

func (noopCooldown) TrySet(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}
