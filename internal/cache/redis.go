package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Redis is a best-effort cache: errors degrade to misses so an
// unreachable redis never breaks browsing.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
}

func NewRedis(addr string, logger *zap.Logger) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		logger: logger,
		prefix: "shopfront:catalog:",
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("redis get", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return raw, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		r.logger.Warn("redis set", zap.String("key", key), zap.Error(err))
	}
}

func (r *Redis) Close() error { return r.client.Close() }
