package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusbooks/internal/cache"

	"github.com/redis/go-redis/v9"
)

// RedisStorage Redis 存储，键为 <prefix>:<key>:<scope>
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage 创建 Redis 存储，ttl<=0 表示不过期
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStorage{client: client, ttl: ttl}
}

func (r *RedisStorage) redisKey(scope, key string) string {
	return cache.BuildKey(fmt.Sprintf("%s:%s", key, scope))
}

// Load 读取
func (r *RedisStorage) Load(ctx context.Context, scope, key string) ([]byte, bool, error) {
	if r == nil || r.client == nil {
		return nil, false, errors.New("cart redis storage unavailable")
	}
	raw, err := r.client.Get(ctx, r.redisKey(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Save 覆盖写入，每次写入都会刷新过期时间
func (r *RedisStorage) Save(ctx context.Context, scope, key string, payload []byte) error {
	if r == nil || r.client == nil {
		return errors.New("cart redis storage unavailable")
	}
	return r.client.Set(ctx, r.redisKey(scope, key), payload, r.ttl).Err()
}

// Delete 删除
func (r *RedisStorage) Delete(ctx context.Context, scope, key string) error {
	if r == nil || r.client == nil {
		return errors.New("cart redis storage unavailable")
	}
	return r.client.Del(ctx, r.redisKey(scope, key)).Err()
}
