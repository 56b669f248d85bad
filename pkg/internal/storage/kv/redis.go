//go:build !no_redis

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

// scanBatchHint 每轮 SCAN 的批量提示，少跑几个来回.
const scanBatchHint = 512

// RedisKV 基于 Redis 的 KV 实现.TTL 用原生过期，不经过信封.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV 创建 Redis KV 实例并验证连通性.
func NewRedisKV(ctx context.Context, config any) (KVStore, error) {
	redisConfig, ok := config.(*configs.RedisKVConfig)
	if !ok {
		return nil, fmt.Errorf("redis kv: unexpected config type %T", config)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()

		return nil, fmt.Errorf("ping redis %s: %w", redisConfig.Addr, err)
	}

	return &RedisKV{client: rdb}, nil
}

// Get 获取键的值，redis.Nil 映射为统一的未命中错误.
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.Get(ctx, key).Bytes()

	switch {
	case errors.Is(err, redis.Nil):
		return nil, notFound(key)
	case err != nil:
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}

	return result, nil
}

// Set 设置键的值.
func (r *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}

	return nil
}

// Delete 删除键.
func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}

	return nil
}

// Exists 检查键是否存在.
func (r *RedisKV) Exists(ctx context.Context, key string) (bool, error) {
	count, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %q: %w", key, err)
	}

	return count > 0, nil
}

// Keys 用 SCAN 遍历匹配模式的键，避免 KEYS 阻塞服务端.
func (r *RedisKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}

	keys := make([]string, 0)

	iter := r.client.Scan(ctx, 0, pattern, scanBatchHint).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %q: %w", pattern, err)
	}

	return keys, nil
}

// Close 关闭 Redis 连接.
func (r *RedisKV) Close() error {
	return r.client.Close()
}

func init() {
	RegisterKVFactory(KVTypeRedis, NewRedisKV)
}
