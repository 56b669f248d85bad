// Package cache 在 KV 存储上提供类型安全的泛型缓存.
//
// 值用 sonic 序列化存入底层 KV（memory/redis/nats 之一），读取时反
// 序列化回调用方类型.响应缓存中间件与统计缓存都建在这层之上，
// 共用一个 KV 后端时靠命名空间前缀互相隔离.
//
// 用法：
//
//	c := cache.NewNamespaced(kvStore, "stats:")
//	err := cache.Set(ctx, c, owner, stats, 30*time.Second)
//	stats, err := cache.Get[types.StatsSummary](ctx, c, owner)
//	stats, err = cache.GetOrSet(ctx, c, owner, compute, ttl)
//
// 缓存未命中通过 error 返回，由调用方决定回源；写入失败一律按
// 未缓存处理，不影响主流程.线程安全取决于底层 KV 实现.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/Flapjacck/moxbox/pkg/internal/storage/kv"
)

// Cache 是 KV 存储上的一个缓存视图，prefix 拼在所有键前.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
}

// NewCache 创建无前缀的缓存实例，键原样落到底层 KV.
func NewCache(kvStore kv.KVStore) *Cache {
	return &Cache{kvStore: kvStore}
}

// NewNamespaced 创建带前缀的缓存实例.同一 KV 后端上的多个缓存
// 互不可见，Clear 也只清扫自己的命名空间.
func NewNamespaced(kvStore kv.KVStore, prefix string) *Cache {
	return &Cache{kvStore: kvStore, prefix: prefix}
}

func (c *Cache) key(k string) string { return c.prefix + k }

// Get 泛型获取缓存值.反序列化失败视为缓存损坏，顺手删除该键，
// 下一次读取自然回源重建.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.key(key))
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		_ = c.kvStore.Delete(ctx, c.key(key))

		return zero, fmt.Errorf("unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.key(key), data, ttl)
}

// GetOrSet 获取缓存值，未命中时执行 getter 并回填.回填失败不影响
// 返回值.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	value, err := getter()
	if err != nil {
		var zero T
		return zero, err
	}

	_ = Set(ctx, c, key, value, ttl)

	return value, nil
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, c.key(key))
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, c.key(key))
}

// Clear 删除本命名空间下的全部缓存键.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, c.prefix+"*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := c.kvStore.Delete(ctx, key); err != nil {
			return err
		}
	}

	return nil
}
