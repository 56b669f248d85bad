package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MemoryKV 基于 sync.Map 的内存 KV 实现，单机部署的默认选择.
// 带 TTL 的值经统一信封包装，过期键在 Get/Exists/Keys 路径上惰性删除.
type MemoryKV struct {
	data sync.Map
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(ctx context.Context, config any) (KVStore, error) {
	return &MemoryKV{}, nil
}

// load 取出键的未包装值.不存在与已过期统一按未命中处理，
// 过期键顺手删除.
func (m *MemoryKV) load(key string) ([]byte, error) {
	raw, exists := m.data.Load(key)
	if !exists {
		return nil, notFound(key)
	}

	data, ok := raw.([]byte)
	if !ok {
		return nil, fmt.Errorf("memory kv: unexpected value type %T for key %q", raw, key)
	}

	val, expired, err := unwrapTTL(data, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		m.data.Delete(key)

		return nil, notFound(key)
	}

	return val, nil
}

// Get 获取键的值，过期键视同不存在.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := m.load(key)
	if err != nil {
		return nil, err
	}

	// 返回副本，防止调用方改写存储中的缓冲
	out := make([]byte, len(val))
	copy(out, val)

	return out, nil
}

// Set 设置键的值.wrapTTL 总是返回独立缓冲，无需再复制.
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := wrapTTL(value, ttl)
	if err != nil {
		return err
	}

	m.data.Store(key, encoded)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.data.Delete(key)

	return nil
}

// Exists 检查键是否存在，复用 load 的惰性过期处理.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.load(key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// Keys 列出匹配模式的键，遍历时同步剔除已过期的键.
func (m *MemoryKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	now := time.Now()
	keys := []string{}

	m.data.Range(func(key, value any) bool {
		k, ok := key.(string)
		if !ok {
			return true
		}

		if data, ok := value.([]byte); ok {
			if _, expired, err := unwrapTTL(data, now); err == nil && expired {
				m.data.Delete(k)

				return true
			}
		}

		if matchPattern(k, pattern) {
			keys = append(keys, k)
		}

		return true
	})

	return keys, nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
