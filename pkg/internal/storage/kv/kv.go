// Package kv 提供键值存储接口与 memory/redis/nats 三种实现，
// 供响应缓存与统计缓存使用.后端按配置经工厂注册表选择.
//
// Keys 的模式语义：空串与 "*" 匹配全部键，"prefix*" 匹配前缀，
// 其余按精确键名匹配.Redis 后端直接使用原生 glob，能力是其超集.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

// ErrKeyNotFound 键不存在或已过期.各后端统一包装此错误返回，
// 调用方用 errors.Is 区分未命中与后端故障.
var ErrKeyNotFound = errors.New("key not found")

// notFound 统一未命中错误的包装格式.
func notFound(key string) error {
	return fmt.Errorf("key %q: %w", key, ErrKeyNotFound)
}

// KVType 键值存储类型.
type KVType string

const (
	KVTypeMemory KVType = "memory" // 进程内存储，单机默认
	KVTypeRedis  KVType = "redis"  // 原生 TTL 与 glob 匹配
	KVTypeNATS   KVType = "nats"   // JetStream KV bucket
)

// KVStore 键值存储接口，三个后端的公共契约.
type KVStore interface {
	// Get 获取键的值.未命中或已过期返回包装 ErrKeyNotFound 的错误.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置键的值.ttl 不为正时永不过期.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除键.键不存在时不报错.
	Delete(ctx context.Context, key string) error
	// Exists 检查键是否存在且未过期.
	Exists(ctx context.Context, key string) (bool, error)
	// Keys 列出匹配模式的键，见包文档的模式语义.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Close 关闭存储连接.
	Close() error
}

// Client 对外暴露的 KV 客户端，直接内嵌所选后端.
type Client struct {
	KVStore
}

// KVFactory 定义创建 KVStore 的工厂函数类型，config 为该后端的子配置.
type KVFactory func(ctx context.Context, config any) (KVStore, error)

// kvFactories 存储 KV 类型到工厂的映射，各后端在 init 里注册.
var kvFactories = make(map[KVType]KVFactory)

// RegisterKVFactory 注册 KV 工厂函数.
func RegisterKVFactory(kvType KVType, factory KVFactory) {
	kvFactories[kvType] = factory
}

// GetRegisteredKVTypes 返回已注册的 KV 类型列表.
func GetRegisteredKVTypes() []KVType {
	types := make([]KVType, 0, len(kvFactories))
	for kvType := range kvFactories {
		types = append(types, kvType)
	}

	return types
}

// matchPattern 实现 memory/nats 后端共用的键模式匹配.
func matchPattern(key, pattern string) bool {
	switch {
	case pattern == "" || pattern == "*":
		return true
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(key, pattern[:len(pattern)-1])
	default:
		return key == pattern
	}
}

// NewKVStore 按类型创建 KVStore 实例.
func NewKVStore(ctx context.Context, kvType KVType, config any) (KVStore, error) {
	factory, exists := kvFactories[kvType]
	if !exists {
		return nil, fmt.Errorf("unsupported kv type %q", kvType)
	}

	return factory(ctx, config)
}

// NewKVClient 按配置创建 KVClient，把类型对应的子配置交给工厂.
func NewKVClient(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().KV

	var sub any

	switch KVType(cfg.Type) {
	case KVTypeRedis:
		sub = &cfg.Redis
	case KVTypeNATS:
		sub = &cfg.NATS
	case KVTypeMemory:
		// 内存实现无需配置
	}

	store, err := NewKVStore(ctx, KVType(cfg.Type), sub)
	if err != nil {
		return nil, err
	}

	return &Client{KVStore: store}, nil
}
