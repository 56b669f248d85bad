package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

// NATSKV 把 JetStream KV bucket 当作键值后端.bucket 本身没有按键
// 过期，带 TTL 的值套统一信封，读取路径上发现过期就顺手删除.
type NATSKV struct {
	bucket jetstream.KeyValue
	conn   *nats.Conn
}

// NewNATSKV 连接 NATS 并打开配置的 bucket，bucket 缺失时创建.
func NewNATSKV(ctx context.Context, config any) (KVStore, error) {
	natsConfig, ok := config.(*configs.NATSKVConfig)
	if !ok {
		return nil, fmt.Errorf("nats kv: unexpected config type %T", config)
	}

	var opts []nats.Option
	if natsConfig.User != "" {
		opts = append(opts, nats.UserInfo(natsConfig.User, natsConfig.Password))
	}

	nc, err := nats.Connect(natsConfig.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", natsConfig.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	// 打开已有 bucket 是长期运行的常态，不存在再创建
	bucket, err := js.KeyValue(ctx, natsConfig.Bucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		bucket, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: natsConfig.Bucket})
	}

	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("open kv bucket %q: %w", natsConfig.Bucket, err)
	}

	return &NATSKV{bucket: bucket, conn: nc}, nil
}

// Get 获取键的值，过期键删除后按未命中处理.
func (n *NATSKV) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := n.bucket.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, notFound(key)
	}

	if err != nil {
		return nil, fmt.Errorf("nats kv get %q: %w", key, err)
	}

	val, expired, err := unwrapTTL(entry.Value(), time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.bucket.Delete(ctx, key)

		return nil, notFound(key)
	}

	return val, nil
}

// Set 设置键的值.
func (n *NATSKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := wrapTTL(value, ttl)
	if err != nil {
		return err
	}

	if _, err := n.bucket.Put(ctx, key, encoded); err != nil {
		return fmt.Errorf("nats kv put %q: %w", key, err)
	}

	return nil
}

// Delete 删除键，键不存在时不报错.
func (n *NATSKV) Delete(ctx context.Context, key string) error {
	err := n.bucket.Delete(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("nats kv delete %q: %w", key, err)
	}

	return nil
}

// Exists 检查键是否存在，复用 Get 的惰性过期处理.
func (n *NATSKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := n.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// Keys 用 ListKeys 流式遍历 bucket，过滤模式并剔除已过期的键.
// 空 bucket 直接得到空结果，不像一次性 Keys 那样报 no keys found.
func (n *NATSKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	lister, err := n.bucket.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("nats kv keys: %w", err)
	}

	now := time.Now()
	result := []string{}

	for key := range lister.Keys() {
		if !matchPattern(key, pattern) {
			continue
		}

		if entry, e := n.bucket.Get(ctx, key); e == nil {
			if _, expired, derr := unwrapTTL(entry.Value(), now); derr == nil && expired {
				_ = n.bucket.Delete(ctx, key)

				continue
			}
		}

		result = append(result, key)
	}

	return result, nil
}

// Close 关闭 NATS 连接.
func (n *NATSKV) Close() error {
	n.conn.Close()

	return nil
}

func init() {
	RegisterKVFactory(KVTypeNATS, NewNATSKV)
}
