package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// TTL 信封：memory 与 NATS KV 后端没有原生按键过期，带 TTL 的值
// 统一包进 {v,e} 信封并加魔数前缀；过期判定在读取路径上惰性完成.
// Redis 后端用原生 TTL，不经过这里.
const ttlMagic = "MBTTL1:"

type ttlValue struct {
	V []byte `json:"v"`
	E int64  `json:"e,omitempty"` // unix 秒；0 表示永不过期
}

// wrapTTL 为值加上过期信封.ttl<=0 时不包装，返回值的独立副本，
// 语义为永不过期.
func wrapTTL(value []byte, ttl time.Duration) ([]byte, error) {
	if ttl <= 0 {
		out := make([]byte, len(value))
		copy(out, value)

		return out, nil
	}

	tv := ttlValue{V: value, E: time.Now().Add(ttl).Unix()}

	b, err := sonic.Marshal(tv)
	if err != nil {
		return nil, fmt.Errorf("marshal ttl value: %w", err)
	}

	return append([]byte(ttlMagic), b...), nil
}

// unwrapTTL 去掉过期信封.未包装的值原样返回；已过期时 expired 为
// true 且值为 nil，调用方应顺手删除该键.
func unwrapTTL(b []byte, now time.Time) (value []byte, expired bool, err error) {
	if !bytes.HasPrefix(b, []byte(ttlMagic)) {
		return b, false, nil
	}

	var tv ttlValue
	if err := sonic.Unmarshal(b[len(ttlMagic):], &tv); err != nil {
		return nil, false, fmt.Errorf("unmarshal ttl value: %w", err)
	}

	if tv.E > 0 && now.Unix() >= tv.E {
		return nil, true, nil
	}

	return tv.V, false, nil
}
