package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultCacheEnabled    = true
	DefaultCacheTTLSeconds = 30  // 列表/统计接口的缓存时长
	DefaultCacheMaxBodyKB  = 256 // 超过该大小的响应不缓存
)

// ResponseCacheConfig GET 响应缓存配置.只缓存列表与统计类接口，
// 文件内容下载永远不走响应缓存.
type ResponseCacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds"  rule:"min=1"`
	MaxBodyKB  int  `mapstructure:"max_body_kb"  rule:"min=1"`
}

// TTL 返回缓存时长.
func (c *ResponseCacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// MaxBodyBytes 返回响应体缓存上限（字节）.
func (c *ResponseCacheConfig) MaxBodyBytes() int {
	return c.MaxBodyKB << 10
}

func (c *ResponseCacheConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("cache.enabled", DefaultCacheEnabled)
	v.SetDefault("cache.ttl_seconds", DefaultCacheTTLSeconds)
	v.SetDefault("cache.max_body_kb", DefaultCacheMaxBodyKB)
}
