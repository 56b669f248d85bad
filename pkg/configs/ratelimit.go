package configs

import "github.com/spf13/viper"

// RateLimitConfig 速率限制配置.
// 默认突发容量取 RPS 的两倍，批量/拖拽上传一次会产生一串请求.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"   rule:"min=0"` // 每秒允许的请求数
	Burst   int     `mapstructure:"burst" rule:"min=0"` // 突发容量
	// Key 选择限流维度：global（全局）、ip（按客户端IP）、header:Header-Name（按请求头，
	// 经 oauth2-proxy 部署时可用 header:X-Auth-Request-Email 做按用户限流）
	Key string `mapstructure:"key"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.rps", 30.0)
	v.SetDefault("rate_limit.burst", 60)
	v.SetDefault("rate_limit.key", "ip")
}
