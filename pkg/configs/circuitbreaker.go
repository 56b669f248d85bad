package configs

import "github.com/spf13/viper"

// CircuitBreakerConfig 熔断器配置.主要保护磁盘/数据库故障时
// 不被持续的上传流量打穿.时间类字段单位为秒，零值走 gobreaker
// 的内置默认.
type CircuitBreakerConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	FailureRate       float64 `mapstructure:"failure_rate" rule:"min=0,max=1"` // 统计窗口失败比例阈值
	MinRequests       uint32  `mapstructure:"min_requests"`                    // 进入统计的最小请求数
	IntervalSeconds   int     `mapstructure:"interval_seconds" rule:"min=0"`   // 闭合状态计数重置周期
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"  rule:"min=0"`   // 打开状态持续时间（自动半开）
	MaxRequestsInHalf uint32  `mapstructure:"max_requests_in_half"`            // 半开状态允许的并发请求数
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.failure_rate", 0.5)
	v.SetDefault("circuit_breaker.min_requests", 20)
	v.SetDefault("circuit_breaker.interval_seconds", 60)
	v.SetDefault("circuit_breaker.timeout_seconds", 30)
	v.SetDefault("circuit_breaker.max_requests_in_half", 5)
}
