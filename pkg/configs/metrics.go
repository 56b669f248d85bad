package configs

import "github.com/spf13/viper"

// MetricsConfig Prometheus 指标相关配置.
type MetricsConfig struct {
	Enabled        bool              `mapstructure:"enabled"`         // 是否启用指标
	ServiceName    string            `mapstructure:"service_name"`    // build_info 指标的服务名
	ServiceVersion string            `mapstructure:"service_version"` // build_info 指标的版本号
	RuntimeMetrics bool              `mapstructure:"runtime_metrics"` // 是否收集 Go 运行时指标
	Pprof          bool              `mapstructure:"pprof"`           // 是否暴露 pprof 端点
	Labels         map[string]string `mapstructure:"labels"`          // 附加到全部指标的常量标签
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.service_name", "moxbox")
	v.SetDefault("metrics.service_version", AppVersion)
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.pprof", false)
	v.SetDefault("metrics.labels", map[string]string{})
}
