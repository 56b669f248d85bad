package configs

import (
	"time"

	"github.com/spf13/viper"
)

// ServerConfig HTTP 服务配置.Timeout 同时作为读头超时与优雅停机
// 的等待上限，Debug 打开后日志降到 debug 级并暴露 swagger 页面.
type ServerConfig struct {
	Port         int    `mapstructure:"port"          rule:"min=1,max=65535"`
	Host         string `mapstructure:"host"          rule:"ip"`
	ReloadConfig bool   `mapstructure:"reload_config"` // 配置文件变更时热加载
	Debug        bool   `mapstructure:"debug"`
	Timeout      int    `mapstructure:"timeout"       rule:"min=1,max=300"` // 秒
	MaxUploadMB  int64  `mapstructure:"max_upload_mb" rule:"min=1"`         // 单次上传请求体上限
}

// GetTimeoutDuration 返回超时时间作为 time.Duration.
func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// MaxUploadBytes 返回上传请求体上限（字节）.
func (s *ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

// setDefaults 设置服务器配置的默认值.
func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.reload_config", true)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.timeout", 30)
	v.SetDefault("server.max_upload_mb", 1024)
}
