// Package configs 管理应用配置：服务端口、数据库、存储根目录、键值
// 与消息队列等.支持 YAML/JSON/TOML/dotenv 文件、MOXBOX_ 前缀的环境
// 变量覆盖，以及可选的配置热重载.
//
//	if err := configs.InitConfig("./"); err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(configs.GetConfig().Server.Port)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion 应用版本，tracing/metrics 的资源标签引用.
const AppVersion = "1.0.0"

// AppConfig 全局应用程序配置.
type AppConfig struct {
	Server         ServerConfig         `mapstructure:"server"`          // 服务器端口、调试开关等
	Log            LogConfig            `mapstructure:"log"`             // 日志相关配置
	DB             DBConfig             `mapstructure:"db"`              // 数据库配置
	Storage        StorageConfig        `mapstructure:"storage"`         // 文件存储根目录配置
	KV             KVConfig             `mapstructure:"kv"`              // 键值存储配置
	MQ             MQConfig             `mapstructure:"mq"`              // 消息队列配置
	Metrics        MetricsConfig        `mapstructure:"metrics"`         // 指标配置
	Tracing        TracingConfig        `mapstructure:"tracing"`         // 分布式追踪配置
	Events         EventsConfig         `mapstructure:"events"`          // 事件发布开关
	Auth           AuthConfig           `mapstructure:"auth"`            // 认证配置
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // 速率限制配置
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // 熔断器配置
	Cache          ResponseCacheConfig  `mapstructure:"cache"`           // 响应缓存配置
	Trash          TrashConfig          `mapstructure:"trash"`           // 回收站与后台清理配置
}

var (
	// globalConfig 当前配置快照，热重载整体替换而不是就地改写.
	globalConfig atomic.Pointer[AppConfig]
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载配置并填充默认值.path 指向配置文件时直接使用该
// 文件，指向目录时按 viper 支持的扩展名搜索其中的 config.*；
// 找不到配置文件则退回默认值加环境变量.
func InitConfig(path string) error {
	v := viper.New()
	setAllDefaults(v)

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(path)
		v.AddConfigPath(filepath.Join(path, "configs"))
	}

	v.SetEnvPrefix("MOXBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg := new(AppConfig)
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	globalConfig.Store(cfg)
	appViper = v

	watchReload(v, cfg.Server.ReloadConfig)

	return nil
}

// setAllDefaults 设置所有配置段的默认值.
func setAllDefaults(v *viper.Viper) {
	var cfg AppConfig

	cfg.Server.setDefaults(v)
	cfg.Log.setDefaults(v)
	cfg.DB.setDefaults(v)
	cfg.Storage.setDefaults(v)
	cfg.KV.setDefaults(v)
	cfg.MQ.setDefaults(v)
	cfg.Metrics.setDefaults(v)
	cfg.Tracing.setDefaults(v)
	cfg.Events.setDefaults(v)
	cfg.Auth.setDefaults(v)
	cfg.RateLimit.setDefaults(v)
	cfg.CircuitBreaker.setDefaults(v)
	cfg.Cache.setDefaults(v)
	cfg.Trash.setDefaults(v)
}

// watchReload 配置文件变化时解析出新快照再整体替换，解析失败保留
// 旧配置.已经拿到旧快照指针的调用方不受影响，下次 GetConfig 才见新值.
func watchReload(v *viper.Viper, enabled bool) {
	if !enabled {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		fresh := new(AppConfig)
		if err := v.Unmarshal(fresh); err != nil {
			fmt.Fprintf(os.Stderr, "config reload failed: %v\n", err)

			return
		}

		globalConfig.Store(fresh)
		fmt.Fprintln(os.Stderr, "config reloaded:", e.Name)
	})
	v.WatchConfig()
}

// GetConfig 返回当前配置快照.
func GetConfig() *AppConfig {
	if cfg := globalConfig.Load(); cfg != nil {
		return cfg
	}

	return &AppConfig{}
}

// GetViper 返回底层 Viper 实例，配置查看类命令用它列出生效值.
func GetViper() *viper.Viper {
	return appViper
}
