package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool               `mapstructure:"enabled"` // 总开关
	File    FileEventsConfig   `mapstructure:"file"`
	Folder  FolderEventsConfig `mapstructure:"folder"`
}

// FileEventsConfig 文件生命周期的事件开关。
type FileEventsConfig struct {
	Stored   bool `mapstructure:"stored"`   // 上传完成
	Deleted  bool `mapstructure:"deleted"`  // 移入回收站
	Restored bool `mapstructure:"restored"` // 从回收站恢复
	Purged   bool `mapstructure:"purged"`   // 彻底删除
	Moved    bool `mapstructure:"moved"`    // 移动/改名
	Accessed bool `mapstructure:"accessed"` // 下载访问
}

// FolderEventsConfig 文件夹领域的事件开关。
type FolderEventsConfig struct {
	Renamed bool `mapstructure:"renamed"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 文件生命周期事件：默认仅开启最小必要集，避免噪声过大
	v.SetDefault("events.file.stored", true)
	v.SetDefault("events.file.purged", true)

	// 可选事件：默认关闭，按需开启
	v.SetDefault("events.file.deleted", false)
	v.SetDefault("events.file.restored", false)
	v.SetDefault("events.file.moved", false)
	v.SetDefault("events.file.accessed", false) // 访问事件量可能很大，默认关闭

	v.SetDefault("events.folder.renamed", false)
}
