package configs

import (
	"github.com/spf13/viper"
)

const (
	DefaultStorageRootPath = "data/storage" // 默认存储根目录
	DefaultStorageDirPerm  = 0o755          // 新建目录权限
)

// StorageConfig 文件存储配置.所有 blob 都落在 RootPath 下，
// 目录结构与用户的文件夹路径一一对应.
type StorageConfig struct {
	RootPath string `mapstructure:"root_path" rule:"required"`
}

// setDefaults 设置存储配置的默认值.
func (c *StorageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.root_path", DefaultStorageRootPath)
}
