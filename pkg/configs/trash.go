package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultTrashRetentionDays   = 30   // 回收站保留天数
	DefaultTrashAutoClean       = true // 是否启用定时清理
	DefaultOrphanSweepEnabled   = true // 是否启用孤儿 blob 扫描
	DefaultOrphanGraceMinutes   = 60   // 磁盘文件比 catalog 新多久以内不回收
	DefaultSweepWorkers         = 4    // 扫描并发度
	DefaultReconcileFolderSizes = true // 是否定时全量重算文件夹大小
)

// TrashConfig 回收站与后台清理配置.
type TrashConfig struct {
	RetentionDays int  `mapstructure:"retention_days" rule:"min=1"`
	AutoClean     bool `mapstructure:"auto_clean"`
	// 孤儿 blob 扫描：磁盘上存在但 catalog 无记录的文件是补偿失败留下的
	// 唯一残留，由定时任务回收.
	OrphanSweep        bool `mapstructure:"orphan_sweep"`
	OrphanGraceMinutes int  `mapstructure:"orphan_grace_minutes" rule:"min=1"`
	SweepWorkers       int  `mapstructure:"sweep_workers"        rule:"min=1,max=32"`
	ReconcileSizes     bool `mapstructure:"reconcile_sizes"`
}

// RetentionCutoff 返回清理截止时间：删除早于该时间进入回收站的文件.
func (c *TrashConfig) RetentionCutoff(now time.Time) time.Time {
	return now.Add(-time.Duration(c.RetentionDays) * 24 * time.Hour)
}

// OrphanGrace 返回孤儿文件的宽限时长.
func (c *TrashConfig) OrphanGrace() time.Duration {
	return time.Duration(c.OrphanGraceMinutes) * time.Minute
}

func (c *TrashConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("trash.retention_days", DefaultTrashRetentionDays)
	v.SetDefault("trash.auto_clean", DefaultTrashAutoClean)
	v.SetDefault("trash.orphan_sweep", DefaultOrphanSweepEnabled)
	v.SetDefault("trash.orphan_grace_minutes", DefaultOrphanGraceMinutes)
	v.SetDefault("trash.sweep_workers", DefaultSweepWorkers)
	v.SetDefault("trash.reconcile_sizes", DefaultReconcileFolderSizes)
}
