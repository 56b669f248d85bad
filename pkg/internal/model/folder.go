package model

import (
	"time"
)

// Folder 文件夹模型.path 是相对存储根的唯一路径，同时充当自然键；
// 文件不持有外键，归属关系由 storage_path 前缀推导.
type Folder struct {
	ID   string `gorm:"primaryKey;size:26" json:"id"` // ULID
	Path string `gorm:"size:1024;uniqueIndex" json:"path"`
	// 所有者标识，懒创建时从首个落入的文件继承
	OwnerID string `gorm:"size:255;index" json:"owner_id"`
	// 缓存的字节大小：覆盖该文件夹下所有层级的文件（active 与 deleted
	// 都计入），每次写操作后由聚合器重算，恒 >= 0
	Size int64 `json:"size"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名.
func (Folder) TableName() string {
	return "folders"
}
