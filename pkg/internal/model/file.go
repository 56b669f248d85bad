package model

import (
	"time"
)

// 文件状态机：active --软删除--> deleted --恢复--> active，
// 彻底删除后行不复存在.deleted 行仍占据命名槽位并计入文件夹大小.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// File 文件模型.一行对应磁盘上的一个 blob.
type File struct {
	ID string `gorm:"primaryKey;size:26" json:"id"` // ULID
	// 用户看到的显示名；同一文件夹内同状态下唯一（由冲突检测保证，
	// 文件夹从 storage_path 推导，无法用数据库唯一索引表达）
	OriginalName string `gorm:"size:512;index" json:"original_name"`
	// 服务端生成的磁盘文件名（uuid+扩展名），与显示名解耦，
	// 避免非法字符与命名碰撞
	StoredName string `gorm:"size:255;index" json:"stored_name"`
	MimeType   string `gorm:"size:255"       json:"mime_type"`
	Size       int64  `gorm:"index"          json:"size"`
	HashSha256 string `gorm:"size:64;index"  json:"hash_sha256"`
	// 相对存储根的路径，目录部分即所属文件夹，叶子是 StoredName
	StoragePath string `gorm:"size:1024;index" json:"storage_path"`
	// 所有者标识（认证代理注入的邮箱），空串表示无主
	OwnerID  string `gorm:"size:255;index" json:"owner_id"`
	IsPublic bool   `gorm:"index"          json:"is_public"`
	// active | deleted，显式枚举而非 gorm 软删除，
	// 回收站行要参与命名冲突与大小统计的常规查询
	Status string `gorm:"size:16;index;default:active" json:"status"`
	// 下载遥测，尽力而为更新
	AccessCount  int64      `json:"access_count"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名.
func (File) TableName() string {
	return "files"
}

// IsDeleted 是否在回收站中.
func (f *File) IsDeleted() bool {
	return f.Status == StatusDeleted
}
