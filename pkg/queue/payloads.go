package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 文件生命周期领域 --------------------------

// FileRef 标识 catalog 中的一个文件及其存储位置.
type FileRef struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name,omitempty"`
	StoredName   string `json:"stored_name,omitempty"`
	StoragePath  string `json:"storage_path"`
	Folder       string `json:"folder"`
	Size         int64  `json:"size,omitempty"`
	Hash         string `json:"hash,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	Owner        string `json:"owner,omitempty"`
}

// FileStoredPayload 文件落盘且元数据入库完成.
type FileStoredPayload struct {
	File FileRef `json:"file"`
	// Source 触发来源，如 upload/batch.
	Source string `json:"source,omitempty"`
	// Replaced 上传冲突以 replace 方式解决时为 true.
	Replaced bool `json:"replaced,omitempty"`
}

// FileDeletedPayload 文件移入回收站（软删除）.
type FileDeletedPayload struct {
	File FileRef `json:"file"`
}

// FileRestoredPayload 文件从回收站恢复.
type FileRestoredPayload struct {
	File FileRef `json:"file"`
}

// FilePurgedPayload 文件彻底删除.
type FilePurgedPayload struct {
	File FileRef `json:"file"`
	// AutoClean 由回收站定时清理触发时为 true.
	AutoClean bool `json:"auto_clean,omitempty"`
}

// FileMovedPayload 文件存储路径变更.
type FileMovedPayload struct {
	File     FileRef `json:"file"`
	FromPath string  `json:"from_path"`
	ToPath   string  `json:"to_path"`
	// ReplacedID 移动以 replace 方式解决冲突时被废弃的移动方原行 ID.
	ReplacedID string `json:"replaced_id,omitempty"`
}

// FileAccessedPayload 文件被下载访问.
type FileAccessedPayload struct {
	File        FileRef `json:"file"`
	AccessCount int64   `json:"access_count,omitempty"`
}

// -------------------------- 文件夹领域 --------------------------

// FolderRenamedPayload 文件夹改名，子树路径整体迁移.
type FolderRenamedPayload struct {
	OldPath    string `json:"old_path"`
	NewPath    string `json:"new_path"`
	MovedFiles int    `json:"moved_files,omitempty"`
	Owner      string `json:"owner,omitempty"`
}
