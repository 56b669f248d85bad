package types

import "time"

// FileInfo 文件的对外视图，列表、上传、操作响应共用.
type FileInfo struct {
	ID           string     `json:"id"`
	OriginalName string     `json:"original_name"` // 展示名
	StoredName   string     `json:"stored_name"`   // 磁盘文件名
	MimeType     string     `json:"mime_type,omitempty"`
	Size         int64      `json:"size"`
	HashSha256   string     `json:"hash_sha256,omitempty"`
	StoragePath  string     `json:"storage_path"` // 相对存储根，abort 清理用
	Folder       string     `json:"folder"`       // 所属文件夹，根目录为空串
	OwnerID      string     `json:"owner_id,omitempty"`
	IsPublic     bool       `json:"is_public"`
	Status       string     `json:"status"` // active | deleted
	AccessCount  int64      `json:"access_count"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UploadFileForm 单文件上传时 multipart 里除文件本体之外的表单字段.
type UploadFileForm struct {
	Folder   string `form:"folder"    json:"folder,omitempty"   rule:"relpath"`                            // 目标文件夹，空串为根
	Action   string `form:"action"    json:"action,omitempty"   rule:"omitempty,oneof=replace keep_both"` // 活动冲突的解决动作
	IsPublic bool   `form:"is_public" json:"is_public,omitempty"`
}

// UploadFileResponse 单文件上传响应.
type UploadFileResponse struct {
	File     FileInfo `json:"file"`
	Replaced bool     `json:"replaced,omitempty"` // replace 动作覆盖了同名文件
}

// BatchUploadForm 批量上传的表单字段，action 对整个批次生效.
type BatchUploadForm struct {
	Folder string `form:"folder" json:"folder,omitempty" rule:"relpath"`
	Action string `form:"action" json:"action,omitempty" rule:"omitempty,oneof=replace keep_both"`
}

// BatchFileResult 批量上传中单个文件的结果.
type BatchFileResult struct {
	OriginalName string    `json:"original_name"`
	Success      bool      `json:"success"`
	File         *FileInfo `json:"file,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// BatchUploadResponse 批量上传响应.
type BatchUploadResponse struct {
	Results    []BatchFileResult `json:"results"`
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
}

// AbortUploadRequest 中止上传后的清理请求.
type AbortUploadRequest struct {
	StoragePath string `binding:"required" json:"storage_path"` // 上传响应或暂存记录里的相对路径
}

// AbortUploadResponse 清理结果.幂等：重复清理同一路径也返回成功.
type AbortUploadResponse struct {
	StoragePath string `json:"storage_path"`
	Cleaned     bool   `json:"cleaned"` // false 表示 blob 本就不存在
}
