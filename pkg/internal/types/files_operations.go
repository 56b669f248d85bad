package types

// MoveFileRequest 移动文件请求.folder 为目标文件夹，空串表示根目录.
type MoveFileRequest struct {
	Folder string `json:"folder"           rule:"relpath"`
	Action string `json:"action,omitempty" rule:"omitempty,oneof=replace keep_both"`
}

// MoveFileResponse 移动文件响应.
type MoveFileResponse struct {
	File       FileInfo `json:"file"`
	FromFolder string   `json:"from_folder"`
	ToFolder   string   `json:"to_folder"`
	// replace 时移动方原记录的 ID：该行已并入目标行并被删除，
	// 后续请使用 File.ID
	ReplacedID string `json:"replaced_id,omitempty"`
}

// UpdateFileRequest 文件元数据修改请求.指针字段区分"未提供"与零值.
type UpdateFileRequest struct {
	OriginalName *string `json:"original_name,omitempty"`
	IsPublic     *bool   `json:"is_public,omitempty"`
	// 重命名撞上活动同名文件时的解决动作，语义与上传一致
	Action string `json:"action,omitempty" rule:"omitempty,oneof=replace keep_both"`
}

// UpdateFileResponse 元数据修改响应.
type UpdateFileResponse struct {
	File FileInfo `json:"file"`
}

// DeleteFileResponse 软删除响应.
type DeleteFileResponse struct {
	File FileInfo `json:"file"`
}

// RestoreFileResponse 恢复响应.
type RestoreFileResponse struct {
	File FileInfo `json:"file"`
}

// PurgeFileResponse 彻底删除响应.
type PurgeFileResponse struct {
	ID          string `json:"id"`
	StoragePath string `json:"storage_path"`
	Purged      bool   `json:"purged"`
}
