package types

// 目录项类型.
const (
	EntryTypeFile   = "file"
	EntryTypeFolder = "folder"
)

// DirEntry 文件夹的直接子项，文件附带字节大小.
type DirEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size *int64 `json:"size,omitempty"`
}

// FolderInfo 文件夹元数据，Size 为缓存的递归总大小.
type FolderInfo struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Owner     string `json:"owner"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateFolderRequest 创建文件夹请求.
type CreateFolderRequest struct {
	Path string `json:"path" rule:"required,relpath"` // 相对存储根的文件夹路径
}

// ListFoldersResponse 文件夹列表响应.
type ListFoldersResponse struct {
	Folders []FolderInfo `json:"folders"`
	Total   int          `json:"total"`
}

// FolderEntriesResponse 文件夹直接子项响应.
type FolderEntriesResponse struct {
	Path    string     `json:"path"`
	Entries []DirEntry `json:"entries"`
	Total   int        `json:"total"`
}

// RenameFolderRequest 重命名文件夹请求，NewName 为新叶名单段.
type RenameFolderRequest struct {
	Path    string `json:"path"     rule:"required,relpath"`
	NewName string `json:"new_name" rule:"required,relpath"`
}

// RenameFolderResponse 重命名文件夹响应.
type RenameFolderResponse struct {
	OldPath    string `json:"old_path"`
	NewPath    string `json:"new_path"`
	MovedFiles int    `json:"moved_files"`
	UpdatedAt  string `json:"updated_at"`
}

// DeleteFolderResponse 删除空文件夹响应.
type DeleteFolderResponse struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
}
