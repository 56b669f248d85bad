package types

import (
	"errors"
	"fmt"
)

// ErrNotFound 引用的文件/文件夹/磁盘对象不存在.
// 由 catalog 与 blob 层用 %w 包装后向上传递.
var ErrNotFound = errors.New("not found")

// ErrInvalidArgument 请求在业务层面不合法（空文件名、对已删除文件
// 执行仅限活动文件的操作等），处理层映射为 400.
var ErrInvalidArgument = errors.New("invalid argument")

// ConflictKind 命名冲突类型.
type ConflictKind string

const (
	// ConflictTrashed 回收站中存在同名文件，操作必须整体阻止，
	// 先恢复或彻底删除回收站内的文件.
	ConflictTrashed ConflictKind = "trashed"
	// ConflictActive 活动文件同名冲突，可通过 replace/keep_both 解决.
	ConflictActive ConflictKind = "active"
)

// ConflictAction 冲突解决动作.
type ConflictAction string

const (
	ActionNone     ConflictAction = ""
	ActionReplace  ConflictAction = "replace"
	ActionKeepBoth ConflictAction = "keep_both"
)

// InvalidPathError 用户提供的路径未通过清洗（穿越、非法字符、过深/过长）.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// NewInvalidPath 构造 InvalidPathError.
func NewInvalidPath(path, reason string) *InvalidPathError {
	return &InvalidPathError{Path: path, Reason: reason}
}

// ConflictInfo 单个冲突的结构化描述，batch 冲突与响应体复用.
type ConflictInfo struct {
	Kind         ConflictKind `json:"type"`
	OriginalName string       `json:"original_name"`
	Folder       string       `json:"folder"`
	ExistingID   string       `json:"existing_id,omitempty"` // 仅 active 冲突携带
}

// ConflictError 单文件操作的命名冲突.
// trashed 为硬阻止；active 携带现有文件 ID，调用方可以带 action 重试.
type ConflictError struct {
	ConflictInfo
}

func (e *ConflictError) Error() string {
	if e.Kind == ConflictTrashed {
		return fmt.Sprintf("a deleted file named %q already exists in folder %q, restore or purge it first", e.OriginalName, e.Folder)
	}

	return fmt.Sprintf("an active file named %q already exists in folder %q", e.OriginalName, e.Folder)
}

// NewTrashedConflict 构造回收站冲突.
func NewTrashedConflict(name, folder string) *ConflictError {
	return &ConflictError{ConflictInfo{Kind: ConflictTrashed, OriginalName: name, Folder: folder}}
}

// NewActiveConflict 构造活动文件冲突.
func NewActiveConflict(name, folder, existingID string) *ConflictError {
	return &ConflictError{ConflictInfo{Kind: ConflictActive, OriginalName: name, Folder: folder, ExistingID: existingID}}
}

// BatchConflictError 批量上传的冲突集合：任一 trashed 冲突或未解决的
// active 冲突都会整体拒绝批次.
type BatchConflictError struct {
	Trashed []ConflictInfo `json:"trashed,omitempty"`
	Active  []ConflictInfo `json:"active,omitempty"`
}

func (e *BatchConflictError) Error() string {
	return fmt.Sprintf("batch rejected: %d trashed and %d active name conflicts", len(e.Trashed), len(e.Active))
}

// HasConflicts 是否存在任何冲突.
func (e *BatchConflictError) HasConflicts() bool {
	return len(e.Trashed) > 0 || len(e.Active) > 0
}

// StorageError 底层文件系统失败（权限、磁盘满、IO）.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError 包装一次 blob 操作失败.
func NewStorageError(op, path string, err error) *StorageError {
	return &StorageError{Op: op, Path: path, Err: err}
}

// CatalogError 底层数据库失败.发生在 blob 写入之后时，
// 调用方先执行补偿清理再原样上抛.
type CatalogError struct {
	Op  string
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// NewCatalogError 包装一次 catalog 操作失败.
func NewCatalogError(op string, err error) *CatalogError {
	return &CatalogError{Op: op, Err: err}
}
