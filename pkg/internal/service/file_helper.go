package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/sanitize"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

const (
	// DefaultSliceCapacity 默认 slice 预分配容量.
	DefaultSliceCapacity = 100
	// DefaultListLimit 列表查询默认页大小.
	DefaultListLimit = 50
	// MaxListLimit 列表查询页大小上限.
	MaxListLimit = 200
	// maxStoredExtLen 磁盘文件名保留的扩展名最大长度（含点号）.
	maxStoredExtLen = 16

	mimeOctetStream = "application/octet-stream"
)

// storedExtPattern 只保留安全的扩展名：点号加字母数字.
var storedExtPattern = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)

// buildStoredName 生成磁盘文件名：uuid 加上清洗过的原扩展名.
// 显示名与磁盘名解耦，非法或超长扩展名直接丢弃.
func buildStoredName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > maxStoredExtLen || !storedExtPattern.MatchString(ext) {
		ext = ""
	}

	return uuid.NewString() + ext
}

// joinStoragePath 拼接相对存储根的路径，根目录不带前导斜杠.
func joinStoragePath(folder, leaf string) string {
	if folder == "" {
		return leaf
	}

	return folder + "/" + leaf
}

// clampLimit 规范分页大小.
func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return DefaultListLimit
	}

	return limit
}

// resolveMimeType 确定文件 MIME 类型：客户端声明优先，
// 其次按扩展名推断，最后退回二进制流.
func resolveMimeType(declared, originalName string) string {
	if declared != "" {
		return declared
	}

	if byExt := mime.TypeByExtension(filepath.Ext(originalName)); byExt != "" {
		return byExt
	}

	return mimeOctetStream
}

// toFileInfo 将 catalog 行转换为对外 DTO.
func toFileInfo(f *model.File) types.FileInfo {
	return types.FileInfo{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		StoredName:   f.StoredName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		HashSha256:   f.HashSha256,
		StoragePath:  f.StoragePath,
		Folder:       sanitize.FolderOf(f.StoragePath),
		OwnerID:      f.OwnerID,
		IsPublic:     f.IsPublic,
		Status:       f.Status,
		AccessCount:  f.AccessCount,
		LastAccessed: f.LastAccessed,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// requireOwner 校验写操作的所有权.无主文件（OwnerID 为空）任何人
// 可写，其余必须与请求者一致.
func requireOwner(f *model.File, owner string) error {
	if f.OwnerID != "" && f.OwnerID != owner {
		return fmt.Errorf("file %q is not owned by the requester: %w", f.ID, types.ErrInvalidArgument)
	}

	return nil
}

// requireReadable 校验读操作权限：公开文件任何人可读，
// 私有文件以 NotFound 掩盖存在性.
func requireReadable(f *model.File, owner string) error {
	if !f.IsPublic && f.OwnerID != "" && f.OwnerID != owner {
		return fmt.Errorf("file %q: %w", f.ID, types.ErrNotFound)
	}

	return nil
}

// cleanupStagedBlob 补偿清理：删除暂存 blob 并回收为其创建的空目录.
// 尽力而为，失败只记日志，残留孤儿交给定时扫描.
func (fs *FileService) cleanupStagedBlob(ctx context.Context, rel string) {
	if err := fs.blobClient.Delete(ctx, rel); err != nil && !errors.Is(err, types.ErrNotFound) {
		l := logFor(ctx)
		l.Warn().Err(err).Str("path", rel).Msg("failed to clean staged blob")
		return
	}

	fs.pruneUploadDirs(ctx, sanitize.FolderOf(rel))
}

// pruneUploadDirs 自下而上删除上传失败残留的空目录.
// 碰到 catalog 记录过的文件夹立即停止：那是用户可见的文件夹，
// 即使为空也不能回收.非空目录同样终止向上回收.
func (fs *FileService) pruneUploadDirs(ctx context.Context, folder string) {
	for _, dir := range sanitize.Ancestors(folder) {
		rec, err := fs.folders.GetByPath(ctx, dir)
		if err != nil || rec != nil {
			return
		}

		if err := fs.blobClient.DeleteFolder(ctx, dir); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}

			return
		}
	}
}
