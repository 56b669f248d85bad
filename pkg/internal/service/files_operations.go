package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Flapjacck/moxbox/pkg/internal/catalog"
	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/sanitize"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

// recalcFolderSizes 重算文件夹及其祖先链的缓存大小.尽力而为，
// 失败只记日志，下一次写操作会自我修正.
func (fs *FileService) recalcFolderSizes(ctx context.Context, folder string) {
	if folder == "" {
		return
	}

	if err := fs.agg.RecalculateAncestors(ctx, folder); err != nil {
		l := logFor(ctx)
		l.Warn().Err(err).Str("folder", folder).Msg("folder size recalculation failed")
	}
}

// undoBlobRename catalog 更新失败后的补偿：把 blob 移回原位.
// 补偿失败只记日志，残留孤儿交给定时扫描.
func (fs *FileService) undoBlobRename(ctx context.Context, from, to string) {
	if from == to {
		return
	}

	if err := fs.blobClient.Rename(ctx, from, to); err != nil {
		l := logFor(ctx)
		l.Error().Err(err).Str("from", from).Str("to", to).Msg("failed to undo blob rename")
	}
}

// purgePhysical 彻底删除的物理次序：先删 blob（已不存在视为满足，
// 丢失的 blob 不能把行永远卡在 catalog 里），成功后再删行.
// 行删除失败时留下的是孤儿 blob，可接受；反向的孤儿行不可接受.
func (fs *FileService) purgePhysical(ctx context.Context, f *model.File) error {
	if err := fs.blobClient.Delete(ctx, f.StoragePath); err != nil && !errors.Is(err, types.ErrNotFound) {
		return err
	}

	if _, err := fs.files.DeletePermanent(ctx, f.ID); err != nil {
		return err
	}

	return nil
}

// MoveFile 把文件移动到目标文件夹.回收站中的文件必须先恢复；
// 目标文件夹必须已存在且属于请求者（根目录不入 catalog，豁免检查）.
// blob 改名在 catalog 更新之前，catalog 失败时把 blob 移回原位补偿.
func (fs *FileService) MoveFile(ctx context.Context, owner, id string, req *types.MoveFileRequest) (*types.MoveFileResponse, error) {
	f, err := fs.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(f, owner); err != nil {
		return nil, err
	}

	if f.IsDeleted() {
		return nil, fmt.Errorf("file %q is in trash, restore it before moving: %w", f.ID, types.ErrInvalidArgument)
	}

	destFolder, err := sanitize.Clean(req.Folder)
	if err != nil {
		return nil, err
	}

	if destFolder != "" {
		rec, err := fs.folders.GetByPath(ctx, destFolder)
		if err != nil {
			return nil, err
		}

		if rec == nil || (rec.OwnerID != "" && rec.OwnerID != owner) {
			return nil, fmt.Errorf("folder %q: %w", destFolder, types.ErrNotFound)
		}
	}

	outcome, err := fs.resolveNameConflict(ctx, f.OriginalName, destFolder, f.ID, types.ConflictAction(req.Action))
	if err != nil {
		return nil, err
	}

	fromFolder := sanitize.FolderOf(f.StoragePath)
	oldPath := f.StoragePath
	newPath := joinStoragePath(destFolder, f.StoredName)

	if err := fs.blobClient.Rename(ctx, oldPath, newPath); err != nil {
		return nil, err
	}

	var moved *model.File

	if outcome.replace {
		// 目标行原地接管移动方的 blob 与属性，移动方的行废弃；
		// 两步在一个事务里，避免失败后留下指向同一 blob 的双行
		supersededPath := outcome.existing.StoragePath

		err = fs.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			filesTx := catalog.NewFileRepo(tx)

			updated, err := filesTx.Update(ctx, outcome.existing.ID, map[string]any{
				"stored_name":  f.StoredName,
				"storage_path": newPath,
				"size":         f.Size,
				"hash_sha256":  f.HashSha256,
				"mime_type":    f.MimeType,
				"is_public":    f.IsPublic,
			})
			if err != nil {
				return err
			}

			if _, err := filesTx.DeletePermanent(ctx, f.ID); err != nil {
				return err
			}

			moved = updated

			return nil
		})
		if err != nil {
			fs.undoBlobRename(ctx, newPath, oldPath)
			return nil, err
		}

		if derr := fs.blobClient.Delete(ctx, supersededPath); derr != nil && !errors.Is(derr, types.ErrNotFound) {
			l := logFor(ctx)
			l.Warn().Err(derr).Str("path", supersededPath).Msg("failed to remove replaced blob")
		}
	} else {
		patch := map[string]any{"storage_path": newPath}
		if outcome.finalName != f.OriginalName {
			patch["original_name"] = outcome.finalName
		}

		moved, err = fs.files.Update(ctx, f.ID, patch)
		if err != nil {
			fs.undoBlobRename(ctx, newPath, oldPath)
			return nil, err
		}
	}

	fs.ensureFolderSizes(ctx, destFolder, owner)

	if fromFolder != destFolder {
		fs.recalcFolderSizes(ctx, fromFolder)
	}

	replacedID := ""
	if outcome.replace {
		replacedID = f.ID
	}

	fs.publishFileMoved(ctx, moved, oldPath, newPath, replacedID)

	return &types.MoveFileResponse{
		File:       toFileInfo(moved),
		FromFolder: fromFolder,
		ToFolder:   destFolder,
		ReplacedID: replacedID,
	}, nil
}

// SoftDeleteFile 把文件移入回收站.只改 catalog 状态，blob 不动；
// 回收站文件仍计入文件夹大小，重算只为纠偏.
func (fs *FileService) SoftDeleteFile(ctx context.Context, owner, id string) (*types.DeleteFileResponse, error) {
	f, err := fs.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(f, owner); err != nil {
		return nil, err
	}

	if f.IsDeleted() {
		return nil, fmt.Errorf("file %q is already in trash: %w", f.ID, types.ErrInvalidArgument)
	}

	deleted, err := fs.files.MarkDeleted(ctx, f.ID)
	if err != nil {
		return nil, err
	}

	fs.recalcFolderSizes(ctx, sanitize.FolderOf(f.StoragePath))
	fs.publishFileDeleted(ctx, deleted)

	return &types.DeleteFileResponse{File: toFileInfo(deleted)}, nil
}

// RestoreFile 把文件从回收站恢复为活动状态.无条件执行，不做冲突
// 检测：回收站里的占位名对上传/移动/改名都是硬阻止，文件在回收站
// 期间其活动名不可能被其他文件占用.
func (fs *FileService) RestoreFile(ctx context.Context, owner, id string) (*types.RestoreFileResponse, error) {
	f, err := fs.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(f, owner); err != nil {
		return nil, err
	}

	if !f.IsDeleted() {
		return nil, fmt.Errorf("file %q is not in trash: %w", f.ID, types.ErrInvalidArgument)
	}

	restored, err := fs.files.Restore(ctx, f.ID)
	if err != nil {
		return nil, err
	}

	fs.recalcFolderSizes(ctx, sanitize.FolderOf(f.StoragePath))
	fs.publishFileRestored(ctx, restored)

	return &types.RestoreFileResponse{File: toFileInfo(restored)}, nil
}

// PurgeFile 彻底删除文件，活动与回收站状态都允许.
func (fs *FileService) PurgeFile(ctx context.Context, owner, id string) (*types.PurgeFileResponse, error) {
	f, err := fs.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(f, owner); err != nil {
		return nil, err
	}

	if err := fs.purgePhysical(ctx, f); err != nil {
		return nil, err
	}

	fs.recalcFolderSizes(ctx, sanitize.FolderOf(f.StoragePath))
	fs.publishFilePurged(ctx, f, false)

	return &types.PurgeFileResponse{ID: f.ID, StoragePath: f.StoragePath, Purged: true}, nil
}

// UpdateFileMetadata 修改显示名或可见性.改名走与上传相同的冲突
// 规则；replace 动作会彻底删除被顶掉的活动同名文件（先 blob 后行）.
func (fs *FileService) UpdateFileMetadata(ctx context.Context, owner, id string, req *types.UpdateFileRequest) (*types.UpdateFileResponse, error) {
	f, err := fs.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(f, owner); err != nil {
		return nil, err
	}

	if f.IsDeleted() {
		return nil, fmt.Errorf("file %q is in trash: %w", f.ID, types.ErrInvalidArgument)
	}

	patch := make(map[string]any, 2)
	renamed := false

	if req.IsPublic != nil {
		patch["is_public"] = *req.IsPublic
	}

	if req.OriginalName != nil {
		newName := strings.TrimSpace(*req.OriginalName)
		if newName == "" {
			return nil, fmt.Errorf("file name is empty: %w", types.ErrInvalidArgument)
		}

		if strings.ContainsAny(newName, "/\\") {
			return nil, fmt.Errorf("file name %q contains path separators: %w", newName, types.ErrInvalidArgument)
		}

		if newName != f.OriginalName {
			folder := sanitize.FolderOf(f.StoragePath)

			outcome, err := fs.resolveNameConflict(ctx, newName, folder, f.ID, types.ConflictAction(req.Action))
			if err != nil {
				return nil, err
			}

			if outcome.replace {
				if err := fs.purgePhysical(ctx, outcome.existing); err != nil {
					return nil, err
				}

				fs.recalcFolderSizes(ctx, folder)
				fs.publishFilePurged(ctx, outcome.existing, false)
			}

			patch["original_name"] = outcome.finalName
			renamed = true
		}
	}

	if len(patch) == 0 {
		return &types.UpdateFileResponse{File: toFileInfo(f)}, nil
	}

	updated, err := fs.files.Update(ctx, f.ID, patch)
	if err != nil {
		return nil, err
	}

	if renamed {
		fs.publishFileMoved(ctx, updated, f.StoragePath, updated.StoragePath, "")
	}

	return &types.UpdateFileResponse{File: toFileInfo(updated)}, nil
}
