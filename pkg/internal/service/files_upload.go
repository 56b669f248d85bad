package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/Flapjacck/moxbox/pkg/configs"
	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/sanitize"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
	"github.com/Flapjacck/moxbox/pkg/metrics"
)

// stagedFile 已落盘但尚未入库的上传文件.
type stagedFile struct {
	name        string // 清洗后的显示名
	folder      string // 目标文件夹（含 multipart 文件名携带的子目录）
	storedName  string
	storagePath string
	contentType string
	size        int64
}

// splitUploadName 拆解 multipart 文件名：目录上传时文件名携带子目录
// （如 "sub/dir/a.txt"），目录部分经 sanitize 校验，叶子作为显示名.
func splitUploadName(raw string) (subFolder, name string, err error) {
	s := strings.ReplaceAll(raw, "\\", "/")

	name = strings.TrimSpace(path.Base(s))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", "", fmt.Errorf("file name is empty: %w", types.ErrInvalidArgument)
	}

	if dir := path.Dir(s); dir != "." && dir != "/" {
		subFolder, err = sanitize.Clean(dir)
		if err != nil {
			return "", "", err
		}
	}

	return subFolder, name, nil
}

// resolveTargetFolder 合并表单文件夹与文件名携带的子目录，
// 合并结果重新过一遍清洗以约束总深度.
func resolveTargetFolder(base, sub string) (string, error) {
	if sub == "" {
		return base, nil
	}

	return sanitize.Clean(base + "/" + sub)
}

// stageBlob 生成磁盘文件名并把上传内容流式写入存储根.
// 此时 catalog 尚无记录，任何后续失败都以删除该 blob 补偿.
func (fs *FileService) stageBlob(ctx context.Context, folder, name string, fh *multipart.FileHeader) (*stagedFile, error) {
	storedName := buildStoredName(name)
	storagePath := joinStoragePath(folder, storedName)

	src, err := fh.Open()
	if err != nil {
		return nil, types.NewStorageError("read upload", name, err)
	}
	defer src.Close()

	written, err := fs.blobClient.Save(ctx, storagePath, src)
	if err != nil {
		return nil, err
	}

	metrics.UploadedBytesTotal.Add(float64(written))

	return &stagedFile{
		name:        name,
		folder:      folder,
		storedName:  storedName,
		storagePath: storagePath,
		contentType: fh.Header.Get("Content-Type"),
		size:        written,
	}, nil
}

// completeUpload 对已落盘的文件执行冲突解决、哈希与入库.
// catalog 失败时删除暂存 blob 再原样上抛；replace 成功后才清理被
// 顶掉的旧 blob.文件夹大小重算由调用方统一触发.
func (fs *FileService) completeUpload(ctx context.Context, owner string, st *stagedFile,
	action types.ConflictAction, isPublic bool, source string) (*model.File, bool, error) {
	outcome, err := fs.resolveNameConflict(ctx, st.name, st.folder, "", action)
	if err != nil {
		fs.cleanupStagedBlob(ctx, st.storagePath)
		return nil, false, err
	}

	hash, err := fs.blobClient.HashContent(ctx, st.storagePath)
	if err != nil {
		fs.cleanupStagedBlob(ctx, st.storagePath)
		return nil, false, err
	}

	mimeType := resolveMimeType(st.contentType, st.name)

	if outcome.replace {
		oldPath := outcome.existing.StoragePath

		updated, err := fs.files.Update(ctx, outcome.existing.ID, map[string]any{
			"stored_name":  st.storedName,
			"storage_path": st.storagePath,
			"size":         st.size,
			"hash_sha256":  hash,
			"mime_type":    mimeType,
			"is_public":    isPublic,
		})
		if err != nil {
			fs.cleanupStagedBlob(ctx, st.storagePath)
			return nil, false, err
		}

		if oldPath != st.storagePath {
			if derr := fs.blobClient.Delete(ctx, oldPath); derr != nil && !errors.Is(derr, types.ErrNotFound) {
				l := logFor(ctx)
				l.Warn().Err(derr).Str("path", oldPath).Msg("failed to remove replaced blob")
			}
		}

		fs.publishFileStored(ctx, updated, source, true)

		return updated, true, nil
	}

	rec := &model.File{
		OriginalName: outcome.finalName,
		StoredName:   st.storedName,
		MimeType:     mimeType,
		Size:         st.size,
		HashSha256:   hash,
		StoragePath:  st.storagePath,
		OwnerID:      owner,
		IsPublic:     isPublic,
		Status:       model.StatusActive,
	}

	if err := fs.files.Create(ctx, rec); err != nil {
		fs.cleanupStagedBlob(ctx, st.storagePath)
		return nil, false, err
	}

	fs.publishFileStored(ctx, rec, source, false)

	return rec, false, nil
}

// ensureFolderSizes 上传/移动完成后懒创建文件夹记录链并重算大小.
// 失败不影响已完成的文件操作，下一次写入会自我修正.
func (fs *FileService) ensureFolderSizes(ctx context.Context, folder, owner string) {
	if folder == "" {
		return
	}

	if err := fs.agg.EnsureAndRecalculate(ctx, folder, owner); err != nil {
		l := logFor(ctx)
		l.Warn().Err(err).Str("folder", folder).Msg("folder size recalculation failed")
	}
}

// UploadSingleFile 单文件上传：先落盘，再做冲突检测与入库.
func (fs *FileService) UploadSingleFile(ctx context.Context, owner string,
	fh *multipart.FileHeader, form *types.UploadFileForm) (*types.UploadFileResponse, error) {
	baseFolder, err := sanitize.Clean(form.Folder)
	if err != nil {
		return nil, err
	}

	subFolder, name, err := splitUploadName(fh.Filename)
	if err != nil {
		return nil, err
	}

	folder, err := resolveTargetFolder(baseFolder, subFolder)
	if err != nil {
		return nil, err
	}

	if limit := configs.GetConfig().Server.MaxUploadBytes(); fh.Size > limit {
		return nil, fmt.Errorf("file %q exceeds upload limit of %d bytes: %w", name, limit, types.ErrInvalidArgument)
	}

	st, err := fs.stageBlob(ctx, folder, name, fh)
	if err != nil {
		return nil, err
	}

	rec, replaced, err := fs.completeUpload(ctx, owner, st, types.ConflictAction(form.Action), form.IsPublic, "upload")
	if err != nil {
		return nil, err
	}

	fs.ensureFolderSizes(ctx, folder, owner)

	return &types.UploadFileResponse{File: toFileInfo(rec), Replaced: replaced}, nil
}

// batchItem 批量上传的单个条目，staging 失败时 err 非空.
type batchItem struct {
	rawName string
	st      *stagedFile
	err     error
}

// UploadBatchFiles 批量上传.所有文件先全部落盘；未指定 action 时
// 统一扫描冲突，发现任何回收站冲突或未解决的活动冲突都整体拒绝并
// 清理全部暂存 blob；指定了 action 则逐文件独立处理，单个失败不影响
// 其他文件.每个目标文件夹只重算一次大小.
func (fs *FileService) UploadBatchFiles(ctx context.Context, owner string,
	fhs []*multipart.FileHeader, form *types.BatchUploadForm) (*types.BatchUploadResponse, error) {
	if len(fhs) == 0 {
		return nil, fmt.Errorf("no files in batch: %w", types.ErrInvalidArgument)
	}

	baseFolder, err := sanitize.Clean(form.Folder)
	if err != nil {
		return nil, err
	}

	action := types.ConflictAction(form.Action)
	limit := configs.GetConfig().Server.MaxUploadBytes()

	items := make([]batchItem, 0, len(fhs))

	for _, fh := range fhs {
		it := batchItem{rawName: fh.Filename}

		subFolder, name, err := splitUploadName(fh.Filename)
		if err == nil {
			it.rawName = name

			var folder string

			folder, err = resolveTargetFolder(baseFolder, subFolder)
			if err == nil && fh.Size > limit {
				err = fmt.Errorf("file %q exceeds upload limit of %d bytes: %w", name, limit, types.ErrInvalidArgument)
			}

			if err == nil {
				it.st, err = fs.stageBlob(ctx, folder, name, fh)
			}
		}

		it.err = err
		items = append(items, it)
	}

	if action == types.ActionNone {
		if err := fs.scanBatchConflicts(ctx, items); err != nil {
			fs.cleanupBatch(ctx, items)
			return nil, err
		}
	}

	results := make([]types.BatchFileResult, 0, len(items))
	successful := 0
	doneFolders := make(map[string]struct{})

	for _, it := range items {
		if it.err != nil {
			results = append(results, types.BatchFileResult{OriginalName: it.rawName, Error: it.err.Error()})
			continue
		}

		rec, _, err := fs.completeUpload(ctx, owner, it.st, action, false, "batch")
		if err != nil {
			results = append(results, types.BatchFileResult{OriginalName: it.st.name, Error: err.Error()})
			continue
		}

		info := toFileInfo(rec)
		results = append(results, types.BatchFileResult{OriginalName: it.st.name, Success: true, File: &info})
		successful++

		if it.st.folder != "" {
			doneFolders[it.st.folder] = struct{}{}
		}
	}

	for folder := range doneFolders {
		fs.ensureFolderSizes(ctx, folder, owner)
	}

	return &types.BatchUploadResponse{
		Results:    results,
		Total:      len(items),
		Successful: successful,
		Failed:     len(items) - successful,
	}, nil
}

// scanBatchConflicts 未指定 action 时的整体冲突预检：检查每个暂存
// 文件的目标槽位，包括批内重名（落库后必然违反同文件夹唯一性）.
// 发现任何冲突返回 BatchConflictError.
func (fs *FileService) scanBatchConflicts(ctx context.Context, items []batchItem) error {
	var batchErr types.BatchConflictError

	seen := make(map[string]struct{}, len(items))

	for _, it := range items {
		if it.err != nil || it.st == nil {
			continue
		}

		key := it.st.folder + "\x00" + it.st.name
		if _, dup := seen[key]; dup {
			batchErr.Active = append(batchErr.Active, types.ConflictInfo{
				Kind: types.ConflictActive, OriginalName: it.st.name, Folder: it.st.folder,
			})

			continue
		}

		seen[key] = struct{}{}

		trashed, err := fs.files.GetDeletedByNameAndFolder(ctx, it.st.name, it.st.folder)
		if err != nil {
			return err
		}

		if trashed != nil {
			batchErr.Trashed = append(batchErr.Trashed, types.ConflictInfo{
				Kind: types.ConflictTrashed, OriginalName: it.st.name, Folder: it.st.folder,
			})

			continue
		}

		active, err := fs.files.GetActiveByNameAndFolder(ctx, it.st.name, it.st.folder, "")
		if err != nil {
			return err
		}

		if active != nil {
			batchErr.Active = append(batchErr.Active, types.ConflictInfo{
				Kind: types.ConflictActive, OriginalName: it.st.name, Folder: it.st.folder, ExistingID: active.ID,
			})
		}
	}

	if batchErr.HasConflicts() {
		return &batchErr
	}

	return nil
}

// cleanupBatch 清理整批暂存 blob.
func (fs *FileService) cleanupBatch(ctx context.Context, items []batchItem) {
	for _, it := range items {
		if it.st != nil {
			fs.cleanupStagedBlob(ctx, it.st.storagePath)
		}
	}
}

// AbortUpload 中止上传清理：删除尚未入库的暂存 blob 并回收为其
// 创建的空目录.幂等，blob 不存在时 Cleaned 为 false.已入库的文件
// 拒绝处理，防止把 catalog 行变成孤儿.
func (fs *FileService) AbortUpload(ctx context.Context, req *types.AbortUploadRequest) (*types.AbortUploadResponse, error) {
	rel := strings.Trim(strings.ReplaceAll(req.StoragePath, "\\", "/"), "/")
	if rel == "" {
		return nil, fmt.Errorf("storage path is empty: %w", types.ErrInvalidArgument)
	}

	existing, err := fs.files.GetByStoredName(ctx, sanitize.LeafOf(rel))
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		return nil, fmt.Errorf("blob %q is referenced by the catalog: %w", rel, types.ErrInvalidArgument)
	}

	cleaned := true

	if err := fs.blobClient.Delete(ctx, rel); err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			return nil, err
		}

		cleaned = false
	}

	fs.pruneUploadDirs(ctx, sanitize.FolderOf(rel))

	return &types.AbortUploadResponse{StoragePath: rel, Cleaned: cleaned}, nil
}
