package service

import (
	"context"
	"time"

	"github.com/Flapjacck/moxbox/pkg/internal/catalog"
	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/sanitize"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

// TrashService 回收站业务逻辑，复用 FileService 的依赖.
type TrashService struct {
	*FileService
}

// NewTrashService 从 context 获取依赖实例.
func NewTrashService(c context.Context) *TrashService {
	return &TrashService{NewFileService(c)}
}

// List 列出请求者回收站中的全部文件.
func (ts *TrashService) List(ctx context.Context, owner string) (*types.TrashListResponse, error) {
	files, total, err := ts.files.List(ctx, catalog.ListQuery{Owner: owner, Status: model.StatusDeleted})
	if err != nil {
		return nil, err
	}

	infos := make([]types.FileInfo, 0, len(files))
	for i := range files {
		infos = append(infos, toFileInfo(&files[i]))
	}

	return &types.TrashListResponse{Files: infos, Total: total}, nil
}

// Empty 清空回收站：逐个彻底删除，单个失败不中断其余文件，
// 每个受影响的文件夹只重算一次大小.
func (ts *TrashService) Empty(ctx context.Context, owner string) (*types.EmptyTrashResponse, error) {
	files, _, err := ts.files.List(ctx, catalog.ListQuery{Owner: owner, Status: model.StatusDeleted})
	if err != nil {
		return nil, err
	}

	results := make([]types.EmptyTrashResult, 0, len(files))
	purged := 0
	folders := make(map[string]struct{})

	for i := range files {
		f := &files[i]
		result := types.EmptyTrashResult{ID: f.ID, OriginalName: f.OriginalName}

		if err := ts.purgePhysical(ctx, f); err != nil {
			result.Error = err.Error()
			results = append(results, result)

			continue
		}

		result.Success = true
		results = append(results, result)
		purged++

		if folder := sanitize.FolderOf(f.StoragePath); folder != "" {
			folders[folder] = struct{}{}
		}

		ts.publishFilePurged(ctx, f, false)
	}

	for folder := range folders {
		ts.recalcFolderSizes(ctx, folder)
	}

	return &types.EmptyTrashResponse{Results: results, Purged: purged, Failed: len(results) - purged}, nil
}

// AutoClean 彻底删除在 cutoff 之前进入回收站的文件，定时任务入口.
// 返回成功清除的数量.
func (ts *TrashService) AutoClean(ctx context.Context, cutoff time.Time) (int, error) {
	files, err := ts.files.ListDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	folders := make(map[string]struct{})

	for i := range files {
		f := &files[i]

		if err := ts.purgePhysical(ctx, f); err != nil {
			l := logFor(ctx)
			l.Warn().Err(err).Str("file", f.ID).Msg("trash auto clean failed for file")
			continue
		}

		purged++

		if folder := sanitize.FolderOf(f.StoragePath); folder != "" {
			folders[folder] = struct{}{}
		}

		ts.publishFilePurged(ctx, f, true)
	}

	for folder := range folders {
		ts.recalcFolderSizes(ctx, folder)
	}

	return purged, nil
}
