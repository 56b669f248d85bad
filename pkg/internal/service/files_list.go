package service

import (
	"context"

	"github.com/Flapjacck/moxbox/pkg/internal/catalog"
	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/sanitize"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

// ListFiles 分页列出请求者的文件，未指定状态时默认只看活动文件.
func (fs *FileService) ListFiles(ctx context.Context, owner string, q *types.ListFilesQuery) (*types.ListFilesResponse, error) {
	status := q.Status
	if status == "" {
		status = model.StatusActive
	}

	var folder *string

	if q.Folder != nil {
		cleaned, err := sanitize.Clean(*q.Folder)
		if err != nil {
			return nil, err
		}

		folder = &cleaned
	}

	limit := clampLimit(q.Limit)

	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	files, total, err := fs.files.List(ctx, catalog.ListQuery{
		Owner:    owner,
		IsPublic: q.IsPublic,
		Status:   status,
		Folder:   folder,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	infos := make([]types.FileInfo, 0, len(files))
	for i := range files {
		infos = append(infos, toFileInfo(&files[i]))
	}

	return &types.ListFilesResponse{Files: infos, Total: total, Limit: limit, Offset: offset}, nil
}

// GetFile 返回单个文件的元数据.
func (fs *FileService) GetFile(ctx context.Context, owner, id string) (*types.FileInfo, error) {
	f, err := fs.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireReadable(f, owner); err != nil {
		return nil, err
	}

	info := toFileInfo(f)

	return &info, nil
}
