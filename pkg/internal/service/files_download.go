package service

import (
	"context"
	"fmt"
	"io"

	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

// OpenDownload 打开文件内容的读取流并返回元数据，调用方负责关闭流.
// 回收站中的文件不可下载.访问计数与访问事件都是尽力而为.
func (fs *FileService) OpenDownload(ctx context.Context, owner, id string) (io.ReadCloser, *types.FileInfo, error) {
	f, err := fs.files.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if err := requireReadable(f, owner); err != nil {
		return nil, nil, err
	}

	if f.IsDeleted() {
		return nil, nil, fmt.Errorf("file %q is in trash: %w", f.ID, types.ErrInvalidArgument)
	}

	rc, err := fs.blobClient.Open(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, err
	}

	if err := fs.files.BumpAccess(ctx, f.ID); err != nil {
		l := logFor(ctx)
		l.Warn().Err(err).Str("file", f.ID).Msg("failed to bump access count")
	}

	fs.publishFileAccessed(ctx, f, f.AccessCount+1)

	info := toFileInfo(f)

	return rc, &info, nil
}
