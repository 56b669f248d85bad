package service

import (
	"context"

	"github.com/Flapjacck/moxbox/pkg/configs"
	ctxPkg "github.com/Flapjacck/moxbox/pkg/context"
	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/sanitize"
	"github.com/Flapjacck/moxbox/pkg/queue"

	"github.com/ThreeDotsLabs/watermill/message"
)

// 事件发布全部尽力而为：mq 未配置、主题被关闭或发布失败都不影响
// 已完成的文件操作，失败只记 warn.

// eventPublisher 返回可用的 Publisher；事件总开关关闭或 mq 未初始化
// 时返回 nil.
func (fs *FileService) eventPublisher() message.Publisher {
	if !configs.GetConfig().Events.Enabled {
		return nil
	}

	return fs.mqClient.Publisher()
}

// eventOpts 把当前请求的 trace id 写进事件头，消费方可以据此跨进程关联链路.
func eventOpts(ctx context.Context) []func(*queue.EventHeader) {
	if tid := ctxPkg.TraceID(ctx); tid != "" {
		return []func(*queue.EventHeader){queue.WithTraceID(tid)}
	}

	return nil
}

// fileRef 构造事件负载中的文件标识.
func fileRef(f *model.File) queue.FileRef {
	return queue.FileRef{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		StoredName:   f.StoredName,
		StoragePath:  f.StoragePath,
		Folder:       sanitize.FolderOf(f.StoragePath),
		Size:         f.Size,
		Hash:         f.HashSha256,
		ContentType:  f.MimeType,
		Owner:        f.OwnerID,
	}
}

func (fs *FileService) publishFileStored(ctx context.Context, f *model.File, source string, replaced bool) {
	pub := fs.eventPublisher()
	if pub == nil || !configs.GetConfig().Events.File.Stored {
		return
	}

	payload := queue.FileStoredPayload{File: fileRef(f), Source: source, Replaced: replaced}
	if err := queue.PublishFileStored(pub, payload, eventOpts(ctx)...); err != nil {
		l := logFor(ctx)
		l.Warn().Err(err).Str("file", f.ID).Msg("failed to publish file stored event")
	}
}

func (fs *FileService) publishFileDeleted(ctx context.Context, f *model.File) {
	pub := fs.eventPublisher()
	if pub == nil || !configs.GetConfig().Events.File.Deleted {
		return
	}

	if err := queue.PublishFileDeleted(pub, queue.FileDeletedPayload{File: fileRef(f)}, eventOpts(ctx)...); err != nil {
		l := logFor(ctx)
		l.Warn().Err(err).Str("file", f.ID).Msg("failed to publish file deleted event")
	}
}

func (fs *FileService) publishFileRestored(ctx context.Context, f *model.File) {
	pub := fs.eventPublisher()
	if pub == nil || !configs.GetConfig().Events.File.Restored {
		return
	}

	if err := queue.PublishFileRestored(pub, queue.FileRestoredPayload{File: fileRef(f)}, eventOpts(ctx)...); err != nil {
		l := logFor(ctx)
		l.Warn().Err(err).Str("file", f.ID).Msg("failed to publish file restored event")
	}
}

func (fs *FileService) publishFilePurged(ctx context.Context, f *model.File, autoClean bool) {
	pub := fs.eventPublisher()
	if pub == nil || !configs.GetConfig().Events.File.Purged {
		return
	}

	payload := queue.FilePurgedPayload{File: fileRef(f), AutoClean: autoClean}
	if err := queue.PublishFilePurged(pub, payload, eventOpts(ctx)...); err != nil {
		l := logFor(ctx)
		l.Warn().Err(err).Str("file", f.ID).Msg("failed to publish file purged event")
	}
}

func (fs *FileService) publishFileMoved(ctx context.Context, f *model.File, fromPath, toPath, replacedID string) {
	pub := fs.eventPublisher()
	if pub == nil || !configs.GetConfig().Events.File.Moved {
		return
	}

	payload := queue.FileMovedPayload{
		File:       fileRef(f),
		FromPath:   fromPath,
		ToPath:     toPath,
		ReplacedID: replacedID,
	}
	if err := queue.PublishFileMoved(pub, payload, eventOpts(ctx)...); err != nil {
		l := logFor(ctx)
		l.Warn().Err(err).Str("file", f.ID).Msg("failed to publish file moved event")
	}
}

func (fs *FileService) publishFileAccessed(ctx context.Context, f *model.File, accessCount int64) {
	pub := fs.eventPublisher()
	if pub == nil || !configs.GetConfig().Events.File.Accessed {
		return
	}

	payload := queue.FileAccessedPayload{File: fileRef(f), AccessCount: accessCount}
	if err := queue.PublishFileAccessed(pub, payload, eventOpts(ctx)...); err != nil {
		l := logFor(ctx)
		l.Warn().Err(err).Str("file", f.ID).Msg("failed to publish file accessed event")
	}
}

func (fs *FileService) publishFolderRenamed(ctx context.Context, oldPath, newPath string, movedFiles int, owner string) {
	pub := fs.eventPublisher()
	if pub == nil || !configs.GetConfig().Events.Folder.Renamed {
		return
	}

	payload := queue.FolderRenamedPayload{
		OldPath:    oldPath,
		NewPath:    newPath,
		MovedFiles: movedFiles,
		Owner:      owner,
	}
	if err := queue.PublishFolderRenamed(pub, payload, eventOpts(ctx)...); err != nil {
		l := logFor(ctx)
		l.Warn().Err(err).Str("old_path", oldPath).Msg("failed to publish folder renamed event")
	}
}
