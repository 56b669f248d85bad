package queue

import "github.com/ThreeDotsLabs/watermill/message"

// publish 打包负载并发布到对应主题，Publish* 系列都经这里.
func publish[T any](pub message.Publisher, topic string, payload T, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}

// PublishFileStored 发布 mb.file.stored 事件。
// 在 blob 落盘且元数据入库成功后调用，通知下游流程（如同步脚本、索引等）。
// 可通过可选项 opts 注入 TraceID、Producer 等头部信息。
func PublishFileStored(pub message.Publisher, payload FileStoredPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileStored, payload, opts...)
}

// PublishFileDeleted 发布 mb.file.deleted 事件（移入回收站）。
func PublishFileDeleted(pub message.Publisher, payload FileDeletedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileDeleted, payload, opts...)
}

// PublishFileRestored 发布 mb.file.restored 事件（从回收站恢复）。
func PublishFileRestored(pub message.Publisher, payload FileRestoredPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileRestored, payload, opts...)
}

// PublishFilePurged 发布 mb.file.purged 事件（彻底删除）。
func PublishFilePurged(pub message.Publisher, payload FilePurgedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFilePurged, payload, opts...)
}

// PublishFileMoved 发布 mb.file.moved 事件（移动/改名）。
func PublishFileMoved(pub message.Publisher, payload FileMovedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileMoved, payload, opts...)
}

// PublishFileAccessed 发布 mb.file.accessed 事件（下载访问）。
func PublishFileAccessed(pub message.Publisher, payload FileAccessedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileAccessed, payload, opts...)
}

// PublishFolderRenamed 发布 mb.folder.renamed 事件。
func PublishFolderRenamed(pub message.Publisher, payload FolderRenamedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFolderRenamed, payload, opts...)
}

// ParseFileStored 将 Watermill 消息解析为强类型 Envelope（FileStoredPayload）。
func ParseFileStored(msg *message.Message) (Message[FileStoredPayload], error) {
	return ParseWatermillMessage[FileStoredPayload](msg)
}

// ParseFilePurged 将 Watermill 消息解析为强类型 Envelope（FilePurgedPayload）。
func ParseFilePurged(msg *message.Message) (Message[FilePurgedPayload], error) {
	return ParseWatermillMessage[FilePurgedPayload](msg)
}
