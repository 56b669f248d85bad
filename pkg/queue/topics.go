// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：mb.<域>.<动作>，尽量稳定且向后兼容.
// 域：file(文件生命周期)、folder(文件夹)
// 动作：stored/deleted/restored/purged/moved/accessed、renamed

const (
	// 文件生命周期领域.
	TopicFileStored   = "mb.file.stored"   // 文件落盘且元数据入库完成
	TopicFileDeleted  = "mb.file.deleted"  // 文件移入回收站（软删除，blob 保留）
	TopicFileRestored = "mb.file.restored" // 文件从回收站恢复
	TopicFilePurged   = "mb.file.purged"   // 文件彻底删除（blob 与元数据均移除）
	TopicFileMoved    = "mb.file.moved"    // 文件存储路径变更（移动/改名）
	TopicFileAccessed = "mb.file.accessed" // 文件被下载访问（用于热点统计）

	// 文件夹领域.
	TopicFolderRenamed = "mb.folder.renamed" // 文件夹改名，子树路径整体迁移
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 文件生命周期相关主题集合.
	FileTopics = []string{
		TopicFileStored, TopicFileDeleted, TopicFileRestored,
		TopicFilePurged, TopicFileMoved, TopicFileAccessed,
	}

	// 文件夹相关主题集合.
	FolderTopics = []string{
		TopicFolderRenamed,
	}
)
