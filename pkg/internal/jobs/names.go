package jobs

// 任务名称常量，便于统一管理与引用.
const (
	JobTrashAutoClean      = "trash.auto_clean"
	JobOrphanBlobSweep     = "blob.orphan_sweep"
	JobFolderSizeReconcile = "folder.size_reconcile"
)

// Cron 表达式常量（可选，但推荐一并集中管理）.
const (
	CronTrashAutoClean      = "0 3 * * *"
	CronOrphanBlobSweep     = "30 3 * * *"
	CronFolderSizeReconcile = "10 4 * * *"
)
