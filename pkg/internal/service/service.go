// Package service 实现文件生命周期的业务编排：上传、移动、回收站、
// 文件夹与统计.所有操作遵循同一失败规则：先做不可逆的物理操作
// （写盘/改名/删除），再写 catalog；catalog 失败时撤销物理操作并
// 原样上抛原始错误.孤儿 blob 可以被定时扫描回收，孤儿 catalog 行
// 永远不允许出现.
package service

import (
	"context"

	"github.com/rs/zerolog"

	ctxPkg "github.com/Flapjacck/moxbox/pkg/context"
	"github.com/Flapjacck/moxbox/pkg/internal/catalog"
	"github.com/Flapjacck/moxbox/pkg/internal/storage/blob"
	"github.com/Flapjacck/moxbox/pkg/internal/storage/db"
	"github.com/Flapjacck/moxbox/pkg/internal/storage/kv"
	"github.com/Flapjacck/moxbox/pkg/internal/storage/mq"
	nlog "github.com/Flapjacck/moxbox/pkg/log"
)

// logFor 返回与请求追踪关联的 logger，无活动 span 时即全局 logger.
func logFor(ctx context.Context) zerolog.Logger {
	return ctxPkg.WithTraceContext(ctx, *nlog.Logger())
}

// FileService 负责文件相关业务逻辑（落盘、元数据、冲突解决等），不处理 HTTP 细节.
type FileService struct {
	blobClient *blob.Client
	dbClient   *db.Client
	mqClient   *mq.Client // 可为 nil，事件发布自动降级
	kvClient   *kv.Client

	files   *catalog.FileRepo
	folders *catalog.FolderRepo
	agg     *catalog.Aggregator
}

// NewFileService 从 context 获取依赖实例.
func NewFileService(c context.Context) *FileService {
	blobc := ctxPkg.GetBlobClient(c)
	dbc := ctxPkg.GetDBClient(c)
	mqc := ctxPkg.GetMQClient(c)
	kvc := ctxPkg.GetKVClient(c)

	// 为了安全起见，应该直接 panic 而不是返回 nil，依赖此服务就不需要再检查.
	// mq 是可选依赖，事件发布在 publish 助手里按 nil 降级.
	if blobc == nil || dbc == nil || dbc.GetDB() == nil || kvc == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	files := catalog.NewFileRepo(dbc.GetDB())
	folders := catalog.NewFolderRepo(dbc.GetDB())

	return &FileService{
		blobClient: blobc,
		dbClient:   dbc,
		mqClient:   mqc,
		kvClient:   kvc,
		files:      files,
		folders:    folders,
		agg:        catalog.NewAggregator(files, folders),
	}
}
