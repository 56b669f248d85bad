package service

import (
	"context"
	"time"

	"github.com/Flapjacck/moxbox/pkg/cache"
	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

const (
	// statsCacheTTL 统计结果的缓存时长.统计是聚合查询，短 TTL
	// 换取写路径零失效维护.
	statsCacheTTL = 30 * time.Second
	// statsTopMimeN 返回的 MIME 类型条数.
	statsTopMimeN = 5
)

// StatsService 存储统计，结果在 KV 中短暂缓存.
type StatsService struct {
	*FileService

	cache *cache.Cache
}

// NewStatsService 从 context 获取依赖实例.
func NewStatsService(c context.Context) *StatsService {
	fs := NewFileService(c)

	return &StatsService{FileService: fs, cache: cache.NewNamespaced(fs.kvClient, "moxbox:stats:")}
}

// Summary 返回请求者的存储统计.
func (ss *StatsService) Summary(ctx context.Context, owner string) (*types.StatsSummary, error) {
	summary, err := cache.GetOrSet(ctx, ss.cache, owner, func() (types.StatsSummary, error) {
		return ss.buildSummary(ctx, owner)
	}, statsCacheTTL)
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// buildSummary 现算统计：按状态聚合数量与字节数，再补上活动文件的
// MIME 分布与文件夹总数.
func (ss *StatsService) buildSummary(ctx context.Context, owner string) (types.StatsSummary, error) {
	totals, err := ss.files.TotalsByStatus(ctx, owner)
	if err != nil {
		return types.StatsSummary{}, err
	}

	summary := types.StatsSummary{GeneratedAt: time.Now().UTC()}

	for _, t := range totals {
		summary.TotalFiles += t.Count
		summary.TotalBytes += t.Bytes

		switch t.Status {
		case model.StatusActive:
			summary.ActiveFiles = t.Count
			summary.ActiveBytes = t.Bytes
		case model.StatusDeleted:
			summary.TrashFiles = t.Count
			summary.TrashBytes = t.Bytes
		}
	}

	mimes, err := ss.files.TopMimeTypes(ctx, owner, statsTopMimeN)
	if err != nil {
		return types.StatsSummary{}, err
	}

	for _, m := range mimes {
		summary.TopTypes = append(summary.TopTypes, types.StatsTypeItem{Type: m.MimeType, Count: m.Count, Bytes: m.Bytes})
	}

	folders, err := ss.folders.Count(ctx, owner)
	if err != nil {
		return types.StatsSummary{}, err
	}

	summary.Folders = folders

	return summary, nil
}
