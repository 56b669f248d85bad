package catalog

import (
	"context"

	"github.com/Flapjacck/moxbox/pkg/internal/sanitize"
)

// Aggregator 维护文件夹的缓存大小.大小不做增量加减，
// 每次都从文件表重新汇总，算错一次也会在下一次写操作后自愈.
type Aggregator struct {
	files   *FileRepo
	folders *FolderRepo
}

// NewAggregator 组合文件与文件夹仓库构造聚合器.
func NewAggregator(files *FileRepo, folders *FolderRepo) *Aggregator {
	return &Aggregator{files: files, folders: folders}
}

// CalculateFromFiles 从文件表实时汇总文件夹的字节大小，
// 含所有子层级，活动与回收站都计入.
func (a *Aggregator) CalculateFromFiles(ctx context.Context, folder string) (int64, error) {
	return a.files.SumSizeUnder(ctx, folder)
}

// Recalculate 重算单个文件夹的缓存大小并写回记录.
// 路径未被追踪时返回 (0, false, nil)：记录是懒创建的，缺席不是错误.
func (a *Aggregator) Recalculate(ctx context.Context, folder string) (int64, bool, error) {
	rec, err := a.folders.GetByPath(ctx, folder)
	if err != nil {
		return 0, false, err
	}

	if rec == nil {
		return 0, false, nil
	}

	size, err := a.files.SumSizeUnder(ctx, folder)
	if err != nil {
		return 0, false, err
	}

	if size < 0 {
		size = 0
	}

	if err := a.folders.UpdateSize(ctx, rec.ID, size); err != nil {
		return 0, false, err
	}

	return size, true, nil
}

// RecalculateAncestors 重算路径自身到顶层的整条文件夹链.
// 每一级都是独立的全量重算，重复调用幂等；空路径（根）无事可做.
func (a *Aggregator) RecalculateAncestors(ctx context.Context, folder string) error {
	for _, p := range sanitize.Ancestors(folder) {
		if _, _, err := a.Recalculate(ctx, p); err != nil {
			return err
		}
	}

	return nil
}

// EnsureAndRecalculate 为路径的每一级前缀懒创建文件夹记录
// （最外层先建），随后重算整条链.文件落点变化后由写操作调用.
func (a *Aggregator) EnsureAndRecalculate(ctx context.Context, folder, owner string) error {
	for _, p := range sanitize.Prefixes(folder) {
		if _, err := a.folders.GetOrCreate(ctx, p, owner); err != nil {
			return err
		}
	}

	return a.RecalculateAncestors(ctx, folder)
}
