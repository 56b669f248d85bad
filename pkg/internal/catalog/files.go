package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

// maxNameAttempts keep_both 重命名的尝试上限，防止病态数据下死循环.
const maxNameAttempts = 1000

// FileRepo 文件表的数据访问层.
// 查找类方法未命中返回 ErrNotFound 包装；冲突探测类方法未命中返回 (nil, nil)，
// 因为"没有冲突"是正常分支而非错误.
type FileRepo struct {
	db *gorm.DB
}

// NewFileRepo 基于已初始化的 gorm 连接构造文件仓库.
func NewFileRepo(db *gorm.DB) *FileRepo {
	return &FileRepo{db: db}
}

// ListQuery 文件列表的过滤条件.
// Folder 为 nil 时不按文件夹过滤，指向空串时限定根目录.
type ListQuery struct {
	Owner    string
	IsPublic *bool
	Status   string
	Folder   *string
	Limit    int
	Offset   int
}

// Create 插入一条文件记录，ID 为空时自动生成 ULID.
func (r *FileRepo) Create(ctx context.Context, f *model.File) error {
	if f.ID == "" {
		f.ID = NewID()
	}

	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return types.NewCatalogError("create file", err)
	}

	return nil
}

// GetByID 按主键查找文件.
func (r *FileRepo) GetByID(ctx context.Context, id string) (*model.File, error) {
	var f model.File

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("file %q: %w", id, types.ErrNotFound)
	}

	if err != nil {
		return nil, types.NewCatalogError("get file", err)
	}

	return &f, nil
}

// GetByStoredName 按磁盘文件名查找文件，下载路由用它把 URL 映射回记录.
func (r *FileRepo) GetByStoredName(ctx context.Context, storedName string) (*model.File, error) {
	var f model.File

	err := r.db.WithContext(ctx).Where("stored_name = ?", storedName).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("file %q: %w", storedName, types.ErrNotFound)
	}

	if err != nil {
		return nil, types.NewCatalogError("get file by stored name", err)
	}

	return &f, nil
}

// List 按条件分页查询文件，创建时间倒序（最新在前），返回记录与过滤后的总数.
func (r *FileRepo) List(ctx context.Context, q ListQuery) ([]model.File, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.File{})

	if q.Owner != "" {
		tx = tx.Where("owner_id = ?", q.Owner)
	}

	if q.IsPublic != nil {
		tx = tx.Where("is_public = ?", *q.IsPublic)
	}

	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	if q.Folder != nil {
		tx = scopeFolder(tx, *q.Folder)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, types.NewCatalogError("count files", err)
	}

	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var files []model.File
	if err := tx.Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, 0, types.NewCatalogError("list files", err)
	}

	return files, total, nil
}

// ListByPrefix 返回文件夹之下所有层级的全部文件（不分状态），
// 文件夹重命名时用于逐行改写 storage_path.
func (r *FileRepo) ListByPrefix(ctx context.Context, folder string) ([]model.File, error) {
	var files []model.File

	tx := scopeSubtree(r.db.WithContext(ctx).Model(&model.File{}), folder)
	if err := tx.Order("storage_path").Find(&files).Error; err != nil {
		return nil, types.NewCatalogError("list files by prefix", err)
	}

	return files, nil
}

// GetActiveByNameAndFolder 查找文件夹内占用指定展示名的活动文件，
// excludeID 非空时排除该记录（移动时避免与自身冲突）.未命中返回 (nil, nil).
func (r *FileRepo) GetActiveByNameAndFolder(ctx context.Context, name, folder, excludeID string) (*model.File, error) {
	tx := scopeFolder(
		r.db.WithContext(ctx).Where("original_name = ? AND status = ?", name, model.StatusActive),
		folder,
	)

	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}

	var f model.File

	err := tx.First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, types.NewCatalogError("probe active name", err)
	}

	return &f, nil
}

// GetDeletedByNameAndFolder 查找文件夹内占用指定展示名的回收站文件.
// 未命中返回 (nil, nil).
func (r *FileRepo) GetDeletedByNameAndFolder(ctx context.Context, name, folder string) (*model.File, error) {
	tx := scopeFolder(
		r.db.WithContext(ctx).Where("original_name = ? AND status = ?", name, model.StatusDeleted),
		folder,
	)

	var f model.File

	err := tx.First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, types.NewCatalogError("probe deleted name", err)
	}

	return &f, nil
}

// Update 更新指定字段并返回最新记录，updated_at 随更新自动刷新.
func (r *FileRepo) Update(ctx context.Context, id string, patch map[string]any) (*model.File, error) {
	res := r.db.WithContext(ctx).Model(&model.File{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, types.NewCatalogError("update file", res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("file %q: %w", id, types.ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

// UpdateStoragePath 改写文件的落盘路径，文件夹重命名逐行迁移时使用.
func (r *FileRepo) UpdateStoragePath(ctx context.Context, id, newPath string) (*model.File, error) {
	return r.Update(ctx, id, map[string]any{"storage_path": newPath})
}

// ListByFolder 列出归属于文件夹的文件，status 为空时不过滤状态.
func (r *FileRepo) ListByFolder(ctx context.Context, folder, status string) ([]model.File, error) {
	files, _, err := r.List(ctx, ListQuery{Folder: &folder, Status: status})
	return files, err
}

// MarkDeleted 把文件置入回收站.行继续占据命名槽位并计入文件夹大小.
func (r *FileRepo) MarkDeleted(ctx context.Context, id string) (*model.File, error) {
	return r.Update(ctx, id, map[string]any{"status": model.StatusDeleted})
}

// Restore 把回收站中的文件恢复为活动状态.命名冲突由调用方先行检查.
func (r *FileRepo) Restore(ctx context.Context, id string) (*model.File, error) {
	return r.Update(ctx, id, map[string]any{"status": model.StatusActive})
}

// ListDeletedBefore 返回在 cutoff 之前进入回收站的文件，定时清理用.
// updated_at 在状态翻转时刷新，因此它就是入站时间.
func (r *FileRepo) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]model.File, error) {
	var files []model.File

	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", model.StatusDeleted, cutoff).
		Order("updated_at").Find(&files).Error
	if err != nil {
		return nil, types.NewCatalogError("list expired trash", err)
	}

	return files, nil
}

// DeletePermanent 删除文件行并返回其 storage_path.
// 调用方须在删行之前先删除磁盘 blob：行是 blob 的唯一索引，
// 顺序颠倒会在磁盘删除失败时留下指向空文件的记录.
func (r *FileRepo) DeletePermanent(ctx context.Context, id string) (string, error) {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.File{}).Error; err != nil {
		return "", types.NewCatalogError("delete file", err)
	}

	return f.StoragePath, nil
}

// BumpAccess 自增访问计数并记录访问时间.
// 下载遥测，用 UpdateColumns 跳过 updated_at 刷新.
func (r *FileRepo) BumpAccess(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.File{}).Where("id = ?", id).
		UpdateColumns(map[string]any{
			"access_count":  gorm.Expr("access_count + ?", 1),
			"last_accessed": time.Now().UTC(),
		})
	if res.Error != nil {
		return types.NewCatalogError("bump access", res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("file %q: %w", id, types.ErrNotFound)
	}

	return nil
}

// GenerateUniqueNameInFolder 为 keep_both 生成不冲突的展示名：
// 在扩展名前追加 " (n)"，直到没有活动文件占用候选名.
// 回收站中的同名文件不参与判定.
func (r *FileRepo) GenerateUniqueNameInFolder(ctx context.Context, desired, folder string) (string, error) {
	base, ext := splitName(desired)

	for n := 1; n <= maxNameAttempts; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)

		existing, err := r.GetActiveByNameAndFolder(ctx, candidate, folder, "")
		if err != nil {
			return "", err
		}

		if existing == nil {
			return candidate, nil
		}
	}

	return "", types.NewCatalogError("generate unique name",
		fmt.Errorf("no free candidate for %q after %d attempts", desired, maxNameAttempts))
}

// StatusTotal 按状态聚合的文件数量与字节数.
type StatusTotal struct {
	Status string
	Count  int64
	Bytes  int64
}

// TotalsByStatus 统计各状态的文件总数与总字节数，owner 非空时限定所有者.
func (r *FileRepo) TotalsByStatus(ctx context.Context, owner string) ([]StatusTotal, error) {
	tx := r.db.WithContext(ctx).Model(&model.File{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(size), 0) AS bytes").
		Group("status")

	if owner != "" {
		tx = tx.Where("owner_id = ?", owner)
	}

	var totals []StatusTotal
	if err := tx.Scan(&totals).Error; err != nil {
		return nil, types.NewCatalogError("totals by status", err)
	}

	return totals, nil
}

// MimeTotal 按 MIME 类型聚合的数量与字节数.
type MimeTotal struct {
	MimeType string
	Count    int64
	Bytes    int64
}

// TopMimeTypes 统计活动文件里占比最高的 MIME 类型，按字节数降序取前 limit 个.
func (r *FileRepo) TopMimeTypes(ctx context.Context, owner string, limit int) ([]MimeTotal, error) {
	tx := r.db.WithContext(ctx).Model(&model.File{}).
		Select("mime_type, COUNT(*) AS count, COALESCE(SUM(size), 0) AS bytes").
		Where("status = ?", model.StatusActive).
		Group("mime_type").
		Order("bytes DESC")

	if owner != "" {
		tx = tx.Where("owner_id = ?", owner)
	}

	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var totals []MimeTotal
	if err := tx.Scan(&totals).Error; err != nil {
		return nil, types.NewCatalogError("top mime types", err)
	}

	return totals, nil
}

// SumSizeUnder 汇总文件夹之下所有层级的文件字节数，活动与回收站都计入.
// 空路径表示存储根，即全部文件.
func (r *FileRepo) SumSizeUnder(ctx context.Context, folder string) (int64, error) {
	var total int64

	tx := scopeSubtree(r.db.WithContext(ctx).Model(&model.File{}), folder).
		Select("COALESCE(SUM(size), 0)")
	if err := tx.Scan(&total).Error; err != nil {
		return 0, types.NewCatalogError("sum folder size", err)
	}

	return total, nil
}

// splitName 拆出主名与最后一个扩展名，"archive.tar.gz" 拆为 ("archive.tar", ".gz")，
// 纯点文件（".env"）整体视为主名.
func splitName(name string) (string, string) {
	ext := filepath.Ext(name)
	if ext == name {
		return name, ""
	}

	return strings.TrimSuffix(name, ext), ext
}
