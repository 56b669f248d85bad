package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

// FolderRepo 文件夹表的数据访问层.path 是自然键，
// 重命名等价于删除旧记录再创建新记录，而不是原地改 path.
type FolderRepo struct {
	db *gorm.DB
}

// NewFolderRepo 基于已初始化的 gorm 连接构造文件夹仓库.
func NewFolderRepo(db *gorm.DB) *FolderRepo {
	return &FolderRepo{db: db}
}

// Create 插入一条文件夹记录，ID 为空时自动生成 ULID.
// path 撞唯一索引时返回 CatalogError，幂等创建请用 GetOrCreate.
func (r *FolderRepo) Create(ctx context.Context, f *model.Folder) error {
	if f.ID == "" {
		f.ID = NewID()
	}

	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return types.NewCatalogError("create folder", err)
	}

	return nil
}

// GetByPath 按路径查找文件夹.未追踪的路径返回 (nil, nil)，
// 文件夹记录是懒创建的，"不存在"对聚合器来说是正常分支.
func (r *FolderRepo) GetByPath(ctx context.Context, path string) (*model.Folder, error) {
	var f model.Folder

	err := r.db.WithContext(ctx).Where("path = ?", path).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, types.NewCatalogError("get folder", err)
	}

	return &f, nil
}

// GetOrCreate 幂等地确保路径对应的文件夹记录存在并返回它.
// 并发调用撞唯一索引时落到 DoNothing 分支，随后的回读拿到先到者的行.
func (r *FolderRepo) GetOrCreate(ctx context.Context, path, owner string) (*model.Folder, error) {
	if path == "" {
		return nil, types.NewCatalogError("ensure folder", errors.New("root folder is not tracked"))
	}

	rec := model.Folder{ID: NewID(), Path: path, OwnerID: owner}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoNothing: true,
	}).Create(&rec).Error
	if err != nil {
		return nil, types.NewCatalogError("ensure folder", err)
	}

	f, err := r.GetByPath(ctx, path)
	if err != nil {
		return nil, err
	}

	if f == nil {
		return nil, types.NewCatalogError("ensure folder", fmt.Errorf("folder %q missing after upsert", path))
	}

	return f, nil
}

// UpdateSize 写入重算后的缓存大小，负值夹到 0.
func (r *FolderRepo) UpdateSize(ctx context.Context, id string, size int64) error {
	if size < 0 {
		size = 0
	}

	res := r.db.WithContext(ctx).Model(&model.Folder{}).Where("id = ?", id).
		Updates(map[string]any{"size": size})
	if res.Error != nil {
		return types.NewCatalogError("update folder size", res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("folder %q: %w", id, types.ErrNotFound)
	}

	return nil
}

// DeleteByPath 删除路径对应的文件夹记录.
func (r *FolderRepo) DeleteByPath(ctx context.Context, path string) error {
	res := r.db.WithContext(ctx).Where("path = ?", path).Delete(&model.Folder{})
	if res.Error != nil {
		return types.NewCatalogError("delete folder", res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("folder %q: %w", path, types.ErrNotFound)
	}

	return nil
}

// List 列出全部文件夹记录，owner 非空时限定所有者，按路径排序.
func (r *FolderRepo) List(ctx context.Context, owner string) ([]model.Folder, error) {
	tx := r.db.WithContext(ctx).Model(&model.Folder{})

	if owner != "" {
		tx = tx.Where("owner_id = ?", owner)
	}

	var folders []model.Folder
	if err := tx.Order("path").Find(&folders).Error; err != nil {
		return nil, types.NewCatalogError("list folders", err)
	}

	return folders, nil
}

// ListByPrefix 返回路径本身及其所有子层级的文件夹记录，
// 重命名时用于迁移整棵子树.
func (r *FolderRepo) ListByPrefix(ctx context.Context, prefix string) ([]model.Folder, error) {
	tx := r.db.WithContext(ctx).Model(&model.Folder{}).
		Where("path = ? OR path LIKE ? ESCAPE '!'", prefix, escapeLike(prefix)+"/%")

	var folders []model.Folder
	if err := tx.Order("path").Find(&folders).Error; err != nil {
		return nil, types.NewCatalogError("list folders by prefix", err)
	}

	return folders, nil
}

// Count 统计文件夹记录数，owner 非空时限定所有者.
func (r *FolderRepo) Count(ctx context.Context, owner string) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Folder{})

	if owner != "" {
		tx = tx.Where("owner_id = ?", owner)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, types.NewCatalogError("count folders", err)
	}

	return total, nil
}
