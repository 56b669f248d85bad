package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Flapjacck/moxbox/pkg/internal/catalog"
	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/sanitize"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

// FolderService 文件夹业务逻辑，复用 FileService 的依赖.
type FolderService struct {
	*FileService
}

// NewFolderService 从 context 获取依赖实例.
func NewFolderService(c context.Context) *FolderService {
	return &FolderService{NewFileService(c)}
}

// toFolderInfo 将 catalog 行转换为对外 DTO.
func toFolderInfo(f *model.Folder) types.FolderInfo {
	return types.FolderInfo{
		ID:        f.ID,
		Path:      f.Path,
		Owner:     f.OwnerID,
		Size:      f.Size,
		CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// requireFolder 取出文件夹记录并校验所有权，未命中或他人所有都返回
// NotFound，不泄露存在性.
func (fs *FolderService) requireFolder(ctx context.Context, path, owner string) (*model.Folder, error) {
	rec, err := fs.folders.GetByPath(ctx, path)
	if err != nil {
		return nil, err
	}

	if rec == nil || (rec.OwnerID != "" && rec.OwnerID != owner) {
		return nil, fmt.Errorf("folder %q: %w", path, types.ErrNotFound)
	}

	return rec, nil
}

// CreateFolder 显式创建文件夹：先建磁盘目录，再懒创建整条记录链.
// 幂等，已存在时返回现有记录.
func (fs *FolderService) CreateFolder(ctx context.Context, owner string, req *types.CreateFolderRequest) (*types.FolderInfo, error) {
	path, err := sanitize.Clean(req.Path)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return nil, fmt.Errorf("folder path is empty: %w", types.ErrInvalidArgument)
	}

	if err := fs.blobClient.EnsureDirectory(ctx, path); err != nil {
		return nil, err
	}

	if err := fs.agg.EnsureAndRecalculate(ctx, path, owner); err != nil {
		return nil, err
	}

	rec, err := fs.folders.GetByPath(ctx, path)
	if err != nil {
		return nil, err
	}

	if rec == nil {
		return nil, types.NewCatalogError("create folder", fmt.Errorf("folder %q missing after create", path))
	}

	info := toFolderInfo(rec)

	return &info, nil
}

// ListFolders 列出请求者的全部文件夹记录.
func (fs *FolderService) ListFolders(ctx context.Context, owner string) (*types.ListFoldersResponse, error) {
	recs, err := fs.folders.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	infos := make([]types.FolderInfo, 0, len(recs))
	for i := range recs {
		infos = append(infos, toFolderInfo(&recs[i]))
	}

	return &types.ListFoldersResponse{Folders: infos, Total: len(infos)}, nil
}

// FolderEntries 列出文件夹的直接子项：磁盘目录列表与 catalog 合并，
// 文件项替换为展示名，回收站中的文件不展示.
func (fs *FolderService) FolderEntries(ctx context.Context, owner, rawPath string) (*types.FolderEntriesResponse, error) {
	path, err := sanitize.Clean(rawPath)
	if err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := fs.requireFolder(ctx, path, owner); err != nil {
			return nil, err
		}
	}

	dirents, err := fs.blobClient.ListDirectory(ctx, path)
	if err != nil {
		return nil, err
	}

	rows, err := fs.files.ListByFolder(ctx, path, "")
	if err != nil {
		return nil, err
	}

	byStored := make(map[string]*model.File, len(rows))
	for i := range rows {
		byStored[rows[i].StoredName] = &rows[i]
	}

	entries := make([]types.DirEntry, 0, len(dirents))

	for _, de := range dirents {
		if de.Type == types.EntryTypeFile {
			if row, ok := byStored[de.Name]; ok {
				if row.IsDeleted() {
					continue
				}

				de.Name = row.OriginalName
			}
		}

		entries = append(entries, de)
	}

	return &types.FolderEntriesResponse{Path: path, Entries: entries, Total: len(entries)}, nil
}

// RenameFolder 重命名文件夹：物理移动整个目录，然后在一个事务里
// 改写子树内每个文件的 storage_path 并把受影响的文件夹记录按新路径
// 删旧建新.catalog 失败时把目录移回原位补偿.
func (fs *FolderService) RenameFolder(ctx context.Context, owner string, req *types.RenameFolderRequest) (*types.RenameFolderResponse, error) {
	oldPath, err := sanitize.Clean(req.Path)
	if err != nil {
		return nil, err
	}

	if oldPath == "" {
		return nil, fmt.Errorf("cannot rename the storage root: %w", types.ErrInvalidArgument)
	}

	newName, err := sanitize.Clean(req.NewName)
	if err != nil {
		return nil, err
	}

	if newName == "" || strings.Contains(newName, "/") {
		return nil, fmt.Errorf("new folder name %q must be a single segment: %w", req.NewName, types.ErrInvalidArgument)
	}

	if _, err := fs.requireFolder(ctx, oldPath, owner); err != nil {
		return nil, err
	}

	newPath := joinStoragePath(sanitize.Parent(oldPath), newName)
	if newPath == oldPath {
		return &types.RenameFolderResponse{
			OldPath: oldPath, NewPath: newPath,
			UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		}, nil
	}

	if existing, err := fs.folders.GetByPath(ctx, newPath); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, types.NewActiveConflict(newName, sanitize.Parent(oldPath), existing.ID)
	}

	rows, err := fs.files.ListByPrefix(ctx, oldPath)
	if err != nil {
		return nil, err
	}

	subRecs, err := fs.folders.ListByPrefix(ctx, oldPath)
	if err != nil {
		return nil, err
	}

	if err := fs.blobClient.Rename(ctx, oldPath, newPath); err != nil {
		return nil, err
	}

	err = fs.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		filesTx := catalog.NewFileRepo(tx)
		foldersTx := catalog.NewFolderRepo(tx)

		for i := range rows {
			rebased := newPath + strings.TrimPrefix(rows[i].StoragePath, oldPath)
			if _, err := filesTx.UpdateStoragePath(ctx, rows[i].ID, rebased); err != nil {
				return err
			}
		}

		// 文件夹记录以 path 为自然键，重命名是删旧建新而非改路径
		for i := range subRecs {
			rebased := newPath + strings.TrimPrefix(subRecs[i].Path, oldPath)

			if err := foldersTx.DeleteByPath(ctx, subRecs[i].Path); err != nil {
				return err
			}

			rec := &model.Folder{Path: rebased, OwnerID: subRecs[i].OwnerID, Size: subRecs[i].Size}
			if err := foldersTx.Create(ctx, rec); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		fs.undoBlobRename(ctx, newPath, oldPath)
		return nil, err
	}

	fs.recalcFolderSizes(ctx, newPath)
	fs.publishFolderRenamed(ctx, oldPath, newPath, len(rows), owner)

	return &types.RenameFolderResponse{
		OldPath:    oldPath,
		NewPath:    newPath,
		MovedFiles: len(rows),
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// DeleteFolder 删除文件夹.磁盘目录必须为空（目录已不存在视为满足），
// 随后清掉其自身与子层级的所有文件夹记录.
func (fs *FolderService) DeleteFolder(ctx context.Context, owner, rawPath string) (*types.DeleteFolderResponse, error) {
	path, err := sanitize.Clean(rawPath)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return nil, fmt.Errorf("cannot delete the storage root: %w", types.ErrInvalidArgument)
	}

	if _, err := fs.requireFolder(ctx, path, owner); err != nil {
		return nil, err
	}

	if err := fs.blobClient.DeleteFolder(ctx, path); err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	recs, err := fs.folders.ListByPrefix(ctx, path)
	if err != nil {
		return nil, err
	}

	for i := range recs {
		if err := fs.folders.DeleteByPath(ctx, recs[i].Path); err != nil && !errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
	}

	fs.recalcFolderSizes(ctx, sanitize.Parent(path))

	return &types.DeleteFolderResponse{Path: path, Deleted: true}, nil
}
