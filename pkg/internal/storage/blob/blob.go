// Package blob 处理存储根目录下的文件系统操作.所有相对路径先经
// sanitize 解析为根目录内的绝对路径，越界一律拒绝.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Flapjacck/moxbox/pkg/configs"
	"github.com/Flapjacck/moxbox/pkg/internal/sanitize"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
	nlog "github.com/Flapjacck/moxbox/pkg/log"
)

// Client 包装存储根目录.
type Client struct {
	root string
}

// New 初始化 blob 存储：解析并创建存储根目录.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().Storage

	root, err := filepath.Abs(cfg.RootPath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %q: %w", cfg.RootPath, err)
	}

	if err := os.MkdirAll(root, configs.DefaultStorageDirPerm); err != nil {
		return nil, fmt.Errorf("create storage root %q: %w", root, err)
	}

	nlog.Logger().Info().Str("root", root).Msg("blob 存储已初始化")

	return &Client{root: root}, nil
}

// NewAt 在指定根目录上创建客户端，测试与后台任务使用.
func NewAt(root string) (*Client, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %q: %w", root, err)
	}

	if err := os.MkdirAll(abs, configs.DefaultStorageDirPerm); err != nil {
		return nil, fmt.Errorf("create storage root %q: %w", abs, err)
	}

	return &Client{root: abs}, nil
}

// Root 返回存储根目录的绝对路径.
func (c *Client) Root() string {
	return c.root
}

// ResolvePath 把相对存储路径解析为根目录内的绝对路径.
func (c *Client) ResolvePath(rel string) (string, error) {
	return sanitize.ResolveSecure(c.root, rel)
}

// EnsureDirectory 递归创建文件夹，幂等.
func (c *Client) EnsureDirectory(ctx context.Context, relFolder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := c.ResolvePath(relFolder)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(abs, configs.DefaultStorageDirPerm); err != nil {
		return types.NewStorageError("mkdir", relFolder, err)
	}

	return nil
}

// Save 把 r 的内容流式写入相对路径，自动创建父目录，返回写入字节数.
// 拷贝中途失败时清掉残留的半截文件再返回错误.
func (c *Client) Save(ctx context.Context, rel string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	abs, err := c.ResolvePath(rel)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(abs), configs.DefaultStorageDirPerm); err != nil {
		return 0, types.NewStorageError("mkdir", rel, err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return 0, types.NewStorageError("create", rel, err)
	}

	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(abs)

		return 0, types.NewStorageError("write", rel, err)
	}

	return written, nil
}

// Open 打开相对路径的读取流，下载与哈希计算使用.
func (c *Client) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := c.ResolvePath(rel)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %q: %w", rel, types.ErrNotFound)
		}

		return nil, types.NewStorageError("open", rel, err)
	}

	return f, nil
}

// Stat 返回相对路径的文件信息.
func (c *Client) Stat(ctx context.Context, rel string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := c.ResolvePath(rel)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %q: %w", rel, types.ErrNotFound)
		}

		return nil, types.NewStorageError("stat", rel, err)
	}

	return info, nil
}

// Delete 删除相对路径的文件.文件不存在返回 NotFound.
func (c *Client) Delete(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := c.ResolvePath(rel)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("blob %q: %w", rel, types.ErrNotFound)
		}

		return types.NewStorageError("delete", rel, err)
	}

	return nil
}

// Rename 物理移动文件或文件夹，自动创建目标父目录.
// 源不存在返回 NotFound；目标冲突等底层失败返回 StorageError.
func (c *Client) Rename(ctx context.Context, oldRel, newRel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	oldAbs, err := c.ResolvePath(oldRel)
	if err != nil {
		return err
	}

	newAbs, err := c.ResolvePath(newRel)
	if err != nil {
		return err
	}

	if _, err := os.Stat(oldAbs); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("blob %q: %w", oldRel, types.ErrNotFound)
		}

		return types.NewStorageError("stat", oldRel, err)
	}

	if err := os.MkdirAll(filepath.Dir(newAbs), configs.DefaultStorageDirPerm); err != nil {
		return types.NewStorageError("mkdir", newRel, err)
	}

	if err := os.Rename(oldAbs, newAbs); err != nil {
		return types.NewStorageError("rename", oldRel, err)
	}

	return nil
}

// DeleteFolder 删除文件夹.磁盘上非空时失败，保证不悄悄抹掉用户数据.
func (c *Client) DeleteFolder(ctx context.Context, relFolder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := c.ResolvePath(relFolder)
	if err != nil {
		return err
	}

	if abs == c.root {
		return types.NewStorageError("rmdir", relFolder, fmt.Errorf("refusing to remove storage root"))
	}

	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("folder %q: %w", relFolder, types.ErrNotFound)
		}

		return types.NewStorageError("stat", relFolder, err)
	}

	// os.Remove 对非空目录直接报错
	if err := os.Remove(abs); err != nil {
		return types.NewStorageError("rmdir", relFolder, err)
	}

	return nil
}

// ListDirectory 列出文件夹的直接子项，文件附带大小.
func (c *Client) ListDirectory(ctx context.Context, relFolder string) ([]types.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := c.ResolvePath(relFolder)
	if err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("folder %q: %w", relFolder, types.ErrNotFound)
		}

		return nil, types.NewStorageError("readdir", relFolder, err)
	}

	entries := make([]types.DirEntry, 0, len(dirents))

	for _, de := range dirents {
		entry := types.DirEntry{Name: de.Name(), Type: types.EntryTypeFile}
		if de.IsDir() {
			entry.Type = types.EntryTypeFolder
		} else if info, err := de.Info(); err == nil {
			size := info.Size()
			entry.Size = &size
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// HashContent 流式计算相对路径文件的 SHA-256，返回十六进制串.
func (c *Client) HashContent(ctx context.Context, rel string) (string, error) {
	f, err := c.Open(ctx, rel)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", types.NewStorageError("hash", rel, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// PruneEmptyDirs 从 relFolder 起向上删除空目录，遇到非空即停，
// 不会触碰存储根.幂等，中止上传的清理路径复用.
func (c *Client) PruneEmptyDirs(ctx context.Context, relFolder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for p := relFolder; p != ""; p = sanitize.Parent(p) {
		abs, err := c.ResolvePath(p)
		if err != nil {
			return err
		}

		if abs == c.root {
			break
		}

		if err := os.Remove(abs); err != nil {
			if os.IsNotExist(err) {
				continue
			}

			// 非空或权限受限，保守停止
			break
		}
	}

	return nil
}

// HealthCheck 校验根目录存在且可写.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	probe, err := os.CreateTemp(c.root, ".healthz-*")
	if err != nil {
		return fmt.Errorf("storage root not writable: %w", err)
	}

	name := probe.Name()
	_ = probe.Close()

	return os.Remove(name)
}

// Close 关闭 blob 存储（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}
