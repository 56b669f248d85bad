package blob_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Flapjacck/moxbox/pkg/internal/storage/blob"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

// newTestClient 在临时目录上创建 blob 客户端.
func newTestClient(t *testing.T) *blob.Client {
	t.Helper()

	c, err := blob.NewAt(t.TempDir())
	if err != nil {
		t.Fatalf("create blob client: %v", err)
	}

	return c
}

func TestSaveAndOpen(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	payload := []byte("hello moxbox")

	n, err := c.Save(ctx, "docs/a1b2.txt", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if n != int64(len(payload)) {
		t.Fatalf("written = %d, want %d", n, len(payload))
	}

	r, err := c.Open(ctx, "docs/a1b2.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if !bytes.Equal(got, payload) {
		t.Fatalf("content = %q, want %q", got, payload)
	}

	info, err := c.Stat(ctx, "docs/a1b2.txt")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if info.Size() != int64(len(payload)) {
		t.Fatalf("stat size = %d, want %d", info.Size(), len(payload))
	}
}

func TestSaveCreatesParents(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Save(ctx, "a/b/c/deep.bin", bytes.NewReader([]byte{1, 2, 3})); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(c.Root(), "a", "b", "c", "deep.bin")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
}

func TestHashContent(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	payload := []byte("content to hash")

	if _, err := c.Save(ctx, "h.bin", bytes.NewReader(payload)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := c.HashContent(ctx, "h.bin")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	sum := sha256.Sum256(payload)
	if want := hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("hash = %s, want %s", got, want)
	}
}

func TestDeleteNotFound(t *testing.T) {
	c := newTestClient(t)

	err := c.Delete(context.Background(), "missing/file.txt")
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteFolderRequiresEmpty(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Save(ctx, "docs/keep.txt", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("save: %v", err)
	}

	err := c.DeleteFolder(ctx, "docs")
	if err == nil {
		t.Fatal("expected error deleting non-empty folder")
	}

	var serr *types.StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %T, want *types.StorageError", err)
	}

	if err := c.Delete(ctx, "docs/keep.txt"); err != nil {
		t.Fatalf("delete file: %v", err)
	}

	if err := c.DeleteFolder(ctx, "docs"); err != nil {
		t.Fatalf("delete empty folder: %v", err)
	}

	if err := c.DeleteFolder(ctx, "docs"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestRenameMovesAcrossFolders(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Save(ctx, "docs/r.txt", bytes.NewReader([]byte("move me"))); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := c.Rename(ctx, "docs/r.txt", "archive/2024/r.txt"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if _, err := c.Stat(ctx, "docs/r.txt"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("old path still present: %v", err)
	}

	if _, err := c.Stat(ctx, "archive/2024/r.txt"); err != nil {
		t.Fatalf("new path missing: %v", err)
	}

	if err := c.Rename(ctx, "docs/ghost.txt", "docs/other.txt"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("rename missing source err = %v, want ErrNotFound", err)
	}
}

func TestListDirectory(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Save(ctx, "docs/a.txt", bytes.NewReader([]byte("aaaa"))); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := c.EnsureDirectory(ctx, "docs/sub"); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}

	entries, err := c.ListDirectory(ctx, "docs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	byName := make(map[string]types.DirEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	file, ok := byName["a.txt"]
	if !ok || file.Type != types.EntryTypeFile {
		t.Fatalf("a.txt entry = %+v", file)
	}

	if file.Size == nil || *file.Size != 4 {
		t.Fatalf("a.txt size = %v, want 4", file.Size)
	}

	folder, ok := byName["sub"]
	if !ok || folder.Type != types.EntryTypeFolder {
		t.Fatalf("sub entry = %+v", folder)
	}

	if folder.Size != nil {
		t.Fatalf("folder size = %v, want nil", folder.Size)
	}

	if _, err := c.ListDirectory(ctx, "nope"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("list missing err = %v, want ErrNotFound", err)
	}
}

func TestPruneEmptyDirs(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if err := c.EnsureDirectory(ctx, "a/b/c"); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}

	if _, err := c.Save(ctx, "a/keep.txt", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := c.PruneEmptyDirs(ctx, "a/b/c"); err != nil {
		t.Fatalf("prune: %v", err)
	}

	// b/c 已清空，a 因仍有文件保留
	if _, err := os.Stat(filepath.Join(c.Root(), "a", "b")); !os.IsNotExist(err) {
		t.Fatalf("a/b should be pruned: %v", err)
	}

	if _, err := os.Stat(filepath.Join(c.Root(), "a")); err != nil {
		t.Fatalf("a should survive: %v", err)
	}

	// 幂等
	if err := c.PruneEmptyDirs(ctx, "a/b/c"); err != nil {
		t.Fatalf("prune again: %v", err)
	}

	if _, err := os.Stat(c.Root()); err != nil {
		t.Fatalf("root must never be pruned: %v", err)
	}
}

func TestResolvePathRejectsEscape(t *testing.T) {
	c := newTestClient(t)

	if _, err := c.ResolvePath("../outside.txt"); err == nil {
		t.Fatal("expected traversal rejection")
	}

	abs, err := c.ResolvePath("docs/ok.txt")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if abs != filepath.Join(c.Root(), "docs", "ok.txt") {
		t.Fatalf("abs = %s", abs)
	}
}

func TestHealthCheck(t *testing.T) {
	c := newTestClient(t)

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}
