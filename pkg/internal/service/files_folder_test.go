package service_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Flapjacck/moxbox/pkg/internal/service"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

func TestCreateFolderBuildsWholeChain(t *testing.T) {
	e := newTestEnv(t)
	folders := service.NewFolderService(e.ctx)

	info, err := folders.CreateFolder(e.ctx, "alice", &types.CreateFolderRequest{Path: "a/b/c"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}

	if info.Path != "a/b/c" || info.Size != 0 {
		t.Errorf("created %+v, want a/b/c with size 0", info)
	}

	// 每一级前缀都被建档
	for _, p := range []string{"a", "a/b", "a/b/c"} {
		if got := folderSize(t, e, p); got != 0 {
			t.Errorf("folder %s size = %d, want 0", p, got)
		}
	}

	if fi, err := os.Stat(filepath.Join(e.root, "a", "b", "c")); err != nil || !fi.IsDir() {
		t.Errorf("disk dir missing: %v", err)
	}

	// 幂等：重复创建返回现有记录
	again, err := folders.CreateFolder(e.ctx, "alice", &types.CreateFolderRequest{Path: "a/b/c"})
	if err != nil {
		t.Fatalf("recreate folder: %v", err)
	}

	if again.ID != info.ID {
		t.Errorf("recreate returned new record %s, want %s", again.ID, info.ID)
	}
}

func TestCreateFolderValidation(t *testing.T) {
	e := newTestEnv(t)
	folders := service.NewFolderService(e.ctx)

	if _, err := folders.CreateFolder(e.ctx, "alice", &types.CreateFolderRequest{Path: "  "}); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("blank path: expected invalid argument, got %v", err)
	}

	var pathErr *types.InvalidPathError
	if _, err := folders.CreateFolder(e.ctx, "alice", &types.CreateFolderRequest{Path: "../up"}); !errors.As(err, &pathErr) {
		t.Errorf("traversal: expected invalid path error, got %v", err)
	}
}

func TestListFolders(t *testing.T) {
	e := newTestEnv(t)
	folders := service.NewFolderService(e.ctx)

	mustUpload(t, e, "alice", "a.txt", "docs/sub", []byte("a"))
	mustCreateFolder(t, e, "alice", "media")

	resp, err := folders.ListFolders(e.ctx, "alice")
	if err != nil {
		t.Fatalf("list folders: %v", err)
	}

	if resp.Total != 3 {
		t.Fatalf("total = %d, want 3 (docs, docs/sub, media)", resp.Total)
	}

	paths := make(map[string]bool, len(resp.Folders))
	for _, f := range resp.Folders {
		paths[f.Path] = true
	}

	for _, p := range []string{"docs", "docs/sub", "media"} {
		if !paths[p] {
			t.Errorf("folder %s missing from listing", p)
		}
	}
}

func TestFolderEntriesMergesCatalogNames(t *testing.T) {
	e := newTestEnv(t)
	folders := service.NewFolderService(e.ctx)

	mustUpload(t, e, "alice", "visible.txt", "docs", []byte("hello"))

	trashed := mustUpload(t, e, "alice", "hidden.txt", "docs", []byte("bye"))
	if _, err := e.svc.SoftDeleteFile(e.ctx, "alice", trashed.File.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	mustCreateFolder(t, e, "alice", "docs/sub")

	// 绕过上传直接落盘的文件没有记录，按磁盘名展示
	if _, err := e.blob.Save(e.ctx, "docs/stray.bin", bytes.NewReader([]byte("raw"))); err != nil {
		t.Fatalf("save stray blob: %v", err)
	}

	resp, err := folders.FolderEntries(e.ctx, "alice", "docs")
	if err != nil {
		t.Fatalf("folder entries: %v", err)
	}

	byName := make(map[string]types.DirEntry, len(resp.Entries))
	for _, entry := range resp.Entries {
		byName[entry.Name] = entry
	}

	if entry, ok := byName["visible.txt"]; !ok || entry.Type != types.EntryTypeFile {
		t.Errorf("active file shown as %+v, want file entry under display name", entry)
	}

	if entry, ok := byName["sub"]; !ok || entry.Type != types.EntryTypeFolder {
		t.Errorf("subfolder shown as %+v, want folder entry", entry)
	}

	if _, ok := byName["stray.bin"]; !ok {
		t.Error("uncataloged file missing from listing")
	}

	// 回收站文件既不按展示名也不按磁盘名出现
	if _, ok := byName["hidden.txt"]; ok {
		t.Error("trashed file leaked by display name")
	}

	if _, ok := byName[trashed.File.StoredName]; ok {
		t.Error("trashed file leaked by stored name")
	}

	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
}

func TestRenameFolderRebasesSubtree(t *testing.T) {
	e := newTestEnv(t)
	folders := service.NewFolderService(e.ctx)

	top := mustUpload(t, e, "alice", "a.txt", "docs", bytes.Repeat([]byte("a"), 100))
	nested := mustUpload(t, e, "alice", "b.txt", "docs/sub", bytes.Repeat([]byte("b"), 200))

	resp, err := folders.RenameFolder(e.ctx, "alice", &types.RenameFolderRequest{Path: "docs", NewName: "papers"})
	if err != nil {
		t.Fatalf("rename folder: %v", err)
	}

	if resp.OldPath != "docs" || resp.NewPath != "papers" || resp.MovedFiles != 2 {
		t.Errorf("response = %+v, want docs -> papers with 2 files", resp)
	}

	// 子树内每一行的 storage_path 都被改写
	for _, tc := range []struct{ id, prefix string }{
		{top.File.ID, "papers/"},
		{nested.File.ID, "papers/sub/"},
	} {
		row, err := e.files.GetByID(e.ctx, tc.id)
		if err != nil {
			t.Fatalf("get %s: %v", tc.id, err)
		}

		if !strings.HasPrefix(row.StoragePath, tc.prefix) {
			t.Errorf("storage path = %q, want %s prefix", row.StoragePath, tc.prefix)
		}

		if !blobExists(t, e, row.StoragePath) {
			t.Errorf("blob missing at %s", row.StoragePath)
		}
	}

	// 旧路径的记录与目录都不复存在
	for _, p := range []string{"docs", "docs/sub"} {
		rec, err := e.folders.GetByPath(e.ctx, p)
		if err != nil {
			t.Fatalf("get folder %s: %v", p, err)
		}

		if rec != nil {
			t.Errorf("stale folder record %s survived rename", p)
		}
	}

	if _, err := os.Stat(filepath.Join(e.root, "docs")); !os.IsNotExist(err) {
		t.Errorf("old dir should be gone, stat err = %v", err)
	}

	if got := folderSize(t, e, "papers"); got != 300 {
		t.Errorf("papers size = %d, want 300", got)
	}

	if got := folderSize(t, e, "papers/sub"); got != 200 {
		t.Errorf("papers/sub size = %d, want 200", got)
	}
}

func TestRenameFolderRejectsOccupiedTarget(t *testing.T) {
	e := newTestEnv(t)
	folders := service.NewFolderService(e.ctx)

	mustUpload(t, e, "alice", "a.txt", "docs", []byte("a"))
	mustCreateFolder(t, e, "alice", "papers")

	_, err := folders.RenameFolder(e.ctx, "alice", &types.RenameFolderRequest{Path: "docs", NewName: "papers"})

	var conflict *types.ConflictError
	if !errors.As(err, &conflict) || conflict.Kind != types.ConflictActive {
		t.Fatalf("expected active conflict, got %v", err)
	}

	// 失败的重命名不碰磁盘
	if _, err := os.Stat(filepath.Join(e.root, "docs")); err != nil {
		t.Errorf("source dir should be untouched: %v", err)
	}
}

func TestRenameFolderValidation(t *testing.T) {
	e := newTestEnv(t)
	folders := service.NewFolderService(e.ctx)

	if _, err := folders.RenameFolder(e.ctx, "alice", &types.RenameFolderRequest{Path: "", NewName: "x"}); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("root rename: expected invalid argument, got %v", err)
	}

	mustCreateFolder(t, e, "alice", "docs")

	if _, err := folders.RenameFolder(e.ctx, "alice", &types.RenameFolderRequest{Path: "docs", NewName: "a/b"}); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("multi-segment name: expected invalid argument, got %v", err)
	}

	if _, err := folders.RenameFolder(e.ctx, "alice", &types.RenameFolderRequest{Path: "nosuch", NewName: "x"}); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("missing folder: expected not found, got %v", err)
	}

	// 改成同名是幂等的
	if _, err := folders.RenameFolder(e.ctx, "alice", &types.RenameFolderRequest{Path: "docs", NewName: "docs"}); err != nil {
		t.Errorf("same-name rename: %v", err)
	}
}

func TestDeleteFolderRequiresEmptyDisk(t *testing.T) {
	e := newTestEnv(t)
	folders := service.NewFolderService(e.ctx)

	up := mustUpload(t, e, "alice", "a.txt", "docs", []byte("a"))

	if _, err := folders.DeleteFolder(e.ctx, "alice", "docs"); err == nil {
		t.Fatal("non-empty folder delete should fail")
	}

	if got := folderSize(t, e, "docs"); got != 1 {
		t.Errorf("failed delete touched the record, size = %d", got)
	}

	if _, err := e.svc.PurgeFile(e.ctx, "alice", up.File.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}

	resp, err := folders.DeleteFolder(e.ctx, "alice", "docs")
	if err != nil {
		t.Fatalf("delete empty folder: %v", err)
	}

	if !resp.Deleted {
		t.Error("deleted flag not set")
	}

	rec, err := e.folders.GetByPath(e.ctx, "docs")
	if err != nil {
		t.Fatalf("get folder: %v", err)
	}

	if rec != nil {
		t.Error("folder record survived delete")
	}

	if _, err := os.Stat(filepath.Join(e.root, "docs")); !os.IsNotExist(err) {
		t.Errorf("disk dir should be gone, stat err = %v", err)
	}
}

func TestDeleteFolderToleratesMissingDir(t *testing.T) {
	e := newTestEnv(t)
	folders := service.NewFolderService(e.ctx)

	mustCreateFolder(t, e, "alice", "ghost")

	// 目录在库外被移除后，记录仍然可以清理
	if err := os.RemoveAll(filepath.Join(e.root, "ghost")); err != nil {
		t.Fatalf("remove dir: %v", err)
	}

	resp, err := folders.DeleteFolder(e.ctx, "alice", "ghost")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	if !resp.Deleted {
		t.Error("deleted flag not set")
	}

	rec, err := e.folders.GetByPath(e.ctx, "ghost")
	if err != nil {
		t.Fatalf("get folder: %v", err)
	}

	if rec != nil {
		t.Error("folder record survived delete")
	}
}
