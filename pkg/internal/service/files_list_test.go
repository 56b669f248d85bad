package service_test

import (
	"errors"
	"io"
	"testing"

	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

func TestListFilesFiltersByFolderAndStatus(t *testing.T) {
	e := newTestEnv(t)

	mustUpload(t, e, "alice", "a.txt", "docs", []byte("a"))
	mustUpload(t, e, "alice", "b.txt", "docs", []byte("b"))
	mustUpload(t, e, "alice", "c.txt", "other", []byte("c"))

	deleted := mustUpload(t, e, "alice", "d.txt", "docs", []byte("d"))
	if _, err := e.svc.SoftDeleteFile(e.ctx, "alice", deleted.File.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	docs := "docs"

	resp, err := e.svc.ListFiles(e.ctx, "alice", &types.ListFilesQuery{Folder: &docs})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	// 默认只看活动文件
	if resp.Total != 2 || len(resp.Files) != 2 {
		t.Errorf("docs active = %d rows / %d total, want 2/2", len(resp.Files), resp.Total)
	}

	trash, err := e.svc.ListFiles(e.ctx, "alice", &types.ListFilesQuery{Folder: &docs, Status: "deleted"})
	if err != nil {
		t.Fatalf("list deleted: %v", err)
	}

	if trash.Total != 1 || trash.Files[0].OriginalName != "d.txt" {
		t.Errorf("docs deleted = %+v, want only d.txt", trash.Files)
	}
}

func TestListFilesPagination(t *testing.T) {
	e := newTestEnv(t)

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		mustUpload(t, e, "alice", name, "docs", []byte(name))
	}

	resp, err := e.svc.ListFiles(e.ctx, "alice", &types.ListFilesQuery{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	// total 是过滤后的全量，不受分页影响
	if resp.Total != 3 || len(resp.Files) != 2 {
		t.Errorf("page = %d rows / %d total, want 2/3", len(resp.Files), resp.Total)
	}

	rest, err := e.svc.ListFiles(e.ctx, "alice", &types.ListFilesQuery{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}

	if len(rest.Files) != 1 {
		t.Errorf("second page = %d rows, want 1", len(rest.Files))
	}
}

func TestGetFileHidesPrivateFromOthers(t *testing.T) {
	e := newTestEnv(t)

	up := mustUpload(t, e, "alice", "secret.txt", "docs", []byte("s"))

	if _, err := e.svc.GetFile(e.ctx, "alice", up.File.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}

	// 私有文件对外不暴露存在性
	if _, err := e.svc.GetFile(e.ctx, "bob", up.File.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("foreign read: expected not found, got %v", err)
	}
}

func TestDownloadStreamsAndBumpsAccess(t *testing.T) {
	e := newTestEnv(t)

	content := []byte("download me")
	up := mustUpload(t, e, "alice", "a.txt", "docs", content)

	rc, info, err := e.svc.OpenDownload(e.ctx, "alice", up.File.ID)
	if err != nil {
		t.Fatalf("open download: %v", err)
	}

	got, err := io.ReadAll(rc)
	_ = rc.Close()

	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}

	if info.OriginalName != "a.txt" {
		t.Errorf("info name = %q, want a.txt", info.OriginalName)
	}

	after, err := e.svc.GetFile(e.ctx, "alice", up.File.ID)
	if err != nil {
		t.Fatalf("get after download: %v", err)
	}

	if after.AccessCount != 1 {
		t.Errorf("access count = %d, want 1", after.AccessCount)
	}

	if after.LastAccessed == nil {
		t.Error("last accessed not set")
	}
}

func TestDownloadRejectsTrashedFile(t *testing.T) {
	e := newTestEnv(t)

	up := mustUpload(t, e, "alice", "a.txt", "docs", []byte("a"))

	if _, err := e.svc.SoftDeleteFile(e.ctx, "alice", up.File.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, _, err := e.svc.OpenDownload(e.ctx, "alice", up.File.ID); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}
