package service_test

import (
	"bytes"
	"testing"

	"github.com/Flapjacck/moxbox/pkg/internal/service"
)

func TestStatsSummaryCountsByStatus(t *testing.T) {
	e := newTestEnv(t)
	stats := service.NewStatsService(e.ctx)

	mustUpload(t, e, "alice", "a.txt", "docs", bytes.Repeat([]byte("a"), 100))
	mustUpload(t, e, "alice", "b.txt", "docs", bytes.Repeat([]byte("b"), 200))

	trashed := mustUpload(t, e, "alice", "c.txt", "docs", bytes.Repeat([]byte("c"), 300))
	if _, err := e.svc.SoftDeleteFile(e.ctx, "alice", trashed.File.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// 其他用户的文件不掺进来
	mustUpload(t, e, "bob", "z.txt", "zone", bytes.Repeat([]byte("z"), 999))

	sum, err := stats.Summary(e.ctx, "alice")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if sum.TotalFiles != 3 || sum.ActiveFiles != 2 || sum.TrashFiles != 1 {
		t.Errorf("files = %d/%d/%d, want 3 total, 2 active, 1 trash",
			sum.TotalFiles, sum.ActiveFiles, sum.TrashFiles)
	}

	if sum.TotalBytes != 600 || sum.ActiveBytes != 300 || sum.TrashBytes != 300 {
		t.Errorf("bytes = %d/%d/%d, want 600/300/300",
			sum.TotalBytes, sum.ActiveBytes, sum.TrashBytes)
	}

	if sum.Folders != 1 {
		t.Errorf("folders = %d, want 1", sum.Folders)
	}

	// TopTypes 只统计活动文件
	if len(sum.TopTypes) != 1 || sum.TopTypes[0].Count != 2 || sum.TopTypes[0].Bytes != 300 {
		t.Errorf("top types = %+v, want single entry with 2 files / 300 bytes", sum.TopTypes)
	}

	if sum.GeneratedAt.IsZero() {
		t.Error("generated_at not set")
	}
}

func TestStatsSummaryIsCached(t *testing.T) {
	e := newTestEnv(t)
	stats := service.NewStatsService(e.ctx)

	mustUpload(t, e, "alice", "a.txt", "docs", []byte("a"))

	first, err := stats.Summary(e.ctx, "alice")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	mustUpload(t, e, "alice", "b.txt", "docs", []byte("b"))

	// TTL 内返回缓存值，允许滞后
	second, err := stats.Summary(e.ctx, "alice")
	if err != nil {
		t.Fatalf("second summary: %v", err)
	}

	if second.TotalFiles != first.TotalFiles {
		t.Errorf("cached total = %d, want %d", second.TotalFiles, first.TotalFiles)
	}
}
