package service_test

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

func TestUploadCreatesFolderAndTracksSize(t *testing.T) {
	e := newTestEnv(t)

	content := bytes.Repeat([]byte("x"), 500)
	resp := mustUpload(t, e, "alice", "report.pdf", "docs", content)

	f := resp.File
	if f.OriginalName != "report.pdf" {
		t.Errorf("original name = %q, want report.pdf", f.OriginalName)
	}

	if f.Folder != "docs" {
		t.Errorf("folder = %q, want docs", f.Folder)
	}

	if f.Size != 500 {
		t.Errorf("size = %d, want 500", f.Size)
	}

	if f.Status != "active" {
		t.Errorf("status = %q, want active", f.Status)
	}

	if !strings.HasPrefix(f.StoragePath, "docs/") {
		t.Errorf("storage path = %q, want docs/ prefix", f.StoragePath)
	}

	if want := fmt.Sprintf("%x", sha256.Sum256(content)); f.HashSha256 != want {
		t.Errorf("hash = %q, want %q", f.HashSha256, want)
	}

	if resp.Replaced {
		t.Error("replaced should be false on fresh upload")
	}

	if !blobExists(t, e, f.StoragePath) {
		t.Fatalf("blob %s missing on disk", f.StoragePath)
	}

	// 懒建文件夹记录并回填大小
	if got := folderSize(t, e, "docs"); got != 500 {
		t.Errorf("folder size = %d, want 500", got)
	}
}

func TestUploadToRootLeavesNoFolderRecord(t *testing.T) {
	e := newTestEnv(t)

	resp := mustUpload(t, e, "alice", "root.txt", "", []byte("hello"))

	if resp.File.Folder != "" {
		t.Errorf("folder = %q, want empty", resp.File.Folder)
	}

	if strings.Contains(resp.File.StoragePath, "/") {
		t.Errorf("root upload storage path %q should not contain a separator", resp.File.StoragePath)
	}

	count, err := e.folders.Count(e.ctx, "alice")
	if err != nil {
		t.Fatalf("count folders: %v", err)
	}

	if count != 0 {
		t.Errorf("folder records = %d, want 0 for root upload", count)
	}
}

func TestUploadActiveConflictWithoutAction(t *testing.T) {
	e := newTestEnv(t)

	first := mustUpload(t, e, "alice", "report.pdf", "docs", []byte("v1"))

	_, err := e.svc.UploadSingleFile(e.ctx, "alice",
		newFileHeader(t, "report.pdf", []byte("v2")), &types.UploadFileForm{Folder: "docs"})

	var conflict *types.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	if conflict.Kind != types.ConflictActive {
		t.Errorf("conflict kind = %q, want active", conflict.Kind)
	}

	if conflict.ExistingID != first.File.ID {
		t.Errorf("existing id = %q, want %q", conflict.ExistingID, first.File.ID)
	}

	// 暂存 blob 已清理，目录与记录数不变
	if got := countDiskFiles(t, e, "docs"); got != 1 {
		t.Errorf("disk files in docs = %d, want 1", got)
	}

	if got := activeCount(t, e, "docs"); got != 1 {
		t.Errorf("active rows = %d, want 1", got)
	}
}

func TestUploadKeepBothRenames(t *testing.T) {
	e := newTestEnv(t)

	mustUpload(t, e, "alice", "report.pdf", "docs", bytes.Repeat([]byte("a"), 500))

	resp, err := e.svc.UploadSingleFile(e.ctx, "alice",
		newFileHeader(t, "report.pdf", bytes.Repeat([]byte("b"), 500)),
		&types.UploadFileForm{Folder: "docs", Action: "keep_both"})
	if err != nil {
		t.Fatalf("keep_both upload: %v", err)
	}

	if resp.File.OriginalName != "report (1).pdf" {
		t.Errorf("renamed to %q, want report (1).pdf", resp.File.OriginalName)
	}

	if got := activeCount(t, e, "docs"); got != 2 {
		t.Errorf("active rows = %d, want 2", got)
	}

	if got := folderSize(t, e, "docs"); got != 1000 {
		t.Errorf("folder size = %d, want 1000", got)
	}
}

func TestUploadReplaceOverwritesInPlace(t *testing.T) {
	e := newTestEnv(t)

	first := mustUpload(t, e, "alice", "report.pdf", "docs", bytes.Repeat([]byte("a"), 500))

	newContent := bytes.Repeat([]byte("b"), 200)

	resp, err := e.svc.UploadSingleFile(e.ctx, "alice",
		newFileHeader(t, "report.pdf", newContent),
		&types.UploadFileForm{Folder: "docs", Action: "replace"})
	if err != nil {
		t.Fatalf("replace upload: %v", err)
	}

	if !resp.Replaced {
		t.Error("replaced flag not set")
	}

	// 记录 ID 不变，内容元数据全部换成新文件的
	if resp.File.ID != first.File.ID {
		t.Errorf("id = %q, want original %q", resp.File.ID, first.File.ID)
	}

	if resp.File.Size != 200 {
		t.Errorf("size = %d, want 200", resp.File.Size)
	}

	if want := fmt.Sprintf("%x", sha256.Sum256(newContent)); resp.File.HashSha256 != want {
		t.Errorf("hash = %q, want %q", resp.File.HashSha256, want)
	}

	if blobExists(t, e, first.File.StoragePath) {
		t.Error("superseded blob still on disk")
	}

	if !blobExists(t, e, resp.File.StoragePath) {
		t.Error("new blob missing on disk")
	}

	if got := activeCount(t, e, "docs"); got != 1 {
		t.Errorf("active rows = %d, want 1", got)
	}

	if got := folderSize(t, e, "docs"); got != 200 {
		t.Errorf("folder size = %d, want 200", got)
	}
}

func TestUploadBlockedByTrashedName(t *testing.T) {
	e := newTestEnv(t)

	first := mustUpload(t, e, "alice", "report.pdf", "docs", []byte("v1"))

	if _, err := e.svc.SoftDeleteFile(e.ctx, "alice", first.File.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// 回收站同名挡住所有动作，replace/keep_both 也不能绕过
	for _, action := range []string{"", "replace", "keep_both"} {
		_, err := e.svc.UploadSingleFile(e.ctx, "alice",
			newFileHeader(t, "report.pdf", []byte("v2")),
			&types.UploadFileForm{Folder: "docs", Action: action})

		var conflict *types.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("action %q: expected conflict error, got %v", action, err)
		}

		if conflict.Kind != types.ConflictTrashed {
			t.Errorf("action %q: conflict kind = %q, want trashed", action, conflict.Kind)
		}
	}

	// 每次失败都回收了暂存 blob，磁盘上只剩回收站那一份
	if got := countDiskFiles(t, e, "docs"); got != 1 {
		t.Errorf("disk files in docs = %d, want 1", got)
	}

	if got := activeCount(t, e, "docs"); got != 0 {
		t.Errorf("active rows = %d, want 0", got)
	}
}

func TestUploadRejectsOversized(t *testing.T) {
	e := newTestEnvWithConfig(t, "server:\n  max_upload_mb: 1\n")

	content := bytes.Repeat([]byte("x"), 1<<20+1)

	_, err := e.svc.UploadSingleFile(e.ctx, "alice",
		newFileHeader(t, "big.bin", content), &types.UploadFileForm{})
	if !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	// 超限在落盘之前拒绝
	if got := countDiskFiles(t, e, ""); got != 0 {
		t.Errorf("disk files at root = %d, want 0", got)
	}
}

func TestUploadFilenameCarriesSubfolder(t *testing.T) {
	e := newTestEnv(t)

	resp, err := e.svc.UploadSingleFile(e.ctx, "alice",
		newFileHeader(t, "sub/nested.txt", bytes.Repeat([]byte("n"), 300)),
		&types.UploadFileForm{Folder: "docs"})
	if err != nil {
		t.Fatalf("upload with subfolder: %v", err)
	}

	if resp.File.Folder != "docs/sub" {
		t.Errorf("folder = %q, want docs/sub", resp.File.Folder)
	}

	if resp.File.OriginalName != "nested.txt" {
		t.Errorf("original name = %q, want nested.txt", resp.File.OriginalName)
	}

	// 祖先链全部建档并计入递归大小
	if got := folderSize(t, e, "docs/sub"); got != 300 {
		t.Errorf("docs/sub size = %d, want 300", got)
	}

	if got := folderSize(t, e, "docs"); got != 300 {
		t.Errorf("docs size = %d, want 300", got)
	}
}

func TestUploadRejectsTraversal(t *testing.T) {
	e := newTestEnv(t)

	var pathErr *types.InvalidPathError

	_, err := e.svc.UploadSingleFile(e.ctx, "alice",
		newFileHeader(t, "a.txt", []byte("x")), &types.UploadFileForm{Folder: "../evil"})
	if !errors.As(err, &pathErr) {
		t.Fatalf("folder traversal: expected invalid path error, got %v", err)
	}

	_, err = e.svc.UploadSingleFile(e.ctx, "alice",
		newFileHeader(t, "../evil.txt", []byte("x")), &types.UploadFileForm{})
	if !errors.As(err, &pathErr) {
		t.Fatalf("filename traversal: expected invalid path error, got %v", err)
	}
}

func TestBatchUploadRejectsWholeBatchOnConflict(t *testing.T) {
	e := newTestEnv(t)

	existing := mustUpload(t, e, "alice", "a.txt", "docs", []byte("old"))

	fhs := newBatchHeaders(t, []batchSpec{
		{name: "a.txt", content: []byte("new a")},
		{name: "b.txt", content: []byte("new b")},
	})

	_, err := e.svc.UploadBatchFiles(e.ctx, "alice", fhs, &types.BatchUploadForm{Folder: "docs"})

	var batch *types.BatchConflictError
	if !errors.As(err, &batch) {
		t.Fatalf("expected batch conflict error, got %v", err)
	}

	if len(batch.Active) != 1 || len(batch.Trashed) != 0 {
		t.Fatalf("conflicts = %d active / %d trashed, want 1/0", len(batch.Active), len(batch.Trashed))
	}

	if batch.Active[0].OriginalName != "a.txt" || batch.Active[0].ExistingID != existing.File.ID {
		t.Errorf("conflict = %+v, want a.txt vs %s", batch.Active[0], existing.File.ID)
	}

	// 无冲突的 b.txt 也不落库，暂存 blob 全部回收
	if got := activeCount(t, e, "docs"); got != 1 {
		t.Errorf("active rows = %d, want 1", got)
	}

	if got := countDiskFiles(t, e, "docs"); got != 1 {
		t.Errorf("disk files in docs = %d, want 1", got)
	}
}

func TestBatchUploadDetectsIntraBatchDuplicates(t *testing.T) {
	e := newTestEnv(t)

	fhs := newBatchHeaders(t, []batchSpec{
		{name: "c.txt", content: []byte("first")},
		{name: "c.txt", content: []byte("second")},
	})

	_, err := e.svc.UploadBatchFiles(e.ctx, "alice", fhs, &types.BatchUploadForm{Folder: "docs"})

	var batch *types.BatchConflictError
	if !errors.As(err, &batch) {
		t.Fatalf("expected batch conflict error, got %v", err)
	}

	if len(batch.Active) != 1 {
		t.Fatalf("active conflicts = %d, want 1", len(batch.Active))
	}

	// 批内重复没有已存在的记录可指
	if batch.Active[0].ExistingID != "" {
		t.Errorf("existing id = %q, want empty for intra-batch duplicate", batch.Active[0].ExistingID)
	}

	if got := activeCount(t, e, "docs"); got != 0 {
		t.Errorf("active rows = %d, want 0", got)
	}

	if got := countDiskFiles(t, e, "docs"); got != 0 {
		t.Errorf("disk files in docs = %d, want 0", got)
	}
}

func TestBatchUploadWithActionResolvesPerFile(t *testing.T) {
	e := newTestEnv(t)

	mustUpload(t, e, "alice", "a.txt", "docs", bytes.Repeat([]byte("o"), 100))

	fhs := newBatchHeaders(t, []batchSpec{
		{name: "a.txt", content: bytes.Repeat([]byte("a"), 200)},
		{name: "b.txt", content: bytes.Repeat([]byte("b"), 300)},
	})

	resp, err := e.svc.UploadBatchFiles(e.ctx, "alice", fhs,
		&types.BatchUploadForm{Folder: "docs", Action: "keep_both"})
	if err != nil {
		t.Fatalf("batch upload: %v", err)
	}

	if resp.Total != 2 || resp.Successful != 2 || resp.Failed != 0 {
		t.Fatalf("totals = %d/%d/%d, want 2/2/0", resp.Total, resp.Successful, resp.Failed)
	}

	names := make(map[string]bool, len(resp.Results))

	for _, r := range resp.Results {
		if !r.Success || r.File == nil {
			t.Fatalf("result %q failed: %s", r.OriginalName, r.Error)
		}

		names[r.File.OriginalName] = true
	}

	if !names["a (1).txt"] || !names["b.txt"] {
		t.Errorf("stored names = %v, want a (1).txt and b.txt", names)
	}

	if got := folderSize(t, e, "docs"); got != 600 {
		t.Errorf("folder size = %d, want 600", got)
	}
}

func TestBatchUploadTrashedFailsOnlyThatFile(t *testing.T) {
	e := newTestEnv(t)

	first := mustUpload(t, e, "alice", "a.txt", "docs", []byte("old"))
	if _, err := e.svc.SoftDeleteFile(e.ctx, "alice", first.File.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	fhs := newBatchHeaders(t, []batchSpec{
		{name: "a.txt", content: []byte("retry a")},
		{name: "b.txt", content: []byte("new b")},
	})

	// 指定 action 后逐文件处理，回收站冲突只放弃命中的那一个
	resp, err := e.svc.UploadBatchFiles(e.ctx, "alice", fhs,
		&types.BatchUploadForm{Folder: "docs", Action: "replace"})
	if err != nil {
		t.Fatalf("batch upload: %v", err)
	}

	if resp.Successful != 1 || resp.Failed != 1 {
		t.Fatalf("totals = %d ok / %d failed, want 1/1", resp.Successful, resp.Failed)
	}

	for _, r := range resp.Results {
		if r.OriginalName == "a.txt" && r.Success {
			t.Error("trashed name should have failed")
		}

		if r.OriginalName == "b.txt" && !r.Success {
			t.Errorf("b.txt failed: %s", r.Error)
		}
	}

	// 磁盘上只有回收站里的 a 和新的 b
	if got := countDiskFiles(t, e, "docs"); got != 2 {
		t.Errorf("disk files in docs = %d, want 2", got)
	}
}

func TestAbortUploadCleansAndIsIdempotent(t *testing.T) {
	e := newTestEnv(t)

	if _, err := e.blob.Save(e.ctx, "tmp/stale.bin", bytes.NewReader([]byte("partial"))); err != nil {
		t.Fatalf("stage blob: %v", err)
	}

	resp, err := e.svc.AbortUpload(e.ctx, &types.AbortUploadRequest{StoragePath: "tmp/stale.bin"})
	if err != nil {
		t.Fatalf("abort: %v", err)
	}

	if !resp.Cleaned {
		t.Error("cleaned should be true on first abort")
	}

	if blobExists(t, e, "tmp/stale.bin") {
		t.Error("staged blob still on disk")
	}

	// 未建档的空目录一并回收
	if _, err := os.Stat(filepath.Join(e.root, "tmp")); !os.IsNotExist(err) {
		t.Errorf("tmp dir should be pruned, stat err = %v", err)
	}

	again, err := e.svc.AbortUpload(e.ctx, &types.AbortUploadRequest{StoragePath: "tmp/stale.bin"})
	if err != nil {
		t.Fatalf("second abort: %v", err)
	}

	if again.Cleaned {
		t.Error("second abort should report nothing cleaned")
	}
}

func TestAbortUploadRefusesCommittedFile(t *testing.T) {
	e := newTestEnv(t)

	resp := mustUpload(t, e, "alice", "keep.txt", "docs", []byte("committed"))

	_, err := e.svc.AbortUpload(e.ctx, &types.AbortUploadRequest{StoragePath: resp.File.StoragePath})
	if !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	if !blobExists(t, e, resp.File.StoragePath) {
		t.Error("committed blob must survive abort attempt")
	}
}

func TestUploadCompensatesOnCatalogFailure(t *testing.T) {
	e := newTestEnv(t)

	mustUpload(t, e, "alice", "seed.txt", "docs", []byte("seed"))

	// 断开 files 表，blob 落盘后 catalog 一侧必然失败
	if err := e.gdb.Exec("DROP TABLE files").Error; err != nil {
		t.Fatalf("drop files table: %v", err)
	}

	_, err := e.svc.UploadSingleFile(e.ctx, "alice",
		newFileHeader(t, "report.pdf", []byte("v1")), &types.UploadFileForm{Folder: "docs/tmp"})

	var catErr *types.CatalogError
	if !errors.As(err, &catErr) {
		t.Fatalf("expected catalog error, got %v", err)
	}

	// 暂存 blob 已补偿删除，为它新建的 tmp 目录一并回收
	if _, statErr := os.Stat(filepath.Join(e.root, "docs", "tmp")); !os.IsNotExist(statErr) {
		t.Errorf("staging dir should be pruned, stat err = %v", statErr)
	}

	// 已建档的 docs 文件夹和种子文件不受波及
	if got := countDiskFiles(t, e, "docs"); got != 1 {
		t.Errorf("disk files in docs = %d, want 1", got)
	}
}
