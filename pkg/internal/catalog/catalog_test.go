package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Flapjacck/moxbox/pkg/internal/catalog"
	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

// newTestDB 打开单连接的内存 sqlite 并建表.
// 连接池必须压到 1，否则每个连接各自持有一份独立的 :memory: 库.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.File{}, &model.Folder{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func newRepos(t *testing.T) (*catalog.FileRepo, *catalog.FolderRepo, *catalog.Aggregator) {
	t.Helper()

	db := newTestDB(t)
	files := catalog.NewFileRepo(db)
	folders := catalog.NewFolderRepo(db)

	return files, folders, catalog.NewAggregator(files, folders)
}

// seedFile 以给定显示名、文件夹、大小和状态插入一条文件记录.
func seedFile(t *testing.T, repo *catalog.FileRepo, name, folder string, size int64, status string) *model.File {
	t.Helper()

	stored := catalog.NewID() + ".bin"
	sp := stored
	if folder != "" {
		sp = folder + "/" + stored
	}

	f := &model.File{
		OriginalName: name,
		StoredName:   stored,
		MimeType:     "application/octet-stream",
		Size:         size,
		StoragePath:  sp,
		OwnerID:      "alice@example.com",
		Status:       status,
	}

	if err := repo.Create(context.Background(), f); err != nil {
		t.Fatalf("seed file %q: %v", name, err)
	}

	return f
}

func TestCreateAndGet(t *testing.T) {
	files, _, _ := newRepos(t)
	ctx := context.Background()

	f := seedFile(t, files, "report.pdf", "docs", 1000, model.StatusActive)
	if f.ID == "" {
		t.Fatal("expected generated ULID")
	}

	got, err := files.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.OriginalName != "report.pdf" || got.StoragePath != f.StoragePath {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set on create")
	}

	byStored, err := files.GetByStoredName(ctx, f.StoredName)
	if err != nil {
		t.Fatalf("GetByStoredName: %v", err)
	}
	if byStored.ID != f.ID {
		t.Errorf("stored name lookup got %q, want %q", byStored.ID, f.ID)
	}

	if _, err := files.GetByID(ctx, "01AN4Z07BY79KA1307SR9X4MV3"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("missing id should be ErrNotFound, got %v", err)
	}
}

func TestListOrderingAndFilters(t *testing.T) {
	files, _, _ := newRepos(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	oldest := seedFile(t, files, "a.txt", "", 1, model.StatusActive)
	mid := seedFile(t, files, "b.txt", "docs", 2, model.StatusActive)
	newest := seedFile(t, files, "c.txt", "docs", 3, model.StatusDeleted)

	for i, f := range []*model.File{oldest, mid, newest} {
		newTestSetCreatedAt(t, files, f.ID, base.Add(time.Duration(i)*time.Minute))
	}

	all, total, err := files.List(ctx, catalog.ListQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("expected 3 files, got total=%d len=%d", total, len(all))
	}
	if all[0].ID != newest.ID || all[2].ID != oldest.ID {
		t.Errorf("expected newest-first ordering, got %q first", all[0].OriginalName)
	}

	active, _, err := files.List(ctx, catalog.ListQuery{Status: model.StatusActive})
	if err != nil {
		t.Fatalf("List active: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("expected 2 active files, got %d", len(active))
	}

	root := ""
	inRoot, _, err := files.List(ctx, catalog.ListQuery{Folder: &root})
	if err != nil {
		t.Fatalf("List root: %v", err)
	}
	if len(inRoot) != 1 || inRoot[0].ID != oldest.ID {
		t.Errorf("expected only the root file, got %d entries", len(inRoot))
	}

	docs := "docs"
	paged, pagedTotal, err := files.List(ctx, catalog.ListQuery{Folder: &docs, Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("List paged: %v", err)
	}
	if pagedTotal != 2 || len(paged) != 1 {
		t.Errorf("expected total=2 page of 1, got total=%d len=%d", pagedTotal, len(paged))
	}
}

// newTestSetCreatedAt 直接改写 created_at，构造可断言的列表顺序.
func newTestSetCreatedAt(t *testing.T, repo *catalog.FileRepo, id string, at time.Time) {
	t.Helper()

	if _, err := repo.Update(context.Background(), id, map[string]any{"created_at": at}); err != nil {
		t.Fatalf("set created_at: %v", err)
	}
}

func TestFolderScopeEscapesLikeWildcards(t *testing.T) {
	files, _, agg := newRepos(t)
	ctx := context.Background()

	inUnderscore := seedFile(t, files, "a.txt", "my_docs", 10, model.StatusActive)
	seedFile(t, files, "a.txt", "myxdocs", 20, model.StatusActive)

	// "_" 是 LIKE 的单字符通配符，未转义时 my_docs 会吞掉 myxdocs 的文件
	docs := "my_docs"
	got, _, err := files.List(ctx, catalog.ListQuery{Folder: &docs})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != inUnderscore.ID {
		t.Fatalf("expected exactly the my_docs file, got %d entries", len(got))
	}

	hit, err := files.GetActiveByNameAndFolder(ctx, "a.txt", "my_docs", "")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if hit == nil || hit.ID != inUnderscore.ID {
		t.Error("expected name probe to match only the my_docs file")
	}

	size, err := agg.CalculateFromFiles(ctx, "my_docs")
	if err != nil {
		t.Fatalf("CalculateFromFiles: %v", err)
	}
	if size != 10 {
		t.Errorf("expected my_docs to sum 10 bytes, got %d", size)
	}
}

func TestNameProbes(t *testing.T) {
	files, _, _ := newRepos(t)
	ctx := context.Background()

	activeF := seedFile(t, files, "report.pdf", "docs", 100, model.StatusActive)
	deletedF := seedFile(t, files, "old.pdf", "docs", 50, model.StatusDeleted)
	nested := seedFile(t, files, "deep.pdf", "docs/sub", 30, model.StatusActive)

	hit, err := files.GetActiveByNameAndFolder(ctx, "report.pdf", "docs", "")
	if err != nil {
		t.Fatalf("active probe: %v", err)
	}
	if hit == nil || hit.ID != activeF.ID {
		t.Fatal("expected active probe to hit")
	}

	// 排除自身后不再命中
	if hit, err = files.GetActiveByNameAndFolder(ctx, "report.pdf", "docs", activeF.ID); err != nil || hit != nil {
		t.Errorf("expected excludeID to suppress self match, got %v %v", hit, err)
	}

	// 回收站文件不算活动冲突，反之亦然
	if hit, err = files.GetActiveByNameAndFolder(ctx, "old.pdf", "docs", ""); err != nil || hit != nil {
		t.Errorf("deleted file must not hit active probe, got %v %v", hit, err)
	}

	trashed, err := files.GetDeletedByNameAndFolder(ctx, "old.pdf", "docs")
	if err != nil {
		t.Fatalf("deleted probe: %v", err)
	}
	if trashed == nil || trashed.ID != deletedF.ID {
		t.Fatal("expected deleted probe to hit")
	}

	// 归属判定只看直接父级，子文件夹里的同名文件不会命中上层探测
	if hit, err = files.GetActiveByNameAndFolder(ctx, "deep.pdf", "docs", ""); err != nil || hit != nil {
		t.Errorf("nested file must not hit parent folder probe, got %v %v", hit, err)
	}

	inSub, err := files.GetActiveByNameAndFolder(ctx, "deep.pdf", "docs/sub", "")
	if err != nil {
		t.Fatalf("nested probe: %v", err)
	}
	if inSub == nil || inSub.ID != nested.ID {
		t.Error("expected probe in the owning folder to hit")
	}

	if hit, err = files.GetActiveByNameAndFolder(ctx, "report.pdf", "other", ""); err != nil || hit != nil {
		t.Errorf("unrelated folder should miss, got %v %v", hit, err)
	}
}

func TestGenerateUniqueNameInFolder(t *testing.T) {
	files, _, _ := newRepos(t)
	ctx := context.Background()

	seedFile(t, files, "report.pdf", "docs", 100, model.StatusActive)

	name, err := files.GenerateUniqueNameInFolder(ctx, "report.pdf", "docs")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if name != "report (1).pdf" {
		t.Errorf("expected %q, got %q", "report (1).pdf", name)
	}

	seedFile(t, files, "report (1).pdf", "docs", 100, model.StatusActive)
	// 回收站里占着 "report (2).pdf" 不阻止复用，判定只看活动文件
	seedFile(t, files, "report (2).pdf", "docs", 100, model.StatusDeleted)

	name, err = files.GenerateUniqueNameInFolder(ctx, "report.pdf", "docs")
	if err != nil {
		t.Fatalf("generate second: %v", err)
	}
	if name != "report (2).pdf" {
		t.Errorf("expected %q, got %q", "report (2).pdf", name)
	}

	name, err = files.GenerateUniqueNameInFolder(ctx, "archive.tar.gz", "docs")
	if err != nil {
		t.Fatalf("generate multi-ext: %v", err)
	}
	if name != "archive.tar (1).gz" {
		t.Errorf("expected suffix before last extension, got %q", name)
	}

	name, err = files.GenerateUniqueNameInFolder(ctx, "notes", "docs")
	if err != nil {
		t.Fatalf("generate no-ext: %v", err)
	}
	if name != "notes (1)" {
		t.Errorf("expected %q, got %q", "notes (1)", name)
	}
}

func TestStatusTransitions(t *testing.T) {
	files, _, _ := newRepos(t)
	ctx := context.Background()

	f := seedFile(t, files, "report.pdf", "docs", 100, model.StatusActive)

	created, err := files.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	deleted, err := files.MarkDeleted(ctx, f.ID)
	if err != nil {
		t.Fatalf("MarkDeleted: %v", err)
	}
	if deleted.Status != model.StatusDeleted || !deleted.IsDeleted() {
		t.Errorf("expected deleted status, got %q", deleted.Status)
	}
	if deleted.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("expected updated_at to be refreshed")
	}

	restored, err := files.Restore(ctx, f.ID)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Status != model.StatusActive {
		t.Errorf("expected active status, got %q", restored.Status)
	}

	if _, err := files.MarkDeleted(ctx, "missing"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestDeletePermanent(t *testing.T) {
	files, _, _ := newRepos(t)
	ctx := context.Background()

	f := seedFile(t, files, "report.pdf", "docs", 100, model.StatusDeleted)

	sp, err := files.DeletePermanent(ctx, f.ID)
	if err != nil {
		t.Fatalf("DeletePermanent: %v", err)
	}
	if sp != f.StoragePath {
		t.Errorf("expected storage path %q, got %q", f.StoragePath, sp)
	}

	if _, err := files.GetByID(ctx, f.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("row should be gone, got %v", err)
	}

	if _, err := files.DeletePermanent(ctx, f.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("second purge should be ErrNotFound, got %v", err)
	}
}

func TestBumpAccess(t *testing.T) {
	files, _, _ := newRepos(t)
	ctx := context.Background()

	f := seedFile(t, files, "report.pdf", "", 100, model.StatusActive)

	before, err := files.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if err := files.BumpAccess(ctx, f.ID); err != nil {
		t.Fatalf("BumpAccess: %v", err)
	}
	if err := files.BumpAccess(ctx, f.ID); err != nil {
		t.Fatalf("BumpAccess second: %v", err)
	}

	got, err := files.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AccessCount != 2 {
		t.Errorf("expected access count 2, got %d", got.AccessCount)
	}
	if got.LastAccessed == nil {
		t.Error("expected last_accessed to be set")
	}
	// 遥测更新不应扰动 updated_at
	if !got.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("expected updated_at untouched, %v != %v", got.UpdatedAt, before.UpdatedAt)
	}

	if err := files.BumpAccess(ctx, "missing"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFolderGetOrCreateIdempotent(t *testing.T) {
	_, folders, _ := newRepos(t)
	ctx := context.Background()

	first, err := folders.GetOrCreate(ctx, "docs/sub", "alice@example.com")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	second, err := folders.GetOrCreate(ctx, "docs/sub", "bob@example.com")
	if err != nil {
		t.Fatalf("GetOrCreate repeat: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same record, got %q and %q", first.ID, second.ID)
	}
	if second.OwnerID != "alice@example.com" {
		t.Errorf("repeat upsert must not steal ownership, got %q", second.OwnerID)
	}

	missing, err := folders.GetByPath(ctx, "docs")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if missing != nil {
		t.Error("parent must not be created implicitly")
	}

	if _, err := folders.GetOrCreate(ctx, "", "alice@example.com"); err == nil {
		t.Error("root folder must not be trackable")
	}
}

func TestFolderSizeAndDelete(t *testing.T) {
	_, folders, _ := newRepos(t)
	ctx := context.Background()

	f, err := folders.GetOrCreate(ctx, "docs", "alice@example.com")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if err := folders.UpdateSize(ctx, f.ID, -5); err != nil {
		t.Fatalf("UpdateSize: %v", err)
	}

	got, err := folders.GetByPath(ctx, "docs")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if got.Size != 0 {
		t.Errorf("negative size must clamp to 0, got %d", got.Size)
	}

	if err := folders.DeleteByPath(ctx, "docs"); err != nil {
		t.Fatalf("DeleteByPath: %v", err)
	}
	if err := folders.DeleteByPath(ctx, "docs"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestRecalculateUntrackedFolder(t *testing.T) {
	_, _, agg := newRepos(t)

	size, tracked, err := agg.Recalculate(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if tracked || size != 0 {
		t.Errorf("untracked folder should report (0, false), got (%d, %v)", size, tracked)
	}
}

func TestRecalculateCountsTrashedFiles(t *testing.T) {
	files, folders, agg := newRepos(t)
	ctx := context.Background()

	if _, err := folders.GetOrCreate(ctx, "docs", "alice@example.com"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	seedFile(t, files, "a.pdf", "docs", 100, model.StatusActive)
	seedFile(t, files, "b.pdf", "docs", 50, model.StatusDeleted)
	seedFile(t, files, "c.pdf", "docs/sub", 30, model.StatusActive)

	size, tracked, err := agg.Recalculate(ctx, "docs")
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if !tracked {
		t.Fatal("expected folder to be tracked")
	}
	// 回收站文件与子层级文件都占空间
	if size != 180 {
		t.Errorf("expected 180 bytes, got %d", size)
	}

	got, err := folders.GetByPath(ctx, "docs")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if got.Size != 180 {
		t.Errorf("cached size not persisted, got %d", got.Size)
	}
}

func TestEnsureAndRecalculateCreatesChain(t *testing.T) {
	files, folders, agg := newRepos(t)
	ctx := context.Background()

	seedFile(t, files, "deep.bin", "a/b/c", 10, model.StatusActive)
	seedFile(t, files, "top.bin", "a", 5, model.StatusActive)

	if err := agg.EnsureAndRecalculate(ctx, "a/b/c", "alice@example.com"); err != nil {
		t.Fatalf("EnsureAndRecalculate: %v", err)
	}

	want := map[string]int64{"a": 15, "a/b": 10, "a/b/c": 10}
	for path, bytes := range want {
		rec, err := folders.GetByPath(ctx, path)
		if err != nil {
			t.Fatalf("GetByPath %q: %v", path, err)
		}
		if rec == nil {
			t.Fatalf("expected folder %q to be lazily created", path)
		}
		if rec.Size != bytes {
			t.Errorf("folder %q: expected %d bytes, got %d", path, bytes, rec.Size)
		}
		if rec.OwnerID != "alice@example.com" {
			t.Errorf("folder %q: owner not inherited, got %q", path, rec.OwnerID)
		}
	}

	// 重复执行幂等
	if err := agg.EnsureAndRecalculate(ctx, "a/b/c", "alice@example.com"); err != nil {
		t.Fatalf("EnsureAndRecalculate repeat: %v", err)
	}
}

func TestTotalsByStatusAndFolderCount(t *testing.T) {
	files, folders, _ := newRepos(t)
	ctx := context.Background()

	seedFile(t, files, "a.pdf", "", 100, model.StatusActive)
	seedFile(t, files, "b.pdf", "", 200, model.StatusActive)
	seedFile(t, files, "c.pdf", "", 50, model.StatusDeleted)

	totals, err := files.TotalsByStatus(ctx, "")
	if err != nil {
		t.Fatalf("TotalsByStatus: %v", err)
	}

	byStatus := make(map[string]catalog.StatusTotal, len(totals))
	for _, tt := range totals {
		byStatus[tt.Status] = tt
	}
	if got := byStatus[model.StatusActive]; got.Count != 2 || got.Bytes != 300 {
		t.Errorf("active totals wrong: %+v", got)
	}
	if got := byStatus[model.StatusDeleted]; got.Count != 1 || got.Bytes != 50 {
		t.Errorf("deleted totals wrong: %+v", got)
	}

	if _, err := folders.GetOrCreate(ctx, "docs", "alice@example.com"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	n, err := folders.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 folder, got %d", n)
	}
}

func TestListByPrefix(t *testing.T) {
	files, folders, _ := newRepos(t)
	ctx := context.Background()

	seedFile(t, files, "a.txt", "docs", 1, model.StatusActive)
	seedFile(t, files, "b.txt", "docs/sub", 1, model.StatusDeleted)
	seedFile(t, files, "c.txt", "docs2", 1, model.StatusActive)

	got, err := files.ListByPrefix(ctx, "docs")
	if err != nil {
		t.Fatalf("ListByPrefix files: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 files under docs, got %d", len(got))
	}

	for _, p := range []string{"docs", "docs/sub", "docs2"} {
		if _, err := folders.GetOrCreate(ctx, p, "alice@example.com"); err != nil {
			t.Fatalf("GetOrCreate %q: %v", p, err)
		}
	}

	sub, err := folders.ListByPrefix(ctx, "docs")
	if err != nil {
		t.Fatalf("ListByPrefix folders: %v", err)
	}
	if len(sub) != 2 {
		t.Errorf("expected docs and docs/sub, got %d records", len(sub))
	}
}
