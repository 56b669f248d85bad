package service_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Flapjacck/moxbox/pkg/configs"
	appctx "github.com/Flapjacck/moxbox/pkg/context"
	"github.com/Flapjacck/moxbox/pkg/internal/catalog"
	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/service"
	"github.com/Flapjacck/moxbox/pkg/internal/storage"
	"github.com/Flapjacck/moxbox/pkg/internal/storage/blob"
	"github.com/Flapjacck/moxbox/pkg/internal/storage/db"
	"github.com/Flapjacck/moxbox/pkg/internal/storage/kv"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

type env struct {
	ctx     context.Context
	svc     *service.FileService
	files   *catalog.FileRepo
	folders *catalog.FolderRepo
	blob    *blob.Client
	gdb     *gorm.DB
	root    string
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	return newTestEnvWithConfig(t, "")
}

// newTestEnvWithConfig 允许单个用例覆盖默认配置，configYAML 为空时
// 全部走默认值.
func newTestEnvWithConfig(t *testing.T, configYAML string) *env {
	t.Helper()

	confDir := t.TempDir()

	if configYAML != "" {
		if err := os.WriteFile(filepath.Join(confDir, "config.yaml"), []byte(configYAML), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}

	if err := configs.InitConfig(confDir); err != nil {
		t.Fatalf("init config: %v", err)
	}

	root := t.TempDir()

	blobClient, err := blob.NewAt(root)
	if err != nil {
		t.Fatalf("init blob store: %v", err)
	}

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}

	// 连接池必须收敛到 1，否则每个连接都是独立的 :memory: 库
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&model.File{}, &model.Folder{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	kvStore, err := kv.NewMemoryKV(context.Background(), nil)
	if err != nil {
		t.Fatalf("init memory kv: %v", err)
	}

	mgr := storage.NewTestManager(blobClient, &db.Client{DB: gdb}, &kv.Client{KVStore: kvStore})
	ctx := appctx.WithStorageManager(context.Background(), mgr)

	return &env{
		ctx:     ctx,
		svc:     service.NewFileService(ctx),
		files:   catalog.NewFileRepo(gdb),
		folders: catalog.NewFolderRepo(gdb),
		blob:    blobClient,
		gdb:     gdb,
		root:    root,
	}
}

// newFileHeader 通过 multipart 编解码往返构造一个 FileHeader.
func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}

	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}

	t.Cleanup(func() { _ = form.RemoveAll() })

	fhs := form.File["file"]
	if len(fhs) != 1 {
		t.Fatalf("expected 1 file header, got %d", len(fhs))
	}

	return fhs[0]
}

type batchSpec struct {
	name    string
	content []byte
}

// newBatchHeaders 构造批量上传的 FileHeader 列表，保持给定顺序.
func newBatchHeaders(t *testing.T, specs []batchSpec) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	for _, sp := range specs {
		fw, err := mw.CreateFormFile("files", sp.name)
		if err != nil {
			t.Fatalf("create form file %s: %v", sp.name, err)
		}

		if _, err := fw.Write(sp.content); err != nil {
			t.Fatalf("write form file %s: %v", sp.name, err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}

	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["files"]
}

func mustUpload(t *testing.T, e *env, owner, filename, folder string, content []byte) *types.UploadFileResponse {
	t.Helper()

	resp, err := e.svc.UploadSingleFile(e.ctx, owner, newFileHeader(t, filename, content), &types.UploadFileForm{Folder: folder})
	if err != nil {
		t.Fatalf("upload %s: %v", filename, err)
	}

	return resp
}

func folderSize(t *testing.T, e *env, path string) int64 {
	t.Helper()

	rec, err := e.folders.GetByPath(e.ctx, path)
	if err != nil {
		t.Fatalf("get folder %s: %v", path, err)
	}

	if rec == nil {
		t.Fatalf("folder %s is not tracked", path)
	}

	return rec.Size
}

func blobExists(t *testing.T, e *env, rel string) bool {
	t.Helper()

	_, err := e.blob.Stat(e.ctx, rel)
	if err == nil {
		return true
	}

	if errors.Is(err, types.ErrNotFound) {
		return false
	}

	t.Fatalf("stat %s: %v", rel, err)

	return false
}

// countDiskFiles 统计存储根下某目录里的普通文件数，目录不存在视为 0.
func countDiskFiles(t *testing.T, e *env, rel string) int {
	t.Helper()

	entries, err := os.ReadDir(filepath.Join(e.root, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return 0
	}

	if err != nil {
		t.Fatalf("read dir %s: %v", rel, err)
	}

	n := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			n++
		}
	}

	return n
}

// activeCount 统计文件夹内活动文件行数.
func activeCount(t *testing.T, e *env, folder string) int64 {
	t.Helper()

	_, total, err := e.files.List(e.ctx, catalog.ListQuery{Folder: &folder, Status: model.StatusActive})
	if err != nil {
		t.Fatalf("list %s: %v", folder, err)
	}

	return total
}
