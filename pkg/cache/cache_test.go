package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Flapjacck/moxbox/pkg/cache"
	"github.com/Flapjacck/moxbox/pkg/internal/storage/kv"
)

// folderStats 测试用的文件夹统计结构体.
type folderStats struct {
	Path      string `json:"path"`
	FileCount int    `json:"file_count"`
	Bytes     int64  `json:"bytes"`
}

// newCache 在真实的内存 KV 后端上创建缓存，返回底层 store 便于
// 直接操纵原始字节.
func newCache(t *testing.T) (*cache.Cache, kv.KVStore) {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return cache.NewCache(store), store
}

// TestCacheRoundTrip 测试 Set/Get 往返与未命中哨兵的透传.
func TestCacheRoundTrip(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	if _, err := cache.Get[folderStats](ctx, c, "stats:nonexistent"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("miss error = %v, want ErrKeyNotFound", err)
	}

	stats := folderStats{Path: "docs", FileCount: 12, Bytes: 4096}

	if err := cache.Set(ctx, c, "stats:docs", stats, 0); err != nil {
		t.Fatalf("set cache: %v", err)
	}

	got, err := cache.Get[folderStats](ctx, c, "stats:docs")
	if err != nil {
		t.Fatalf("get cache: %v", err)
	}

	if got != stats {
		t.Errorf("got %+v, want %+v", got, stats)
	}
}

// TestCacheDeleteAndExists 测试 Delete 与 Exists.
func TestCacheDeleteAndExists(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	exists, err := c.Exists(ctx, "stats:photos")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}

	if exists {
		t.Error("key should not exist yet")
	}

	stats := folderStats{Path: "photos", FileCount: 3, Bytes: 1500}

	if err := cache.Set(ctx, c, "stats:photos", stats, 0); err != nil {
		t.Fatalf("set cache: %v", err)
	}

	exists, err = c.Exists(ctx, "stats:photos")
	if err != nil || !exists {
		t.Fatalf("exists after set = %v, %v", exists, err)
	}

	if err := c.Delete(ctx, "stats:photos"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	exists, err = c.Exists(ctx, "stats:photos")
	if err != nil {
		t.Fatalf("exists after delete: %v", err)
	}

	if exists {
		t.Error("key should not exist after deletion")
	}
}

// TestCorruptEntryEvicted 测试反序列化失败的条目被顺手删除.
func TestCorruptEntryEvicted(t *testing.T) {
	c, store := newCache(t)
	ctx := context.Background()

	if err := store.Set(ctx, "stats:broken", []byte("{not json"), 0); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	if _, err := cache.Get[folderStats](ctx, c, "stats:broken"); err == nil {
		t.Fatal("expected unmarshal error")
	}

	exists, err := store.Exists(ctx, "stats:broken")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}

	if exists {
		t.Error("corrupt entry should have been evicted")
	}
}

// TestGetOrSet 测试 GetOrSet 只计算一次.
func TestGetOrSet(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	callCount := 0
	getter := func() (folderStats, error) {
		callCount++
		return folderStats{Path: "archive", FileCount: 7, Bytes: 9000}, nil
	}

	first, err := cache.GetOrSet(ctx, c, "stats:archive", getter, 0)
	if err != nil {
		t.Fatalf("get or set: %v", err)
	}

	if callCount != 1 {
		t.Errorf("getter calls = %d, want 1", callCount)
	}

	second, err := cache.GetOrSet(ctx, c, "stats:archive", getter, 0)
	if err != nil {
		t.Fatalf("get or set: %v", err)
	}

	if callCount != 1 {
		t.Errorf("getter calls after cache hit = %d, want 1", callCount)
	}

	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

// TestGetOrSetGetterError 测试 getter 出错时错误原样返回.
func TestGetOrSetGetterError(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	getter := func() (folderStats, error) {
		return folderStats{}, errors.New("getter error")
	}

	_, err := cache.GetOrSet(ctx, c, "stats:error", getter, 0)
	if err == nil {
		t.Fatal("expected error from getter")
	}

	if err.Error() != "getter error" {
		t.Errorf("err = %q, want 'getter error'", err.Error())
	}
}

// TestNamespaceIsolation 测试带前缀的缓存互不可见，Clear 只清扫
// 自己的命名空间.
func TestNamespaceIsolation(t *testing.T) {
	_, store := newCache(t)
	ctx := context.Background()

	statsCache := cache.NewNamespaced(store, "stats:")
	respCache := cache.NewNamespaced(store, "rc:")

	docs := folderStats{Path: "docs", FileCount: 2, Bytes: 100}

	if err := cache.Set(ctx, statsCache, "docs", docs, 0); err != nil {
		t.Fatalf("set stats entry: %v", err)
	}

	if err := cache.Set(ctx, respCache, "docs", "cached body", 0); err != nil {
		t.Fatalf("set response entry: %v", err)
	}

	// 同名键落在不同前缀下，互不覆盖
	got, err := cache.Get[folderStats](ctx, statsCache, "docs")
	if err != nil || got != docs {
		t.Fatalf("stats entry = %+v, %v", got, err)
	}

	if err := statsCache.Clear(ctx); err != nil {
		t.Fatalf("clear stats namespace: %v", err)
	}

	if exists, _ := statsCache.Exists(ctx, "docs"); exists {
		t.Error("stats entry should be gone after clear")
	}

	if exists, _ := respCache.Exists(ctx, "docs"); !exists {
		t.Error("response entry should survive a stats clear")
	}
}

// TestCacheGenericTypes 测试缓存对不同数据类型的支持.
func TestCacheGenericTypes(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, c, "path:latest", "docs/report.pdf", 0); err != nil {
		t.Fatalf("set string: %v", err)
	}

	str, err := cache.Get[string](ctx, c, "path:latest")
	if err != nil {
		t.Fatalf("get string: %v", err)
	}

	if str != "docs/report.pdf" {
		t.Errorf("got %q", str)
	}

	paths := []string{"docs", "docs/reports", "photos"}

	if err := cache.Set(ctx, c, "folders:all", paths, 0); err != nil {
		t.Fatalf("set slice: %v", err)
	}

	got, err := cache.Get[[]string](ctx, c, "folders:all")
	if err != nil {
		t.Fatalf("get slice: %v", err)
	}

	if len(got) != len(paths) {
		t.Fatalf("slice length = %d, want %d", len(got), len(paths))
	}

	for i, v := range paths {
		if got[i] != v {
			t.Errorf("element %d = %s, want %s", i, got[i], v)
		}
	}
}
