package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/Flapjacck/moxbox/pkg/cache"
)

const (
	// DefaultMaxBodyBytes 超过该大小的响应体不进缓存.
	DefaultMaxBodyBytes = 1 << 20

	keyBuilderGrow = 64
	defaultTTL     = 30 * time.Second
	storeTimeout   = 5 * time.Second
)

// CacheConfig 响应缓存中间件配置.
type CacheConfig struct {
	// Cache 底层缓存实例，必填.
	Cache *appcache.Cache
	// TTL 缓存条目的默认存活时间.
	TTL time.Duration
	// TTLFunc 按请求与状态码动态计算 TTL，优先于 TTL.
	TTLFunc func(c *gin.Context, status int) time.Duration
	// Methods 允许缓存的请求方法.
	Methods []string
	// StatusCodes 允许缓存的响应状态码.
	StatusCodes []int
	// KeyFunc 自定义缓存键生成，默认按方法+路径+查询串.
	KeyFunc func(c *gin.Context) string
	// Skipper 返回 true 时跳过缓存.
	Skipper func(c *gin.Context) bool
	// VaryHeaders 参与缓存键计算的请求头.
	VaryHeaders []string
	// RespectCacheControl 为 true 时遵循响应的 Cache-Control.
	RespectCacheControl bool
	// BypassHeader 请求携带该头时绕过缓存.
	BypassHeader string
	// MaxBodyBytes 可缓存响应体上限，0 表示使用默认值.
	MaxBodyBytes int64
}

// DefaultCacheConfig 返回一份适合只读接口的默认配置.
func DefaultCacheConfig(c *appcache.Cache) CacheConfig {
	return CacheConfig{
		Cache:        c,
		TTL:          defaultTTL,
		Methods:      []string{http.MethodGet, http.MethodHead},
		StatusCodes:  []int{http.StatusOK},
		BypassHeader: "X-Cache-Bypass",
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// cachedResponse 序列化后的响应快照，json 标签刻意压短以省缓存空间.
type cachedResponse struct {
	Status   int               `json:"s"`
	Header   map[string]string `json:"h,omitempty"`
	Body     []byte            `json:"b,omitempty"`
	ETag     string            `json:"e,omitempty"`
	StoredAt int64             `json:"t"`
}

// CacheMiddleware 缓存只读请求的响应，命中时直接回放.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("middleware: cache middleware requires a non-nil cache")
	}

	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if len(cfg.Methods) == 0 {
		cfg.Methods = []string{http.MethodGet, http.MethodHead}
	}
	if len(cfg.StatusCodes) == 0 {
		cfg.StatusCodes = []int{http.StatusOK}
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	methods := make(map[string]struct{}, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods[strings.ToUpper(m)] = struct{}{}
	}

	statuses := make(map[int]struct{}, len(cfg.StatusCodes))
	for _, s := range cfg.StatusCodes {
		statuses[s] = struct{}{}
	}

	keyFn := cfg.KeyFunc
	if keyFn == nil {
		keyFn = func(c *gin.Context) string { return requestKey(c, cfg.VaryHeaders) }
	}

	return func(c *gin.Context) {
		if _, ok := methods[c.Request.Method]; !ok {
			c.Next()
			return
		}

		if skipCache(c, cfg) {
			c.Header("X-Cache", "BYPASS")
			c.Next()

			return
		}

		key := keyFn(c)
		if serveCached(c, cfg, key) {
			return
		}

		c.Header("X-Cache", "MISS")

		writer := &captureWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
			max:            cfg.MaxBodyBytes,
		}
		c.Writer = writer

		c.Next()

		storeResponse(c, cfg, key, statuses, writer)
	}
}

// skipCache 判断本次请求是否跳过缓存.
func skipCache(c *gin.Context, cfg CacheConfig) bool {
	if cfg.Skipper != nil && cfg.Skipper(c) {
		return true
	}

	return cfg.BypassHeader != "" && c.GetHeader(cfg.BypassHeader) != ""
}

// requestKey 以方法、路由模板、规范化查询串与 Vary 头生成缓存键.
// url.Values.Encode 已按键名排序，同一请求不同参数顺序落到同一条目.
func requestKey(c *gin.Context, varyHeaders []string) string {
	var b strings.Builder

	b.Grow(keyBuilderGrow)
	b.WriteString(c.Request.Method)
	b.WriteByte(':')

	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	b.WriteString(path)

	if enc := c.Request.URL.Query().Encode(); enc != "" {
		b.WriteByte('?')
		b.WriteString(enc)
	}

	if len(varyHeaders) > 0 {
		vary := slices.Clone(varyHeaders)
		slices.Sort(vary)

		for _, h := range vary {
			b.WriteByte('|')
			b.WriteString(h)
			b.WriteByte('=')
			b.WriteString(c.GetHeader(h))
		}
	}

	// 命名空间前缀由缓存实例负责，这里只出哈希
	return fmt.Sprintf("%x", xxhash.Sum64String(b.String()))
}

// serveCached 尝试用缓存条目响应请求，命中返回 true.
func serveCached(c *gin.Context, cfg CacheConfig, key string) bool {
	entry, err := appcache.Get[cachedResponse](c.Request.Context(), cfg.Cache, key)
	if err != nil {
		return false
	}

	if entry.ETag != "" && c.GetHeader("If-None-Match") == entry.ETag {
		c.Header("ETag", entry.ETag)
		c.Header("X-Cache", "HIT")
		c.AbortWithStatus(http.StatusNotModified)

		return true
	}

	for k, v := range entry.Header {
		c.Header(k, v)
	}

	if entry.ETag != "" {
		c.Header("ETag", entry.ETag)
	}

	age := max(time.Now().Unix()-entry.StoredAt, 0)
	c.Header("Age", strconv.FormatInt(age, 10))
	c.Header("X-Cache", "HIT")

	if c.Request.Method == http.MethodHead {
		c.Status(entry.Status)
		c.Abort()

		return true
	}

	c.Data(entry.Status, entry.Header["Content-Type"], entry.Body)
	c.Abort()

	return true
}

// parseCacheControlTTL 解析响应 Cache-Control，返回覆盖 TTL 与是否可缓存.
func parseCacheControlTTL(header string) (time.Duration, bool) {
	if header == "" {
		return 0, true
	}

	var maxAge time.Duration

	for _, directive := range strings.Split(header, ",") {
		directive = strings.ToLower(strings.TrimSpace(directive))

		switch {
		case directive == "no-store", directive == "no-cache", directive == "private":
			return 0, false
		case strings.HasPrefix(directive, "max-age="):
			if seconds, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age=")); err == nil && seconds > 0 {
				maxAge = time.Duration(seconds) * time.Second
			}
		}
	}

	return maxAge, true
}

// storeResponse 在响应完成后决定是否写入缓存.
func storeResponse(c *gin.Context, cfg CacheConfig, key string, statuses map[int]struct{}, writer *captureWriter) {
	status := c.Writer.Status()
	if _, ok := statuses[status]; !ok {
		return
	}

	if writer.overflow {
		return
	}

	ttl := cfg.TTL
	if cfg.TTLFunc != nil {
		ttl = cfg.TTLFunc(c, status)
	}

	if cfg.RespectCacheControl {
		ccTTL, cacheable := parseCacheControlTTL(c.Writer.Header().Get("Cache-Control"))
		if !cacheable {
			return
		}
		if ccTTL > 0 {
			ttl = ccTTL
		}
	}

	if ttl <= 0 {
		return
	}

	body := writer.body.Bytes()

	etag := c.Writer.Header().Get("ETag")
	if etag == "" {
		etag = fmt.Sprintf("%q", fmt.Sprintf("%x", xxhash.Sum64(body)))
		c.Header("ETag", etag)
	}

	header := make(map[string]string, len(c.Writer.Header()))
	for k, v := range c.Writer.Header() {
		if len(v) == 0 || k == "Set-Cookie" || k == "X-Cache" {
			continue
		}
		header[k] = v[0]
	}

	entry := cachedResponse{
		Status:   status,
		Header:   header,
		Body:     append([]byte(nil), body...),
		ETag:     etag,
		StoredAt: time.Now().Unix(),
	}

	// 请求上下文随响应结束而取消，存储要用独立上下文
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		_ = appcache.Set(ctx, cfg.Cache, key, entry, ttl)
	}()
}

// captureWriter 镜像响应体到内存缓冲，超限后停止复制并标记溢出.
type captureWriter struct {
	gin.ResponseWriter

	body     *bytes.Buffer
	max      int64
	overflow bool
}

func (w *captureWriter) Write(data []byte) (int, error) {
	w.capture(data)

	return w.ResponseWriter.Write(data)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))

	return w.ResponseWriter.WriteString(s)
}

func (w *captureWriter) capture(data []byte) {
	if w.overflow {
		return
	}

	if int64(w.body.Len())+int64(len(data)) > w.max {
		w.overflow = true
		w.body.Reset()

		return
	}

	w.body.Write(data)
}
