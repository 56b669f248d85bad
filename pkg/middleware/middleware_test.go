package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/configs"
	"github.com/Flapjacck/moxbox/pkg/log"
	"github.com/Flapjacck/moxbox/pkg/middleware"
)

func init() {
	// 日志初始化会按配置重置 gin 模式，先触发它再固定 test 模式
	log.Init()
	gin.SetMode(gin.TestMode)
}

// newAuthRouter 挂上认证中间件，handler 回显解析出的身份.
func newAuthRouter(conf configs.AuthConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.AuthMiddleware(conf))
	r.GET("/api/v1/files", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.AuthUserKey))
	})
	r.GET("/api/v1/health/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func doGet(r *gin.Engine, target string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	r.ServeHTTP(w, req)

	return w
}

// TestAuthRejectsAnonymous 验证开启认证后无身份请求返回 401.
func TestAuthRejectsAnonymous(t *testing.T) {
	r := newAuthRouter(configs.AuthConfig{Enabled: true})

	if w := doGet(r, "/api/v1/files", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestAuthAcceptsProxyHeaders 验证两种代理身份头都被接受并写入上下文.
func TestAuthAcceptsProxyHeaders(t *testing.T) {
	r := newAuthRouter(configs.AuthConfig{Enabled: true})

	for _, header := range []string{"X-Auth-Request-Email", "X-Forwarded-Email"} {
		w := doGet(r, "/api/v1/files", map[string]string{header: "u@example.com"})

		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", header, w.Code, http.StatusOK)
		}

		if got := w.Body.String(); got != "u@example.com" {
			t.Errorf("%s: identity = %q, want u@example.com", header, got)
		}
	}
}

// TestAuthSkipPaths 验证跳过清单按前缀放行.
func TestAuthSkipPaths(t *testing.T) {
	r := newAuthRouter(configs.AuthConfig{Enabled: true, SkipPaths: []string{"/api/v1/health", "  "}})

	if w := doGet(r, "/api/v1/health/live", nil); w.Code != http.StatusOK {
		t.Errorf("skip path status = %d, want %d", w.Code, http.StatusOK)
	}

	if w := doGet(r, "/api/v1/files", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("non-skip path status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestAuthDevQueryFallback 验证 ?user= 兜底仅在开发开关打开时生效.
func TestAuthDevQueryFallback(t *testing.T) {
	allowed := newAuthRouter(configs.AuthConfig{Enabled: true, DevAllowQuery: true})
	if w := doGet(allowed, "/api/v1/files?user=dev@example.com", nil); w.Code != http.StatusOK {
		t.Errorf("dev query status = %d, want %d", w.Code, http.StatusOK)
	}

	denied := newAuthRouter(configs.AuthConfig{Enabled: true, DevAllowQuery: false})
	if w := doGet(denied, "/api/v1/files?user=dev@example.com", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("query without dev flag status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestAuthDisabledPassthrough 验证认证关闭时请求原样通过.
func TestAuthDisabledPassthrough(t *testing.T) {
	r := newAuthRouter(configs.AuthConfig{Enabled: false})

	if w := doGet(r, "/api/v1/files", nil); w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func newRateLimitRouter(cfg configs.RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RateLimitMiddleware(cfg))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

// TestRateLimitBurstExhaustion 验证突发额度耗尽后返回 429 与 Retry-After.
func TestRateLimitBurstExhaustion(t *testing.T) {
	r := newRateLimitRouter(configs.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2, Key: "global"})

	for i := range 2 {
		if w := doGet(r, "/ping", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	w := doGet(r, "/ping", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	sec, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || sec < 1 {
		t.Errorf("Retry-After = %q, want a positive number of seconds", w.Header().Get("Retry-After"))
	}
}

// TestRateLimitZeroBurst 验证 burst 为 0 时所有请求都被拒绝.
func TestRateLimitZeroBurst(t *testing.T) {
	r := newRateLimitRouter(configs.RateLimitConfig{Enabled: true, RPS: 5, Burst: 0, Key: "global"})

	if w := doGet(r, "/ping", nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}

// TestRateLimitPerHeaderKey 验证按请求头限流时各键互不影响.
func TestRateLimitPerHeaderKey(t *testing.T) {
	r := newRateLimitRouter(configs.RateLimitConfig{
		Enabled: true, RPS: 0.01, Burst: 1, Key: "header:X-Auth-Request-Email",
	})

	alice := map[string]string{"X-Auth-Request-Email": "alice@example.com"}
	bob := map[string]string{"X-Auth-Request-Email": "bob@example.com"}

	if w := doGet(r, "/ping", alice); w.Code != http.StatusOK {
		t.Fatalf("alice request 1: status = %d, want %d", w.Code, http.StatusOK)
	}

	if w := doGet(r, "/ping", alice); w.Code != http.StatusTooManyRequests {
		t.Errorf("alice request 2: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	if w := doGet(r, "/ping", bob); w.Code != http.StatusOK {
		t.Errorf("bob request: status = %d, want %d", w.Code, http.StatusOK)
	}
}

// TestRateLimitDisabled 验证限流关闭时不产生任何限制.
func TestRateLimitDisabled(t *testing.T) {
	r := newRateLimitRouter(configs.RateLimitConfig{Enabled: false})

	for range 5 {
		if w := doGet(r, "/ping", nil); w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
	}
}

// TestCircuitBreakerTripsOnFailures 验证连续 5xx 达到阈值后熔断，
// 后续请求快速失败并携带 Retry-After.
func TestCircuitBreakerTripsOnFailures(t *testing.T) {
	cfg := configs.CircuitBreakerConfig{
		Enabled:           true,
		FailureRate:       0.5,
		MinRequests:       3,
		TimeoutSeconds:    7,
		MaxRequestsInHalf: 1,
	}

	r := gin.New()
	r.Use(middleware.CircuitBreakerMiddleware(cfg))
	r.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "disk failure"})
	})

	for i := range 3 {
		if w := doGet(r, "/boom", nil); w.Code != http.StatusInternalServerError {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusInternalServerError)
		}
	}

	w := doGet(r, "/boom", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status after trip = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	if got := w.Header().Get("Retry-After"); got != "7" {
		t.Errorf("Retry-After = %q, want %q", got, "7")
	}
}

// TestCircuitBreakerStaysClosedOnSuccess 验证健康流量不会触发熔断.
func TestCircuitBreakerStaysClosedOnSuccess(t *testing.T) {
	cfg := configs.CircuitBreakerConfig{
		Enabled: true, FailureRate: 0.5, MinRequests: 3, TimeoutSeconds: 5,
	}

	r := gin.New()
	r.Use(middleware.CircuitBreakerMiddleware(cfg))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := range 10 {
		if w := doGet(r, "/ok", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}
}
