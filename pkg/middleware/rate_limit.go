package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

// RateLimitMiddleware 返回基于配置的限流中间件.key 维度支持
// global、ip 与 header:<名称>，未知值回落到 ip.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiterFor := limiterSource(cfg)

	return func(c *gin.Context) {
		if !allowOrReject(c, limiterFor(c)) {
			return
		}

		c.Next()
	}
}

// limiterSource 按 key 配置构造限流器查找函数.global 共用一个
// 限流器；其余维度每个键一个，空闲的由后台回收.
func limiterSource(cfg configs.RateLimitConfig) func(*gin.Context) *rate.Limiter {
	keyMode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if keyMode == "global" || keyMode == "" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(*gin.Context) *rate.Limiter { return limiter }
	}

	keyOf := keyExtractor(keyMode)

	var (
		mu       sync.Mutex
		limiters = map[string]*keyedLimiter{}
	)

	// 后台按空闲时间逐个回收，限制 map 增长
	go func() {
		const (
			cleanupInterval = 10 * time.Minute
			idleEviction    = 30 * time.Minute
		)

		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for now := range ticker.C {
			mu.Lock()
			for key, kl := range limiters {
				if now.Sub(kl.seen) > idleEviction {
					delete(limiters, key)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) *rate.Limiter {
		key := keyOf(c)
		if key == "" {
			key = "unknown"
		}

		mu.Lock()
		defer mu.Unlock()

		kl, ok := limiters[key]
		if !ok {
			kl = &keyedLimiter{lim: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)}
			limiters[key] = kl
		}
		kl.seen = time.Now()

		return kl.lim
	}
}

// keyedLimiter 限流器加最近使用时间，空闲超时后回收.
type keyedLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// keyExtractor 把 key 配置解析成提取函数，解析只做一次.
func keyExtractor(keyMode string) func(*gin.Context) string {
	if h, ok := strings.CutPrefix(keyMode, "header:"); ok {
		return func(c *gin.Context) string {
			if v := c.GetHeader(h); v != "" {
				return v
			}

			return clientIP(c)
		}
	}

	// "ip" 与未知取值都按客户端 IP
	return clientIP
}

// allowOrReject 尝试取一个令牌.取不到时以 429 拒绝并按令牌到位的
// 等待时间上报 Retry-After.
func allowOrReject(c *gin.Context, lim *rate.Limiter) bool {
	res := lim.Reserve()
	if !res.OK() {
		// burst 配成 0 时任何请求都拿不到令牌
		rejectTooMany(c, time.Second)

		return false
	}

	if d := res.Delay(); d > 0 {
		res.Cancel()
		rejectTooMany(c, d)

		return false
	}

	return true
}

// rejectTooMany 以 429 拒绝本次请求，等待时间向上取整到秒.
func rejectTooMany(c *gin.Context, wait time.Duration) {
	sec := int(math.Ceil(wait.Seconds()))
	if sec < 1 {
		sec = 1
	}

	c.Header("Retry-After", strconv.Itoa(sec))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
}

// clientIP 取客户端 IP，gin 解析不出时退回 RemoteAddr.
func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}

	return c.Request.RemoteAddr
}
