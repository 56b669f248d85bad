// Package middleware 提供 gin 中间件：认证、限流、熔断、响应缓存、
// 日志、指标与追踪.认证模型面向个人自托管部署，身份由反向代理
// （oauth2-proxy 等）注入的请求头提供，应用自身不管理会话.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

// AuthUserKey 是认证中间件解析出的身份在 gin.Context 里的键，
// 下游 handler 从这里取当前用户.
const AuthUserKey = "auth.user"

// identityHeaders 按优先级排列的身份头，oauth2-proxy 按部署方式
// 注入其中之一.
var identityHeaders = [...]string{"X-Auth-Request-Email", "X-Forwarded-Email"}

// AuthMiddleware 校验反向代理注入的身份头，通过后把身份写入
// AuthUserKey 供下游读取.跳过清单按路径前缀放行（/metrics、
// /api/v1/health、公开下载等），开发模式可允许 ?user= 兜底.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	if !conf.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	skips := cleanSkipPaths(conf.SkipPaths)

	return func(c *gin.Context) {
		if skipAuth(c.Request.URL.Path, skips) {
			c.Next()
			return
		}

		email := resolveIdentity(c, conf.DevAllowQuery)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(AuthUserKey, email)
		c.Next()
	}
}

// resolveIdentity 依次尝试身份头，开发模式再看 query.
func resolveIdentity(c *gin.Context, devAllowQuery bool) string {
	for _, h := range identityHeaders {
		if v := strings.TrimSpace(c.GetHeader(h)); v != "" {
			return v
		}
	}

	if devAllowQuery {
		return strings.TrimSpace(c.Query("user"))
	}

	return ""
}

// cleanSkipPaths 构造时整理一次跳过清单，空项剔除.
func cleanSkipPaths(skips []string) []string {
	out := make([]string, 0, len(skips))

	for _, p := range skips {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// skipAuth 按前缀匹配跳过清单.
func skipAuth(path string, skips []string) bool {
	for _, p := range skips {
		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
