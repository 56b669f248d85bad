package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/internal/handle"
)

// RegisterStatsRoutes 注册统计相关路由.可选的中间件（如响应缓存）
// 只作用于统计组，不影响其他路由.
func RegisterStatsRoutes(g *gin.RouterGroup, mws ...gin.HandlerFunc) {
	statsRoutes := g.Group("/stats")

	for _, mw := range mws {
		if mw != nil {
			statsRoutes.Use(mw)
		}
	}

	statsRoutes.GET("", handle.GetStats)
}
