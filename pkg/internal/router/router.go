// Package router 管理路由配置，将路径绑定到 pkg/internal/handle 的处理器.
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes 注册全部业务路由到传入的路由组（通常为 /api/v1）.
// cacheMW 非 nil 时挂到只读统计组上，其余路由不走响应缓存.
func RegisterAPIRoutes(g *gin.RouterGroup, cacheMW gin.HandlerFunc) {
	RegisterFilesRoutes(g)
	RegisterFoldersRoutes(g)
	RegisterTrashRoutes(g)
	RegisterStatsRoutes(g, cacheMW)
	RegisterHealthCheckRoute(g)
	RegisterSchedulerRoutes(g)
}
