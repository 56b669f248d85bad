package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/internal/handle"
)

// RegisterTrashRoutes 注册回收站相关路由.
// 单个文件的恢复/彻底删除在 files 路由组下，这里只有整站视角的操作.
func RegisterTrashRoutes(g *gin.RouterGroup) {
	trashRoutes := g.Group("/trash")
	{
		trashRoutes.GET("", handle.ListTrash)     // 获取回收站文件列表
		trashRoutes.DELETE("", handle.EmptyTrash) // 清空回收站
	}
}
