package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/internal/handle"
)

// RegisterFoldersRoutes 注册文件夹相关路由.
func RegisterFoldersRoutes(g *gin.RouterGroup) {
	foldersRoutes := g.Group("/folders")
	{
		foldersRoutes.GET("", handle.ListFolders)
		foldersRoutes.POST("", handle.CreateFolder)
		foldersRoutes.DELETE("", handle.DeleteFolder)
		foldersRoutes.GET("/entries", handle.FolderEntries)
		foldersRoutes.POST("/rename", handle.RenameFolder)
	}
}
