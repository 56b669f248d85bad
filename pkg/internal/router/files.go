package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件相关路由.
func RegisterFilesRoutes(g *gin.RouterGroup) {
	filesRoutes := g.Group("/files")
	{
		// 上传与列表
		filesRoutes.POST("", handle.UploadFile)
		filesRoutes.GET("", handle.ListFiles)
		filesRoutes.POST("/batch", handle.UploadBatchFiles)
		filesRoutes.POST("/abort", handle.AbortUpload)

		// 单个文件操作
		singleGroup := filesRoutes.Group("/:id")
		{
			singleGroup.GET("", handle.GetFile)
			singleGroup.PATCH("", handle.UpdateFile)
			singleGroup.DELETE("", handle.DeleteFile)
			singleGroup.GET("/download", handle.DownloadFile)
			singleGroup.POST("/move", handle.MoveFile)
			singleGroup.POST("/restore", handle.RestoreFile)
			singleGroup.DELETE("/permanent", handle.PurgeFile)
		}
	}

	// 公开文件的匿名下载面，路径在认证跳过清单里
	g.GET("/public/files/:id/download", handle.PublicDownloadFile)
}
