package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/internal/service"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
	"github.com/Flapjacck/moxbox/pkg/rule"
)

// CreateFolder 创建文件夹（含中间层级）.
//
//	@Summary		创建文件夹
//	@Description	创建文件夹及缺失的所有父级，目录落盘并登记大小记录；重复创建幂等
//	@Tags			文件夹
//	@Accept			json
//	@Produce		json
//	@Param			req	body		types.CreateFolderRequest	true	"创建请求"
//	@Success		200	{object}	types.FolderInfo			"文件夹信息"
//	@Failure		400	{object}	map[string]string			"路径不合法"
//	@Failure		500	{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/folders [post]
func CreateFolder(c *gin.Context) {
	l := reqLogger(c)

	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})
		return
	}

	var req types.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create folder request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": rule.Errors(err)})

		return
	}

	svc := service.NewFolderService(c.Request.Context())

	info, err := svc.CreateFolder(c.Request.Context(), user, &req)
	if err != nil {
		respondServiceError(c, "create folder", err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// ListFolders 文件夹列表.
//
//	@Summary	文件夹列表
//	@Tags		文件夹
//	@Produce	json
//	@Success	200	{object}	types.ListFoldersResponse
//	@Failure	400	{object}	map[string]string
//	@Failure	500	{object}	map[string]string
//	@Router		/api/v1/folders [get]
func ListFolders(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.ListFolders(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, "list folders", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// FolderEntries 文件夹直接子项.
//
//	@Summary		文件夹内容
//	@Description	列出文件夹的直接子项，磁盘目录与库内记录合并：文件以展示名呈现，回收站文件隐藏
//	@Tags			文件夹
//	@Produce		json
//	@Param			path	query		string	false	"文件夹路径，空为根目录"
//	@Success		200		{object}	types.FolderEntriesResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Router			/api/v1/folders/entries [get]
func FolderEntries(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.FolderEntries(c.Request.Context(), user, c.Query("path"))
	if err != nil {
		respondServiceError(c, "folder entries", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RenameFolder 重命名文件夹并整体搬迁子树.
//
//	@Summary		重命名文件夹
//	@Description	改叶名并搬迁整个子树（磁盘目录+库内记录+大小缓存）；目标已存在时返回409
//	@Tags			文件夹
//	@Accept			json
//	@Produce		json
//	@Param			req	body		types.RenameFolderRequest	true	"重命名请求"
//	@Success		200	{object}	types.RenameFolderResponse	"重命名结果"
//	@Failure		400	{object}	map[string]string			"请求参数错误"
//	@Failure		404	{object}	map[string]string			"文件夹不存在"
//	@Failure		409	{object}	map[string]any				"目标路径已被占用"
//	@Failure		500	{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/folders/rename [post]
func RenameFolder(c *gin.Context) {
	l := reqLogger(c)

	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})
		return
	}

	var req types.RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid rename folder request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": rule.Errors(err)})

		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.RenameFolder(c.Request.Context(), user, &req)
	if err != nil {
		respondServiceError(c, "rename folder", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteFolder 删除空文件夹.
//
//	@Summary		删除文件夹
//	@Description	删除磁盘上已为空的文件夹及其库内记录；目录非空时拒绝
//	@Tags			文件夹
//	@Produce		json
//	@Param			path	query		string						true	"文件夹路径"
//	@Success		200		{object}	types.DeleteFolderResponse	"删除结果"
//	@Failure		400		{object}	map[string]string			"路径不合法或目录非空"
//	@Failure		404		{object}	map[string]string			"文件夹不存在"
//	@Failure		500		{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/folders [delete]
func DeleteFolder(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})
		return
	}

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing path"})
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.DeleteFolder(c.Request.Context(), user, path)
	if err != nil {
		respondServiceError(c, "delete folder", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
