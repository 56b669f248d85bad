package handle

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/internal/service"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
	"github.com/Flapjacck/moxbox/pkg/rule"
)

// MoveFile 移动文件到另一个文件夹.
//
//	@Summary		移动文件
//	@Description	把活动文件移动到目标文件夹；目标同名时返回409，可带 action=replace/keep_both 重试
//	@Tags			文件操作
//	@Accept			json
//	@Produce		json
//	@Param			id	path		string					true	"文件ID"
//	@Param			req	body		types.MoveFileRequest	true	"移动请求"
//	@Success		200	{object}	types.MoveFileResponse	"移动结果"
//	@Failure		400	{object}	map[string]string		"请求参数错误"
//	@Failure		404	{object}	map[string]string		"文件或目标文件夹不存在"
//	@Failure		409	{object}	map[string]any			"目标位置命名冲突"
//	@Failure		500	{object}	map[string]string		"服务器内部错误"
//	@Router			/api/v1/files/{id}/move [post]
func MoveFile(c *gin.Context) {
	var req types.MoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := rule.ValidateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	singleFileAction(c, "move", func(svc *service.FileService, ctx context.Context, user, id string) (any, error) {
		return svc.MoveFile(ctx, user, id, &req)
	})
}

// DeleteFile 软删除文件，进入回收站.
//
//	@Summary	删除文件(软删除)
//	@Tags		文件操作
//	@Produce	json
//	@Param		id	path		string						true	"文件ID"
//	@Success	200	{object}	types.DeleteFileResponse	"删除结果"
//	@Failure	400	{object}	map[string]string			"文件已在回收站"
//	@Failure	404	{object}	map[string]string			"文件不存在"
//	@Failure	500	{object}	map[string]string			"服务器内部错误"
//	@Router		/api/v1/files/{id} [delete]
func DeleteFile(c *gin.Context) {
	singleFileAction(c, "soft delete", func(svc *service.FileService, ctx context.Context, user, id string) (any, error) {
		return svc.SoftDeleteFile(ctx, user, id)
	})
}

// RestoreFile 从回收站恢复文件.
//
//	@Summary	恢复回收站文件
//	@Tags		文件操作
//	@Produce	json
//	@Param		id	path		string						true	"文件ID"
//	@Success	200	{object}	types.RestoreFileResponse	"恢复结果"
//	@Failure	400	{object}	map[string]string			"文件不在回收站"
//	@Failure	404	{object}	map[string]string			"文件不存在"
//	@Failure	500	{object}	map[string]string			"服务器内部错误"
//	@Router		/api/v1/files/{id}/restore [post]
func RestoreFile(c *gin.Context) {
	singleFileAction(c, "restore", func(svc *service.FileService, ctx context.Context, user, id string) (any, error) {
		return svc.RestoreFile(ctx, user, id)
	})
}

// PurgeFile 彻底删除文件：先删 blob 再删记录.
//
//	@Summary	彻底删除文件
//	@Tags		文件操作
//	@Produce	json
//	@Param		id	path		string					true	"文件ID"
//	@Success	200	{object}	types.PurgeFileResponse	"删除结果"
//	@Failure	400	{object}	map[string]string		"请求参数错误"
//	@Failure	404	{object}	map[string]string		"文件不存在"
//	@Failure	500	{object}	map[string]string		"服务器内部错误"
//	@Router		/api/v1/files/{id}/permanent [delete]
func PurgeFile(c *gin.Context) {
	singleFileAction(c, "purge", func(svc *service.FileService, ctx context.Context, user, id string) (any, error) {
		return svc.PurgeFile(ctx, user, id)
	})
}

// UpdateFile 修改文件元数据（重命名展示名、切换可见性）.
//
//	@Summary		修改文件元数据
//	@Description	重命名展示名或切换 is_public；重命名撞上活动同名文件时返回409，语义与上传一致
//	@Tags			文件操作
//	@Accept			json
//	@Produce		json
//	@Param			id	path		string						true	"文件ID"
//	@Param			req	body		types.UpdateFileRequest		true	"修改请求"
//	@Success		200	{object}	types.UpdateFileResponse	"修改结果"
//	@Failure		400	{object}	map[string]string			"请求参数错误"
//	@Failure		404	{object}	map[string]string			"文件不存在"
//	@Failure		409	{object}	map[string]any				"命名冲突"
//	@Failure		500	{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/files/{id} [patch]
func UpdateFile(c *gin.Context) {
	var req types.UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := rule.ValidateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	singleFileAction(c, "update metadata", func(svc *service.FileService, ctx context.Context, user, id string) (any, error) {
		return svc.UpdateFileMetadata(ctx, user, id, &req)
	})
}

// singleFileAction 抽取公共流程：校验用户、获取 path id、调用具体动作、统一返回.
func singleFileAction(c *gin.Context, op string, call func(svc *service.FileService, ctx context.Context, user, id string) (any, error)) {
	l := reqLogger(c)

	user, err := currentUser(c)
	if err != nil {
		l.Warn().Err(err).Str("op", op).Msg("missing or invalid user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	ctx := c.Request.Context()
	svc := service.NewFileService(ctx)

	resp, err := call(svc, ctx, user, id)
	if err != nil {
		respondServiceError(c, op, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
