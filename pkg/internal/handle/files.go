package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/internal/service"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
	"github.com/Flapjacck/moxbox/pkg/rule"
)

// UploadFile 处理单文件上传.
//
//	@Summary		上传单个文件
//	@Description	multipart 直传单个文件，先落盘再入库；同名冲突返回409，可带 action=replace/keep_both 重试
//	@Tags			文件
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file						true	"上传的文件"
//	@Param			folder		formData	string						false	"目标文件夹，空为根目录"
//	@Param			action		formData	string						false	"冲突解决动作(replace/keep_both)"
//	@Param			is_public	formData	bool						false	"是否公开"
//	@Success		200			{object}	types.UploadFileResponse	"文件上传响应"
//	@Failure		400			{object}	map[string]string			"请求参数错误"
//	@Failure		409			{object}	map[string]any				"命名冲突"
//	@Failure		500			{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/files [post]
func UploadFile(c *gin.Context) {
	l := reqLogger(c)

	user, err := currentUser(c)
	if err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn().Err(err).Msg("upload without file part")
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})

		return
	}

	var form types.UploadFileForm
	if err := c.ShouldBind(&form); err != nil {
		l.Warn().Err(err).Msg("invalid upload form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": rule.Errors(err)})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.UploadSingleFile(c.Request.Context(), user, fh, &form)
	if err != nil {
		respondServiceError(c, "upload", err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// UploadBatchFiles 处理批量文件上传.
//
//	@Summary		批量上传文件
//	@Description	multipart 直传多个文件；未指定 action 时任何命名冲突都会整体拒绝批次并清理已落盘内容
//	@Tags			文件
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			files	formData	[]file						true	"上传的文件数组"
//	@Param			folder	formData	string						false	"目标文件夹，空为根目录"
//	@Param			action	formData	string						false	"冲突解决动作(replace/keep_both)，对整个批次生效"
//	@Success		200		{object}	types.BatchUploadResponse	"批量上传响应"
//	@Failure		400		{object}	map[string]string			"请求参数错误"
//	@Failure		409		{object}	map[string]any				"批次内存在命名冲突"
//	@Failure		500		{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/files/batch [post]
func UploadBatchFiles(c *gin.Context) {
	l := reqLogger(c)

	user, err := currentUser(c)
	if err != nil {
		l.Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	var form types.BatchUploadForm
	if err := c.ShouldBind(&form); err != nil {
		l.Warn().Err(err).Msg("invalid batch form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": rule.Errors(err)})

		return
	}

	mf, err := c.MultipartForm()
	if err != nil {
		l.Warn().Err(err).Msg("failed to parse multipart form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})

		return
	}

	files := mf.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})

		return
	}

	l.Debug().
		Int("file_count", len(files)).
		Str("user", user).
		Msg("batch upload accepted")

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.UploadBatchFiles(c.Request.Context(), user, files, &form)
	if err != nil {
		respondServiceError(c, "batch upload", err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// AbortUpload 清理中途失败上传遗留的暂存内容.
//
//	@Summary		中止上传清理
//	@Description	按上传响应中的 storage_path 清理暂存 blob，幂等，重复清理同一路径也返回成功
//	@Tags			文件
//	@Accept			json
//	@Produce		json
//	@Param			req	body		types.AbortUploadRequest	true	"清理请求"
//	@Success		200	{object}	types.AbortUploadResponse	"清理结果"
//	@Failure		400	{object}	map[string]string			"请求参数错误"
//	@Failure		500	{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/files/abort [post]
func AbortUpload(c *gin.Context) {
	l := reqLogger(c)

	var req types.AbortUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid abort request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": rule.Errors(err)})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.AbortUpload(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, "abort upload", err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
