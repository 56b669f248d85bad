package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/internal/service"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
	"github.com/Flapjacck/moxbox/pkg/rule"
)

// ListFiles 文件列表查询.
//
//	@Summary	文件列表
//	@Tags		文件
//	@Produce	json
//	@Param		status		query		string	false	"状态过滤(active/deleted)，默认active"
//	@Param		is_public	query		bool	false	"可见性过滤"
//	@Param		folder		query		string	false	"按文件夹过滤，未提供时不过滤"
//	@Param		limit		query		int		false	"每页条数(默认50, 最大200)"
//	@Param		offset		query		int		false	"偏移量"
//	@Success	200			{object}	types.ListFilesResponse
//	@Failure	400			{object}	map[string]string
//	@Failure	500			{object}	map[string]string
//	@Router		/api/v1/files [get]
func ListFiles(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	var q types.ListFilesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		reqLogger(c).Warn().Err(err).Msg("invalid list query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": rule.Errors(err)})

		return
	}

	// ShouldBindQuery 只在绑定引擎初始化后才跑 rule 标签，这里再显式过一遍
	if err := rule.ValidateStruct(q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": rule.Errors(err)})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.ListFiles(c.Request.Context(), user, &q)
	if err != nil {
		respondServiceError(c, "list files", err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetFile 单个文件元数据.
//
//	@Summary	文件元数据
//	@Tags		文件
//	@Produce	json
//	@Param		id	path		string	true	"文件ID"
//	@Success	200	{object}	types.FileInfo
//	@Failure	400	{object}	map[string]string
//	@Failure	404	{object}	map[string]string
//	@Failure	500	{object}	map[string]string
//	@Router		/api/v1/files/{id} [get]
func GetFile(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	info, err := svc.GetFile(c.Request.Context(), user, id)
	if err != nil {
		respondServiceError(c, "get file", err)

		return
	}

	c.JSON(http.StatusOK, info)
}
