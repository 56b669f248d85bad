package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/internal/service"
)

// ListTrash 获取回收站列表.
//
//	@Summary	回收站列表
//	@Tags		回收站
//	@Produce	json
//	@Success	200	{object}	types.TrashListResponse
//	@Failure	400	{object}	map[string]string
//	@Failure	500	{object}	map[string]string
//	@Router		/api/v1/trash [get]
func ListTrash(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	svc := service.NewTrashService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, "trash list", err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// EmptyTrash 清空回收站：逐个彻底删除，单个失败不中断其余.
//
//	@Summary	清空回收站
//	@Tags		回收站
//	@Produce	json
//	@Success	200	{object}	types.EmptyTrashResponse
//	@Failure	400	{object}	map[string]string
//	@Failure	500	{object}	map[string]string
//	@Router		/api/v1/trash [delete]
func EmptyTrash(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	svc := service.NewTrashService(c.Request.Context())

	resp, err := svc.Empty(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, "trash empty", err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
