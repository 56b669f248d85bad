package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/internal/service"
)

// GetStats 当前用户的存储统计汇总.
//
//	@Summary		存储统计
//	@Description	文件数、字节数（活动/回收站分列）、文件夹数与 Top MIME 类型；短TTL缓存，允许轻微滞后
//	@Tags			统计
//	@Produce		json
//	@Success		200	{object}	types.StatsSummary
//	@Failure		400	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/api/v1/stats [get]
func GetStats(c *gin.Context) {
	l := reqLogger(c)

	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})
		return
	}

	svc := service.NewStatsService(c.Request.Context())

	summary, e := svc.Summary(c.Request.Context(), user)
	if e != nil {
		l.Error().Err(e).Msg("stats summary failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})

		return
	}

	c.JSON(http.StatusOK, summary)
}
