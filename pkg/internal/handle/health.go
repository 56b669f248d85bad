package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/api"
	ctxPkg "github.com/Flapjacck/moxbox/pkg/context"
)

const healthTimeout = 2 * time.Second

// componentHealth 单个依赖的检查结果.
type componentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health 聚合健康检查：数据库、blob 存储、KV 与消息队列.
// 任一依赖不健康时整体返回 503.
//
//	@Summary	健康检查
//	@Tags		健康
//	@Produce	json
//	@Success	200	{object}	map[string]any	"所有依赖健康"
//	@Failure	503	{object}	map[string]any	"存在不健康依赖"
//	@Router		/api/v1/health [get]
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	components := gin.H{
		"db":   checkDB(ctx),
		"blob": checkBlob(ctx),
		"kv":   checkKV(ctx),
		"mq":   checkMQ(ctx),
	}

	status := http.StatusOK
	overall := "ok"

	for _, v := range components {
		if ch, ok := v.(componentHealth); ok && ch.Status == "unhealthy" {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"

			break
		}
	}

	c.JSON(status, gin.H{"status": overall, "version": api.Version, "components": components})
}

func checkDB(ctx context.Context) componentHealth {
	dbc := ctxPkg.GetDBClient(ctx)
	if dbc == nil || dbc.DB == nil {
		return componentHealth{Status: "unhealthy", Error: "db client not initialized"}
	}

	if err := dbc.HealthCheck(ctx); err != nil {
		return componentHealth{Status: "unhealthy", Error: err.Error()}
	}

	return componentHealth{Status: "ok"}
}

func checkBlob(ctx context.Context) componentHealth {
	bc := ctxPkg.GetBlobClient(ctx)
	if bc == nil {
		return componentHealth{Status: "unhealthy", Error: "blob client not initialized"}
	}

	if err := bc.HealthCheck(ctx); err != nil {
		return componentHealth{Status: "unhealthy", Error: err.Error()}
	}

	return componentHealth{Status: "ok"}
}

func checkKV(ctx context.Context) componentHealth {
	kvc := ctxPkg.GetKVClient(ctx)
	if kvc == nil || kvc.KVStore == nil {
		return componentHealth{Status: "unhealthy", Error: "kv client not initialized"}
	}

	if _, err := kvc.Exists(ctx, "health:probe"); err != nil {
		return componentHealth{Status: "unhealthy", Error: err.Error()}
	}

	return componentHealth{Status: "ok"}
}

func checkMQ(ctx context.Context) componentHealth {
	mqc := ctxPkg.GetMQClient(ctx)
	if mqc == nil { // 事件系统未启用时 MQ 客户端为空，属正常状态
		return componentHealth{Status: "disabled"}
	}

	if err := mqc.HealthCheck(ctx); err != nil {
		return componentHealth{Status: "unhealthy", Error: err.Error()}
	}

	return componentHealth{Status: "ok"}
}
