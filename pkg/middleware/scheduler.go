package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/scheduler"
)

type schedulerKey struct{}

// SchedulerMiddleware 把调度器注入请求上下文，供任务管理接口使用.
// 调度器未启用时原样放行，管理接口会回答不可用.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	if sched == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), schedulerKey{}, sched)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetScheduler 从请求上下文取出调度器，未注入时返回 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	if sched, ok := c.Request.Context().Value(schedulerKey{}).(*scheduler.Scheduler); ok {
		return sched
	}

	return nil
}
