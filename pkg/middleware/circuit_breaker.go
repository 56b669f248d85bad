package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/Flapjacck/moxbox/pkg/configs"
	"github.com/Flapjacck/moxbox/pkg/log"
)

// errServerFailure 标记 5xx 响应，让熔断器把它计为失败.
var errServerFailure = errors.New("upstream handler returned a server error")

// CircuitBreakerMiddleware 基于 gobreaker 的简单熔断.
// 主要场景是磁盘或数据库故障时快速失败，而不是被上传流量持续打穿.
func CircuitBreakerMiddleware(cfg configs.CircuitBreakerConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	l := log.Component("middleware")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "moxbox-http",
		MaxRequests: cfg.MaxRequestsInHalf,
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		ReadyToTrip: tripOnFailureRate(cfg.MinRequests, cfg.FailureRate),
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	// 打开状态最多持续 TimeoutSeconds，作为 Retry-After 的粗略提示
	retryAfter := strconv.Itoa(cfg.TimeoutSeconds)

	return func(c *gin.Context) {
		_, err := cb.Execute(func() (any, error) {
			c.Next()
			// 将 5xx 视为失败
			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, errServerFailure
			}

			return nil, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})

			return
		}
	}
}

// tripOnFailureRate 统计窗口内样本足够后按失败比例决定是否跳闸.
func tripOnFailureRate(minRequests uint32, failureRate float64) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests < minRequests {
			return false
		}

		return float64(counts.TotalFailures)/float64(counts.Requests) >= failureRate
	}
}
