// Package context 在标准 context 上挂接存储句柄与追踪信息，供 handler、
// service 与定时任务共享同一组客户端.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/Flapjacck/moxbox/pkg/internal/storage"
	blobc "github.com/Flapjacck/moxbox/pkg/internal/storage/blob"
	dbc "github.com/Flapjacck/moxbox/pkg/internal/storage/db"
	kvc "github.com/Flapjacck/moxbox/pkg/internal/storage/kv"
	mqc "github.com/Flapjacck/moxbox/pkg/internal/storage/mq"
)

// managerKey 为非导出类型，其他包无法构造同样的键.
type managerKey struct{}

// WithStorageManager 将存储管理器挂到 ctx 上.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, mgr)
}

// GetManager 取出 ctx 上的存储管理器，未挂载时返回 nil.
func GetManager(ctx context.Context) *storage.Manager {
	mgr, _ := ctx.Value(managerKey{}).(*storage.Manager)

	return mgr
}

// GetBlobClient 返回 ctx 关联的 blob 客户端，管理器缺失时为 nil.
func GetBlobClient(ctx context.Context) *blobc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetBlobClient()
	}

	return nil
}

// GetDBClient 返回 ctx 关联的 catalog 数据库客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// GetMQClient 返回 ctx 关联的消息队列客户端，事件未启用时为 nil.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetMQClient()
	}

	return nil
}

// GetKVClient 返回 ctx 关联的 KV 缓存客户端.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetKVClient()
	}

	return nil
}

// TraceID 返回当前请求的 trace id，无有效追踪上下文时为空串.
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}

// WithTraceContext 给 logger 附加 trace_id/span_id 字段，便于日志与链路对账.
// 只要 ctx 携带有效的 SpanContext 就生效，不要求本进程正在采样.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}

	return logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
}
