// Package tracing 基于 OpenTelemetry 初始化分布式追踪，
// 支持 otlp-http、otlp-grpc 与 zipkin 三种导出器.
//
// Example:
//
//	if err := tracing.InitTracer(config.Tracing); err != nil {
//		log.Fatal(err)
//	}
//	defer tracing.ShutdownTracer(ctx)
//
//	ctx, span := tracing.StartSpan(ctx, "operation_name")
//	defer span.End()
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

// tracerName 是本服务所有 span 的统一 tracer 名.
const tracerName = "moxbox"

var tracerProvider *sdktrace.TracerProvider

// InitTracer 按配置初始化全局 TracerProvider，未启用时为空操作.
func InitTracer(cfg configs.TracingConfig) error {
	if !cfg.Enabled {
		return nil
	}

	res, err := newResource(cfg)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(cfg.BatchTimeout),
			sdktrace.WithMaxExportBatchSize(cfg.MaxBatchSize),
			sdktrace.WithMaxQueueSize(cfg.MaxQueueSize),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tracerProvider)

	return nil
}

// newResource 组装服务标识与配置的附加资源标签.
func newResource(cfg configs.TracingConfig) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
	}

	for k, v := range cfg.ResourceLabels {
		// 服务名与版本以专用字段为准
		if k == string(semconv.ServiceNameKey) || k == string(semconv.ServiceVersionKey) {
			continue
		}

		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.New(context.Background(), resource.WithAttributes(attrs...))
}

// newExporter 根据配置的导出器类型构造 SpanExporter.
func newExporter(cfg configs.TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.ExporterType {
	case "otlp-http":
		exporter, err := otlptracehttp.New(context.Background(), otlptracehttp.WithEndpointURL(cfg.Endpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}

		return exporter, nil
	case "otlp-grpc":
		exporter, err := otlptracegrpc.New(context.Background(), otlptracegrpc.WithEndpoint(cfg.Endpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}

		return exporter, nil
	case "zipkin":
		exporter, err := zipkin.New(cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create zipkin exporter: %w", err)
		}

		return exporter, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.ExporterType)
	}
}

// ShutdownTracer 刷出缓冲中的 span 并关闭 TracerProvider.
func ShutdownTracer(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}

	err := tracerProvider.Shutdown(ctx)
	tracerProvider = nil

	return err
}

// StartSpan 开始一个新的 Span，调用方负责 span.End().
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, opts...)
}
