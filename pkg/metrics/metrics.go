// Package metrics 汇集 Prometheus 指标：HTTP 请求计数与时延、上传
// 下载字节量，以及回收站清理、孤儿清扫等后台任务的结果计数.
//
// 指标统一挂在进程默认注册表上，gorm、watermill 这类自带插桩的依赖
// 注册的指标也走同一个 /metrics 出口（该路径在认证跳过清单里）。
// 业务侧直接操作导出的指标变量：
//
//	metrics.UploadedBytesTotal.Add(float64(size))
//	metrics.TrashAutoCleanedTotal.Add(float64(n))
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

var (
	// RequestCounter 按方法与路由统计 HTTP 请求数.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP 请求时延分布.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 正在处理中的请求数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// UploadedBytesTotal 上传写入 blob 存储的字节总量.
	UploadedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uploaded_bytes_total",
			Help: "Total bytes written to blob storage by uploads",
		},
	)

	// DownloadedBytesTotal 下载流出到客户端的字节总量.
	DownloadedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "downloaded_bytes_total",
			Help: "Total bytes streamed to clients by downloads",
		},
	)

	// TrashAutoCleanedTotal 定时清理彻底删除的过期回收站文件数.
	TrashAutoCleanedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trash_auto_cleaned_total",
			Help: "Total number of expired trash files purged by the cleanup job",
		},
	)

	// OrphanBlobsSweptTotal 孤儿清扫回收的无主 blob 数.
	OrphanBlobsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orphan_blobs_swept_total",
			Help: "Total number of orphaned blobs removed by the sweep job",
		},
	)

	// buildInfo 值恒为 1，标签携带服务名与版本，便于按部署聚合.
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moxbox_build_info",
			Help: "Build metadata, value is always 1",
		},
		[]string{"service", "version"},
	)

	// registerer 指标实际挂接的位置，InitMetrics 可能换成带常量标签的包装.
	registerer prometheus.Registerer = prometheus.DefaultRegisterer
)

// InitMetrics 注册全部指标.config.Labels 会作为常量标签附加到每个
// 指标上，键不得与指标自身的标签名冲突.关闭 RuntimeMetrics 时把
// client_golang 预注册的 Go 与进程采集器摘掉.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	if !config.RuntimeMetrics {
		prometheus.Unregister(collectors.NewGoCollector())
		prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	if len(config.Labels) > 0 {
		registerer = prometheus.WrapRegistererWith(prometheus.Labels(config.Labels), prometheus.DefaultRegisterer)
	}

	registerer.MustRegister(
		RequestCounter,
		RequestDuration,
		ActiveConnections,
		UploadedBytesTotal,
		DownloadedBytesTotal,
		TrashAutoCleanedTotal,
		OrphanBlobsSweptTotal,
		buildInfo,
	)

	buildInfo.WithLabelValues(config.ServiceName, config.ServiceVersion).Set(1)

	return nil
}

// StartMetricsServer 在传入引擎上挂载 /metrics，按配置追加 pprof 端点.
func StartMetricsServer(config configs.MetricsConfig, engine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegisterer 返回业务指标使用的注册器，常量标签已套好.
func GetRegisterer() prometheus.Registerer {
	return registerer
}
