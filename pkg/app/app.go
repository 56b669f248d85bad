// Package app 提供应用程序的初始化和配置功能.
package app

import (
	contextPkg "context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appcache "github.com/Flapjacck/moxbox/pkg/cache"
	"github.com/Flapjacck/moxbox/pkg/configs"
	"github.com/Flapjacck/moxbox/pkg/internal/jobs"
	"github.com/Flapjacck/moxbox/pkg/internal/router"
	"github.com/Flapjacck/moxbox/pkg/internal/storage"
	"github.com/Flapjacck/moxbox/pkg/log"
	"github.com/Flapjacck/moxbox/pkg/metrics"
	"github.com/Flapjacck/moxbox/pkg/middleware"
	"github.com/Flapjacck/moxbox/pkg/rule"
	"github.com/Flapjacck/moxbox/pkg/scheduler"
	"github.com/Flapjacck/moxbox/pkg/tracing"
)

// App 聚合 HTTP 引擎与各子系统的生命周期.
type App struct {
	Engine    *gin.Engine
	config    *configs.AppConfig
	manager   *storage.Manager
	scheduler *scheduler.Scheduler
}

// NewApp 按固定顺序完成初始化：配置、日志、追踪、指标、存储、
// 调度器与定时任务、中间件链、路由.任何一步失败都直接退出进程，
// 半初始化的服务不值得保活.
func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	// 配置结构上的 rule 标签在这里统一校验
	if err := rule.ValidateStruct(configs.GetConfig()); err != nil {
		fmt.Printf("Error validating config: %v\n", err)
		os.Exit(1)
	}

	// 日志初始化同时依据 debug 设定 gin 运行模式
	log.Init()

	engine := gin.New()

	// 初始化追踪
	config := configs.GetConfig()
	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	sched, err := scheduler.NewScheduler()
	if err != nil {
		fmt.Printf("Error initializing scheduler: %v\n", err)
		os.Exit(1)
	}

	if err := jobs.RegisterCronJobs(sched, manager); err != nil {
		fmt.Printf("Error registering cron jobs: %v\n", err)
		os.Exit(1)
	}

	sched.Start()

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		// 文件内容本身不压缩，下载流保持原样
		gzip.Gzip(gzip.DefaultCompression,
			gzip.WithExcludedPathsRegexs([]string{`^/api/v1/files/.+/download$`})),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.AuthMiddleware(config.Auth),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.StorageMiddleware(manager),
		middleware.SchedulerMiddleware(sched),
	)

	// 响应缓存只挂在统计路由上，由 RegisterAPIRoutes 决定落点
	var cacheMW gin.HandlerFunc

	if config.Cache.Enabled {
		cacheCfg := middleware.DefaultCacheConfig(appcache.NewNamespaced(manager.GetKVClient().KVStore, "rc:"))
		cacheCfg.TTL = config.Cache.TTL()
		cacheCfg.MaxBodyBytes = config.Cache.MaxBodyBytes()
		cacheMW = middleware.CacheMiddleware(cacheCfg)
	}

	v1 := engine.Group("/api/v1")
	router.RegisterAPIRoutes(v1, cacheMW)

	router.RegisterSwaggerRoute(engine)

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return &App{
		Engine:    engine,
		config:    config,
		manager:   manager,
		scheduler: sched,
	}
}

// Run 启动 HTTP 服务并阻塞到收到退出信号，随后按依赖的反序关停：
// 先停止接收请求，再停调度器，最后关闭存储客户端与追踪导出.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	errCh := make(chan error, 1)

	go func() {
		log.Logger().Info().Str("addr", srv.Addr).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Logger().Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := contextPkg.WithTimeout(contextPkg.Background(), a.config.Server.GetTimeoutDuration())
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Logger().Error().Err(err).Msg("http server shutdown failed")
	}

	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(); err != nil {
			log.Logger().Error().Err(err).Msg("scheduler shutdown failed")
		}
	}

	if a.manager != nil {
		if err := a.manager.Close(); err != nil {
			log.Logger().Error().Err(err).Msg("storage close failed")
		}
	}

	if err := tracing.ShutdownTracer(ctx); err != nil {
		log.Logger().Error().Err(err).Msg("tracer shutdown failed")
	}

	return nil
}
