// Package log 提供基于 zerolog 的全局日志，终端输出支持 console/json
// 两种格式，文件输出经 lumberjack 轮转.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 初始化全局 logger.
func Init() {
	initOnce.Do(initLogger)
}

// Logger 返回全局 logger，首次使用时完成初始化.
func Logger() *zerolog.Logger {
	initOnce.Do(initLogger)

	return &logger
}

// Component 返回带 component 字段的子 logger，存储/调度等
// 子系统用它标记日志来源.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// initLogger 实际执行一次的初始化函数.Debug 模式加调用方定位并把
// gin 切到 debug 输出.
func initLogger() {
	cfg := configs.GetConfig()

	zerolog.SetGlobalLevel(parseLevel(cfg.Log.Level))
	gin.SetMode(ginMode(cfg.Server.Debug))

	ctx := zerolog.New(buildOutput(cfg.Log)).With().Timestamp()
	if cfg.Server.Debug {
		ctx = ctx.Caller().Stack()
	}

	logger = ctx.Logger()
	log.Logger = logger
}

func ginMode(debug bool) string {
	if debug {
		return gin.DebugMode
	}

	return gin.ReleaseMode
}

// parseLevel 解析配置的日志级别，非法值回落到 info.
func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", level)

		return zerolog.InfoLevel
	}

	return lvl
}

// buildOutput 组装输出目标：stderr（console 或 json）+ 可选轮转文件.
func buildOutput(cfg configs.LogConfig) io.Writer {
	var writers []io.Writer

	if cfg.Format == "json" {
		writers = append(writers, os.Stderr)
	} else {
		writers = append(writers, zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = time.Kitchen
		}))
	}

	if cfg.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	return io.MultiWriter(writers...)
}

// GinWriter 把 Gin 文本行按固定级别转发为 zerolog 事件.
// WithLevel 不会像 Fatal 那样退出进程，gin 的输出只是普通日志行.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	w.logger.WithLevel(w.level).Msg(strings.TrimSpace(string(p)))

	return len(p), nil
}
