// Package db 打开目录数据库并维护连接池，表结构随启动自动迁移.
package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormPrometheus "gorm.io/plugin/prometheus"

	"github.com/Flapjacck/moxbox/pkg/configs"
	"github.com/Flapjacck/moxbox/pkg/internal/model"
	nlog "github.com/Flapjacck/moxbox/pkg/log"
)

// DialectorFactory 由 DSN 构造 GORM 方言实例.
type DialectorFactory func(dsn string) gorm.Dialector

// dialectorFactories 数据库类型到方言工厂的映射，各驱动文件在 init 中注册.
var dialectorFactories = map[configs.DBType]DialectorFactory{}

// RegisterDialectorFactory 注册数据库方言工厂.
func RegisterDialectorFactory(dbType configs.DBType, factory DialectorFactory) {
	dialectorFactories[dbType] = factory
}

// GetRegisteredDBTypes 返回已注册的数据库类型列表.
func GetRegisteredDBTypes() []configs.DBType {
	types := make([]configs.DBType, 0, len(dialectorFactories))
	for dbType := range dialectorFactories {
		types = append(types, dbType)
	}

	return types
}

// Client 包装 GORM 连接.
type Client struct {
	*gorm.DB
}

var (
	dbOnce sync.Once
	dbInst *Client
	dbErr  error
)

// New 初始化数据库客户端（单例）：建连、连接池、ping、迁移 catalog 表.
func New(ctx context.Context) (*Client, error) {
	dbOnce.Do(func() {
		dbInst, dbErr = open(ctx)
	})

	return dbInst, dbErr
}

func open(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().DB

	dsn := cfg.GetDSN()
	if dsn == "" {
		return nil, fmt.Errorf("no dsn for database type %q", cfg.Type)
	}

	factory, ok := dialectorFactories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	db, err := gorm.Open(factory(dsn), &gorm.Config{
		Logger:      newGormLogger(&cfg),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// 目录表结构随版本自动迁移
	if err := db.WithContext(ctx).AutoMigrate(&model.File{}, &model.Folder{}); err != nil {
		return nil, fmt.Errorf("migrate catalog tables: %w", err)
	}

	client := &Client{DB: db}

	if configs.GetConfig().Metrics.Enabled {
		if err := client.registerMetrics(cfg.Database); err != nil {
			return nil, fmt.Errorf("register gorm metrics: %w", err)
		}
	}

	nlog.Logger().Info().
		Str("type", cfg.GetDBType()).
		Str("database", cfg.Database).
		Msg("catalog database ready")

	return client, nil
}

// newGormLogger 把 GORM 日志接到 zerolog 上，慢查询阈值来自配置.
func newGormLogger(cfg *configs.DBConfig) logger.Interface {
	return logger.New(
		nlog.Logger(),
		logger.Config{
			SlowThreshold:             time.Duration(cfg.SlowThreshold) * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GetDB 返回 GORM DB 实例.
func (c *Client) GetDB() *gorm.DB {
	return c.DB
}

// HealthCheck 检查数据库连通性.
func (c *Client) HealthCheck(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}

	return sqlDB.PingContext(ctx)
}

// Close 关闭数据库连接.
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}

	return sqlDB.Close()
}

// 秒，gorm 的 prometheus 插件按这个周期刷连接池指标
const metricsRefreshInterval = 15

// registerMetrics 挂上 GORM 的 prometheus 插件.插件把指标注册进
// 进程默认注册表，与应用指标走同一个 /metrics 出口，不另起端口.
func (c *Client) registerMetrics(dbName string) error {
	plugin := gormPrometheus.New(gormPrometheus.Config{
		DBName:          dbName,
		RefreshInterval: metricsRefreshInterval,
		StartServer:     false,
	})

	if err := c.Use(plugin); err != nil {
		return fmt.Errorf("register gorm prometheus plugin: %w", err)
	}

	return nil
}
