package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// DBType 数据库类型，别名在 GetDSN 与方言注册处归一化.
type DBType string

const (
	// PostgreSQL 协议.
	PostgreSQL DBType = "postgresql"
	Postgres   DBType = "postgre"
	Pg         DBType = "pg"

	// MySQL 协议.
	MySQL   DBType = "mysql"
	MariaDB DBType = "mariadb"

	// SQLite 单文件库.
	SQLite DBType = "sqlite"
)

// DBConfig 目录数据库配置.SQLite 只用 Database 一个字段，
// 其余连接参数对它不生效.
type DBConfig struct {
	Type            DBType `mapstructure:"type"              rule:"oneof=postgresql postgre pg mysql mariadb sqlite"`
	Host            string `mapstructure:"host"              rule:"hostname"`
	Port            int    `mapstructure:"port"              rule:"min=1,max=65535"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"    rule:"min=0"` // 0 不限
	MaxIdleConns    int    `mapstructure:"max_idle_conns"    rule:"min=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" rule:"min=0"` // 秒，0 不限
	SlowThreshold   int    `mapstructure:"slow_threshold"    rule:"min=0"` // 毫秒，0 关闭慢查询日志
}

// GetDBType 返回数据库类型的展示名，别名归并.
func (c *DBConfig) GetDBType() string {
	switch c.Type {
	case PostgreSQL, Postgres, Pg:
		return "PostgreSQL"
	case MySQL, MariaDB:
		return "MySQL"
	case SQLite:
		return "SQLite"
	default:
		return "Unknown"
	}
}

// GetDSN 按数据库类型拼接连接串，未知类型返回空串.
// SQLite 落成工作目录下的单文件库，journal 等参数由方言侧追加.
func (c *DBConfig) GetDSN() string {
	switch c.Type {
	case PostgreSQL, Postgres, Pg:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
	case MySQL, MariaDB:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Database)
	case SQLite:
		return "file:" + c.Database + ".db"
	default:
		return ""
	}
}

// setDefaults 数据库默认值，开箱即用走本地 SQLite.
func (c *DBConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("db.type", SQLite)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.database", "moxbox")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 0)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 1800)
	v.SetDefault("db.slow_threshold", 200)
}
