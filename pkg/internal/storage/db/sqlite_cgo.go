//go:build !no_sqlite && cgo

package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

// createSQLiteDialector 创建 SQLite 方言（CGo 驱动）.
// 追加 WAL 与忙等参数，读写并发时不至于立刻报 SQLITE_BUSY.
// mattn 驱动的连接参数走 _busy_timeout=n 形式.
func createSQLiteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(dsn + "?_busy_timeout=5000&_journal_mode=WAL")
}

func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
