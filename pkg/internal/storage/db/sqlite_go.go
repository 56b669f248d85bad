//go:build !no_sqlite && !cgo

package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

// createSQLiteDialector 创建 SQLite 方言（纯 Go 驱动）.
// 追加 WAL 与忙等参数，读写并发时不至于立刻报 SQLITE_BUSY.
// modernc 系驱动的 pragma 走 _pragma=name(value) 形式.
func createSQLiteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(dsn + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
}

func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
