//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

// createMySQLDialector 创建 MySQL 方言，MariaDB 复用.
func createMySQLDialector(dsn string) gorm.Dialector {
	return mysql.Open(dsn)
}

func init() {
	RegisterDialectorFactory(configs.MySQL, createMySQLDialector)
	RegisterDialectorFactory(configs.MariaDB, createMySQLDialector)
}
