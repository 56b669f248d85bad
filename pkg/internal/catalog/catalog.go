// Package catalog 维护文件与文件夹的关系型元数据：CRUD、按名称与文件夹的
// 冲突探测查询、以及缓存文件夹大小的聚合计算.
//
// 文件与文件夹之间没有外键，归属关系由 storage_path 的目录部分推导：
// 根目录的文件路径不含 "/"，其余文件归属于路径目录部分指向的文件夹.
package catalog

import (
	crand "crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid"
	"gorm.io/gorm"
)

// 全局单例的 ULID 熵源，使用单调递增策略，确保同一毫秒内生成的 ULID 具有排序稳定性。
var ulidEntropy = ulid.Monotonic(crand.Reader, 0)

// NewID 生成按时间排序的 ULID 实体标识.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), ulidEntropy).String()
}

// 路径字符集允许 "_"，而 "_" 是 LIKE 的单字符通配符，
// 模式里必须转义，否则 "my_docs" 会误匹配 "myxdocs".
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// scopeFolder 限定文件直接归属于指定文件夹，即 storage_path 的目录
// 部分恰好等于该文件夹；子文件夹里的文件不算.名称唯一性按直接归属
// 判定，大小聚合才用子树语义.根目录为路径中不含 "/" 的文件.
func scopeFolder(tx *gorm.DB, folder string) *gorm.DB {
	if folder == "" {
		return tx.Where("storage_path NOT LIKE '%/%'")
	}

	esc := escapeLike(folder)

	return tx.Where("storage_path LIKE ? ESCAPE '!' AND storage_path NOT LIKE ? ESCAPE '!'",
		esc+"/%", esc+"/%/%")
}

// scopeSubtree 限定文件位于指定文件夹之下（含恰好等于该路径的边界情况）.
// 空路径代表存储根，覆盖全部文件.
func scopeSubtree(tx *gorm.DB, folder string) *gorm.DB {
	if folder == "" {
		return tx
	}

	return tx.Where("storage_path = ? OR storage_path LIKE ? ESCAPE '!'", folder, escapeLike(folder)+"/%")
}
