package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/context"
	"github.com/Flapjacck/moxbox/pkg/internal/storage"
)

// StorageMiddleware 把存储 Manager 注入每个请求的 context，
// service 层经由 context 取各存储客户端.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithStorageManager(c.Request.Context(), manager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
