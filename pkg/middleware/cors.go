package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

// CORSMiddleware CORS中间件.AllowAllOrigins 与显式 origin 列表
// 在 gin-contrib/cors 里互斥，只能二选一.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowWebSockets = true
	config.AllowFiles = true

	if cfg.Debug {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = []string{"*"}
	}

	return cors.New(config)
}
