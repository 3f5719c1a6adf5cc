package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"headless-cms-backend/pkg/config"
)

// CORS 创建CORS中间件
func CORS(cfg *config.Config) func(http.Handler) http.Handler {
	// 配置CORS选项
	corsOptions := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
			http.MethodPatch,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Requested-With",
			"Cache-Control",
			RequestIDHeader,
		},
		ExposedHeaders: []string{
			"Link",
			RequestIDHeader,
		},
		AllowCredentials: false,
		MaxAge:           300, // 5分钟
	}

	// 开发环境允许所有来源
	if cfg.IsDevelopment() || len(cfg.AllowedOrigins) == 0 {
		corsOptions.AllowedOrigins = []string{"*"}
	}

	// 如果配置了特定的允许来源，则使用配置的值
	if len(cfg.AllowedOrigins) > 0 && cfg.AllowedOrigins[0] != "*" {
		corsOptions.AllowedOrigins = cfg.AllowedOrigins
		corsOptions.AllowCredentials = true
	}

	return cors.Handler(corsOptions)
}
