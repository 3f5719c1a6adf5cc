// Package server wires configuration, storage and handlers into one chi router.
package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"headless-cms-backend/pkg/config"
	"headless-cms-backend/pkg/database"
	"headless-cms-backend/pkg/handlers"
	customMiddleware "headless-cms-backend/pkg/middleware"
	"headless-cms-backend/pkg/store"
	"headless-cms-backend/pkg/utils"
)

// NewRouter 创建Chi路由器并注册所有中间件和路由
func NewRouter(cfg *config.Config, log *zap.SugaredLogger, db database.DatabaseInterface) http.Handler {
	router := chi.NewRouter()

	// 设置全局中间件
	setupMiddleware(router, cfg, log)

	// 设置路由
	setupRoutes(router, cfg, log, db)

	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config, log *zap.SugaredLogger) {
	// 基础中间件
	router.Use(customMiddleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.Logger(log))
	router.Use(customMiddleware.Recovery(cfg, log))

	// CORS中间件
	router.Use(customMiddleware.CORS(cfg))

	// 超时中间件（Vercel函数有时间限制）
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	// 压缩中间件
	router.Use(middleware.Compress(5))

	// 请求体限制
	router.Use(customMiddleware.MaxBodySize(cfg.MaxBodyBytes))
	router.Use(customMiddleware.ContentTypeJSON)

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, log *zap.SugaredLogger, db database.DatabaseInterface) {
	collections := store.NewCollectionStore(db)
	entries := store.NewEntryStore(db)

	healthHandler := handlers.NewHealthHandler(log, db)
	collectionsHandler := handlers.NewCollectionsHandler(cfg, log, collections)
	entriesHandler := handlers.NewEntriesHandler(cfg, log, collections, entries)

	// 健康检查端点
	router.Get("/", healthHandler.HealthCheck)

	// API路由组
	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", collectionsHandler.ListCollections)
			r.Post("/", collectionsHandler.CreateCollection)

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", collectionsHandler.GetCollection)
				r.Put("/", collectionsHandler.UpdateCollection)
				r.Patch("/", collectionsHandler.UpdateCollection)
				r.Delete("/", collectionsHandler.DeleteCollection)

				r.Route("/entries", func(r chi.Router) {
					r.Get("/", entriesHandler.ListEntries)
					r.Post("/", entriesHandler.CreateEntry)
					r.Get("/{id}", entriesHandler.GetEntry)
					r.Put("/{id}", entriesHandler.UpdateEntry)
					r.Patch("/{id}", entriesHandler.UpdateEntry)
					r.Delete("/{id}", entriesHandler.DeleteEntry)
				})
			})
		})
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), nil)
	})
}
