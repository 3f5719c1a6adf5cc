package handler

import (
	"context"
	"net/http"
	"sync"

	"headless-cms-backend/pkg/config"
	"headless-cms-backend/pkg/logger"
	"headless-cms-backend/pkg/server"
	"headless-cms-backend/pkg/utils"
)

// 冷启动时构建一次，热调用复用同一个路由器和连接池
var (
	app     *server.App
	appErr  error
	appOnce sync.Once
)

// Handler 是Vercel函数的入口点
// 这个函数实现了"单体路由模式"，将所有API端点集中在一个Chi路由器中管理
func Handler(w http.ResponseWriter, r *http.Request) {
	appOnce.Do(func() {
		// 加载配置
		cfg := config.GetCached()
		log := logger.Must(cfg.Debug)
		app, appErr = server.NewApp(context.Background(), cfg, log)
		if appErr != nil {
			log.Errorw("failed to start application", "error", appErr)
		}
	})

	if appErr != nil {
		utils.WriteInternalServerErrorResponse(w, "Service unavailable: startup failed")
		return
	}

	// 将请求传递给Chi路由器处理
	app.Handler.ServeHTTP(w, r)
}
