package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"headless-cms-backend/pkg/config"
	"headless-cms-backend/pkg/utils"
)

// Recovery 恢复中间件，处理panic并返回友好的错误信息
func Recovery(cfg *config.Config, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				// 记录panic信息
				log.Errorw("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)

				if cfg.IsProduction() {
					// 生产环境：隐藏详细错误信息
					utils.WriteInternalServerErrorResponse(w, "Internal server error occurred")
					return
				}
				utils.WriteInternalServerErrorResponse(w, fmt.Sprintf("Internal server error: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
