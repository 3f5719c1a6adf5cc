package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"headless-cms-backend/pkg/database"
	"headless-cms-backend/pkg/utils"
)

type HealthHandler struct {
	log *zap.SugaredLogger
	db  database.DatabaseInterface
}

func NewHealthHandler(log *zap.SugaredLogger, db database.DatabaseInterface) *HealthHandler {
	return &HealthHandler{log: log, db: db}
}

// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"database":  "ok",
		"driver":    h.db.Dialect().DriverName(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.log.Warnw("database health check failed", "error", err)
		status["status"] = "degraded"
		status["database"] = "unreachable"
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, status)
		return
	}
	utils.WriteSuccessResponse(w, status)
}
