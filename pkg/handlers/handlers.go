package handlers

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"headless-cms-backend/pkg/config"
	"headless-cms-backend/pkg/middleware"
	"headless-cms-backend/pkg/utils"
)

// decodeBody 解析JSON请求体；空请求体视为 {}
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := utils.ParseJSONBody(r, v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.WriteErrorResponseWithCode(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
			"Request body too large", nil)
		return false
	}
	utils.WriteBadRequestResponse(w, "Invalid JSON body")
	return false
}

// writeError maps err onto a response; unclassified errors are logged.
func writeError(w http.ResponseWriter, r *http.Request, cfg *config.Config, log *zap.SugaredLogger, err error) {
	if utils.StatusFor(err) == http.StatusInternalServerError {
		log.Errorw("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
	}
	utils.WriteAppError(w, err, cfg.IsProduction())
}
