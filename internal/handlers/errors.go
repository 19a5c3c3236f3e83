package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/service"
)

// handleServiceError writes err as a JSON error body. Business errors keep
// their code; anything else becomes a 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		logger.Error("HTTP: service error", err,
			zap.String("operation", operation),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, service.CodeInternal, operation+" failed")
		return
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	if statusCode >= http.StatusInternalServerError {
		logger.Error("HTTP: service error", err,
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code))
	} else {
		logger.Warn("HTTP: business error",
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))
	}

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
