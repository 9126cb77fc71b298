// Package api holds the response envelope shared by every endpoint and the
// request DTOs validated at the boundary.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"expensio/internal/apperr"
	"expensio/internal/logger"
)

// Response is the success envelope.
type Response struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
}

// ErrorResponse is the error envelope. Message never carries server internals.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		data = struct{}{}
	}
	if err := json.NewEncoder(w).Encode(Response{
		Success:    true,
		StatusCode: status,
		Data:       data,
		Message:    message,
	}); err != nil {
		logger.Error("encode response", zap.Error(err))
	}
}

// WriteError logs the full cause server-side and returns only the
// status-coded message to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)

	if appErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	} else {
		logger.Info("request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", appErr.Status),
			zap.String("reason", appErr.Message),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Status:  appErr.Status,
		Message: appErr.Message,
	}); encErr != nil {
		logger.Error("encode error response", zap.Error(encErr))
	}
}
