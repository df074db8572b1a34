package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse 统一的错误响应体。
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Blocked bool   `json:"blocked,omitempty"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("failed to encode response", zap.Int("status", status), zap.Error(err))
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondBlocked 发送安全拦截响应
func RespondBlocked(w http.ResponseWriter, message, details string) {
	RespondJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Details: details, Blocked: true})
}
