package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatService "github.com/zhouzirui/raadhya/backend/internal/service/chat"
	securityService "github.com/zhouzirui/raadhya/backend/internal/service/security"
	"github.com/zhouzirui/raadhya/backend/pkg/utils"
)

const (
	maxMessageLength = 5000
	// 5000 characters of four-byte UTF-8 plus the JSON envelope fit well below this.
	maxBodySize = 64 << 10

	blockedMessage = "Message blocked for safety"
	blockedDetails = "Your message was blocked by our divine protection systems. Please ensure your request is appropriate and constructive."
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	logger  *zap.Logger
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	return &Handler{chatSvc: chatSvc, logger: logger}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleSubmit)
	r.Get("/chat/{sessionId}", h.handleHistory)
}

type submitRequest struct {
	Message   *string `json:"message"`
	SessionID *string `json:"sessionId"`
}

func (p submitRequest) valid() bool {
	if p.Message == nil || p.SessionID == nil {
		return false
	}
	n := utf8.RuneCountInString(*p.Message)
	return n >= 1 && n <= maxMessageLength
}

// handleSubmit 处理用户消息并返回助手回复
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if !payload.valid() {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	reply, err := h.chatSvc.Submit(r.Context(), *payload.SessionID, *payload.Message)
	if securityService.IsBlocked(err) {
		utils.RespondBlocked(w, blockedMessage, blockedDetails)
		return
	}
	if err != nil {
		h.logger.Error("submit chat message failed", zap.String("session_id", *payload.SessionID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

// handleHistory 返回会话的完整消息记录
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.logger.Error("load transcript failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to get messages")
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}
