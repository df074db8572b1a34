package session

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatService "github.com/zhouzirui/raadhya/backend/internal/service/chat"
	"github.com/zhouzirui/raadhya/backend/pkg/utils"
)

// Handler 会话相关的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	logger  *zap.Logger
}

// New 创建会话处理器
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	return &Handler{chatSvc: chatSvc, logger: logger}
}

// RegisterRoutes 注册会话路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions/{id}", h.handleGetSession)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		h.logger.Error("create session failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, chatService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		h.logger.Error("get session failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}
