package security

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/raadhya/backend/internal/middleware"
	securityService "github.com/zhouzirui/raadhya/backend/internal/service/security"
	"github.com/zhouzirui/raadhya/backend/pkg/utils"
)

const defaultHeartbeat = 15 * time.Second

// Handler 安全统计与实时事件的HTTP处理器
type Handler struct {
	securitySvc *securityService.Service
	logger      *zap.Logger
	upgrader    websocket.Upgrader
	heartbeat   time.Duration
}

// New 创建安全处理器，WebSocket 握手沿用 CORS 的来源白名单。
func New(securitySvc *securityService.Service, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		securitySvc: securitySvc,
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		heartbeat: defaultHeartbeat,
	}
}

// RegisterRoutes 注册安全相关路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/security/stats", h.handleStats)
	r.Get("/security/events/{sessionId}", h.handleEvents)
	r.Get("/security/events/{sessionId}/stream", h.handleStream)
	r.Get("/security/ws", h.handleWebSocket)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.securitySvc.Stats(r.Context())
	if err != nil {
		h.logger.Error("security stats failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to get security stats")
		return
	}
	utils.RespondJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.securitySvc.Events(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.logger.Error("security events failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to get security events")
		return
	}
	utils.RespondJSON(w, http.StatusOK, events)
}
