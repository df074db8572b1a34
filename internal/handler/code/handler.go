package code

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	codeService "github.com/zhouzirui/raadhya/backend/internal/service/code"
	securityService "github.com/zhouzirui/raadhya/backend/internal/service/security"
	"github.com/zhouzirui/raadhya/backend/pkg/utils"
)

const maxBodySize = 64 << 10

// Handler 代码执行的HTTP处理器
type Handler struct {
	codeSvc *codeService.Service
	logger  *zap.Logger
}

// New 创建代码执行处理器
func New(codeSvc *codeService.Service, logger *zap.Logger) *Handler {
	return &Handler{codeSvc: codeSvc, logger: logger}
}

// RegisterRoutes 注册代码执行路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/code/execute", h.handleExecute)
	r.Get("/code/executions/{sessionId}", h.handleHistory)
}

type executeRequest struct {
	Code      *string `json:"code"`
	Language  *string `json:"language"`
	SessionID *string `json:"sessionId"`
}

func (p executeRequest) toRequest() (codeService.Request, bool) {
	if p.Code == nil || *p.Code == "" || p.Language == nil || p.SessionID == nil {
		return codeService.Request{}, false
	}
	return codeService.Request{SessionID: *p.SessionID, Code: *p.Code, Language: *p.Language}, true
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var payload executeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "Invalid code execution request")
		return
	}
	req, ok := payload.toRequest()
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid code execution request")
		return
	}

	exec, err := h.codeSvc.Execute(r.Context(), req)
	if securityService.IsBlocked(err) {
		utils.RespondBlocked(w, "Code execution blocked for safety", "")
		return
	}
	if err != nil {
		h.logger.Error("code execution failed", zap.String("session_id", req.SessionID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to execute code")
		return
	}

	utils.RespondJSON(w, http.StatusOK, exec)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	execs, err := h.codeSvc.History(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.logger.Error("list code executions failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to get code executions")
		return
	}
	utils.RespondJSON(w, http.StatusOK, execs)
}
