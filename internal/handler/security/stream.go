package security

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/raadhya/backend/pkg/utils"
)

// handleStream pushes a session's new security events as Server-Sent Events.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sessionID := chi.URLParam(r, "sessionId")
	events, unsubscribe := h.securitySvc.Hub().Subscribe(sessionID)
	defer unsubscribe()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	h.logger.Debug("opening security stream", zap.String("session_id", sessionID))

	if err := utils.SendSSEEvent(w, flusher, "status", map[string]any{
		"message":   "stream established",
		"sessionId": sessionID,
	}); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("closing security stream", zap.String("session_id", sessionID))
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, "security_event", event); err != nil {
				return
			}
		case t := <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat "+t.UTC().Format(time.RFC3339)); err != nil {
				return
			}
		}
	}
}
