package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	chatHandler "github.com/zhouzirui/raadhya/backend/internal/handler/chat"
	codeHandler "github.com/zhouzirui/raadhya/backend/internal/handler/code"
	securityHandler "github.com/zhouzirui/raadhya/backend/internal/handler/security"
	sessionHandler "github.com/zhouzirui/raadhya/backend/internal/handler/session"
	"github.com/zhouzirui/raadhya/backend/internal/metrics"
	middlewarePkg "github.com/zhouzirui/raadhya/backend/internal/middleware"
	chatService "github.com/zhouzirui/raadhya/backend/internal/service/chat"
	codeService "github.com/zhouzirui/raadhya/backend/internal/service/code"
	securityService "github.com/zhouzirui/raadhya/backend/internal/service/security"
	"github.com/zhouzirui/raadhya/backend/internal/store"
	"github.com/zhouzirui/raadhya/backend/pkg/utils"
)

// Dependencies groups everything the router wires together.
// Metrics and RateLimiter are optional.
type Dependencies struct {
	Store          store.Store
	ChatSvc        *chatService.Service
	CodeSvc        *codeService.Service
	SecuritySvc    *securityService.Service
	Metrics        *metrics.Metrics
	RateLimiter    *middlewarePkg.RateLimiter
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))
	r.Use(middleware.Heartbeat("/health"))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.Ping(r.Context()); err != nil {
			logger.Warn("readiness check failed", zap.Error(err))
			utils.RespondError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(api chi.Router) {
		if deps.RateLimiter != nil {
			api.Use(deps.RateLimiter.Middleware)
		}

		sessionHandler.New(deps.ChatSvc, logger).RegisterRoutes(api)
		chatHandler.New(deps.ChatSvc, logger).RegisterRoutes(api)
		codeHandler.New(deps.CodeSvc, logger).RegisterRoutes(api)
		securityHandler.New(deps.SecuritySvc, deps.AllowedOrigins, logger).RegisterRoutes(api)
	})

	return r
}
