package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/raadhya/backend/internal/analysis/reply"
	"github.com/zhouzirui/raadhya/backend/internal/analysis/threat"
	"github.com/zhouzirui/raadhya/backend/internal/config"
	"github.com/zhouzirui/raadhya/backend/internal/handler"
	"github.com/zhouzirui/raadhya/backend/internal/logging"
	"github.com/zhouzirui/raadhya/backend/internal/metrics"
	"github.com/zhouzirui/raadhya/backend/internal/middleware"
	"github.com/zhouzirui/raadhya/backend/internal/service/chat"
	"github.com/zhouzirui/raadhya/backend/internal/service/code"
	"github.com/zhouzirui/raadhya/backend/internal/service/security"
	"github.com/zhouzirui/raadhya/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Warn("no .env file loaded, continuing with system environment variables only", zap.Error(envErr))
	}

	st, err := store.Open(cfg.Store.Driver, cfg.Store.SQLitePath, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", string(cfg.Store.Driver)), zap.Error(err))
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()
	logger.Info("store ready", zap.String("driver", string(cfg.Store.Driver)))

	responder := reply.Default()
	if cfg.Reply.TemplateDir != "" {
		templates, err := reply.LoadTemplates(cfg.Reply.TemplateDir)
		if err != nil {
			logger.Fatal("failed to load reply templates", zap.String("dir", cfg.Reply.TemplateDir), zap.Error(err))
		}
		responder = reply.NewResponder(reply.DefaultRoutes(), templates)
		logger.Info("reply templates loaded", zap.String("dir", cfg.Reply.TemplateDir))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled() {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.PerMinute)
	}

	classifier := threat.Default()
	securitySvc := security.NewService(st, security.NewHub(logger), logger)
	chatSvc := chat.NewService(st, classifier, responder, securitySvc, m, logger)
	codeSvc := code.NewService(st, classifier, securitySvc, m, logger)

	router := handler.NewRouter(handler.Dependencies{
		Store:          st,
		ChatSvc:        chatSvc,
		CodeSvc:        codeSvc,
		SecuritySvc:    securitySvc,
		Metrics:        m,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		// live event streams end when shutdown begins
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	logger.Info("Raadhya backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
