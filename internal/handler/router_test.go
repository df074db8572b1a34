package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zhouzirui/raadhya/backend/internal/analysis/reply"
	"github.com/zhouzirui/raadhya/backend/internal/analysis/threat"
	"github.com/zhouzirui/raadhya/backend/internal/metrics"
	middlewarePkg "github.com/zhouzirui/raadhya/backend/internal/middleware"
	chatService "github.com/zhouzirui/raadhya/backend/internal/service/chat"
	codeService "github.com/zhouzirui/raadhya/backend/internal/service/code"
	securityService "github.com/zhouzirui/raadhya/backend/internal/service/security"
	"github.com/zhouzirui/raadhya/backend/internal/store"
)

func newTestRouter(t *testing.T, limiter *middlewarePkg.RateLimiter) http.Handler {
	logger := zaptest.NewLogger(t)
	st := store.NewMemoryStore()
	m := metrics.New()
	sec := securityService.NewService(st, nil, logger)

	return NewRouter(Dependencies{
		Store:          st,
		ChatSvc:        chatService.NewService(st, threat.Default(), reply.Default(), sec, m, logger),
		CodeSvc:        codeService.NewService(st, threat.Default(), sec, m, logger),
		SecuritySvc:    sec,
		Metrics:        m,
		RateLimiter:    limiter,
		AllowedOrigins: []string{"*"},
		Logger:         logger,
	})
}

func TestRouterHealthAndReady(t *testing.T) {
	r := newTestRouter(t, nil)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"ready"`)
}

func TestRouterEndToEnd(t *testing.T) {
	r := newTestRouter(t, nil)

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp
	}

	require.Equal(t, http.StatusOK, post("/api/sessions", "").Code)
	require.Equal(t, http.StatusOK, post("/api/chat", `{"message":"Teach me meditation","sessionId":"s1"}`).Code)
	require.Equal(t, http.StatusBadRequest, post("/api/chat", `{"message":"lottery inheritance","sessionId":"s1"}`).Code)
	require.Equal(t, http.StatusOK, post("/api/code/execute", `{"code":"x = 1","language":"go","sessionId":"s1"}`).Code)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/security/stats", nil))
	assert.JSONEq(t, `{"threatsBlocked":1,"safeSessions":1}`, resp.Body.String())

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.True(t, strings.Contains(body, `raadhya_chat_messages_total{outcome="accepted"} 1`))
	assert.True(t, strings.Contains(body, `raadhya_chat_messages_total{outcome="blocked"} 1`))
	assert.True(t, strings.Contains(body, `raadhya_code_executions_total{outcome="accepted"} 1`))
	assert.True(t, strings.Contains(body, `route="/api/chat"`))
}

func TestRouterRateLimitsWrites(t *testing.T) {
	r := newTestRouter(t, middlewarePkg.NewRateLimiter(1))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
