package code

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zhouzirui/raadhya/backend/internal/analysis/threat"
	"github.com/zhouzirui/raadhya/backend/internal/model/code"
	codeService "github.com/zhouzirui/raadhya/backend/internal/service/code"
	securityService "github.com/zhouzirui/raadhya/backend/internal/service/security"
	"github.com/zhouzirui/raadhya/backend/internal/store"
)

func setupRouter(t *testing.T) *chi.Mux {
	logger := zaptest.NewLogger(t)
	st := store.NewMemoryStore()
	sec := securityService.NewService(st, nil, logger)
	svc := codeService.NewService(st, threat.Default(), sec, nil, logger)

	r := chi.NewRouter()
	New(svc, logger).RegisterRoutes(r)
	return r
}

func execute(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/code/execute", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestExecute(t *testing.T) {
	r := setupRouter(t)

	resp := execute(r, `{"code":"print('Jai')","language":"python","sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var exec code.Execution
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &exec))
	require.NotNil(t, exec.Output)
	assert.Equal(t, "Jai\n", *exec.Output)
	assert.True(t, exec.IsSafe)
	assert.Contains(t, resp.Body.String(), `"error":null`)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/code/executions/s1", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var history []code.Execution
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, exec.ID, history[0].ID)
}

func TestExecuteValidation(t *testing.T) {
	r := setupRouter(t)

	for name, body := range map[string]string{
		"malformed":        `not json`,
		"missing code":     `{"language":"python","sessionId":"s1"}`,
		"empty code":       `{"code":"","language":"python","sessionId":"s1"}`,
		"missing language": `{"code":"x","sessionId":"s1"}`,
		"missing session":  `{"code":"x","language":"python"}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp := execute(r, body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
			assert.JSONEq(t, `{"error":"Invalid code execution request"}`, resp.Body.String())
		})
	}
}

func TestExecuteBlocked(t *testing.T) {
	r := setupRouter(t)

	resp := execute(r, `{"code":"import os  # exploit","language":"python","sessionId":"s1"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"Code execution blocked for safety","blocked":true}`, resp.Body.String())

	history := httptest.NewRecorder()
	r.ServeHTTP(history, httptest.NewRequest(http.MethodGet, "/code/executions/s1", nil))
	assert.Equal(t, "[]\n", history.Body.String())
}

func TestExecuteRejectsOversizedBody(t *testing.T) {
	r := setupRouter(t)

	resp := execute(r, `{"code":"`+strings.Repeat("x", 1<<20)+`","language":"python","sessionId":"s1"}`)
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.Code)
	}
	assert.JSONEq(t, `{"error":"Request body too large"}`, resp.Body.String())

	history := httptest.NewRecorder()
	r.ServeHTTP(history, httptest.NewRequest(http.MethodGet, "/code/executions/s1", nil))
	assert.Equal(t, "[]\n", history.Body.String())
}
