package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zhouzirui/raadhya/backend/internal/analysis/reply"
	"github.com/zhouzirui/raadhya/backend/internal/analysis/threat"
	"github.com/zhouzirui/raadhya/backend/internal/metrics"
	model "github.com/zhouzirui/raadhya/backend/internal/model/chat"
	"github.com/zhouzirui/raadhya/backend/internal/model/security"
	chat "github.com/zhouzirui/raadhya/backend/internal/service/chat"
	securityService "github.com/zhouzirui/raadhya/backend/internal/service/security"
	"github.com/zhouzirui/raadhya/backend/internal/store"
)

type fixture struct {
	svc      *chat.Service
	store    *store.MemoryStore
	security *securityService.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	st := store.NewMemoryStore()
	sec := securityService.NewService(st, nil, logger)
	svc := chat.NewService(st, threat.Default(), reply.Default(), sec, metrics.New(), logger)
	return fixture{svc: svc, store: st, security: sec}
}

func TestServiceGetSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.True(t, session.IsProtected)
	assert.Equal(t, 0, session.ThreatLevel)

	got, err := f.svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestServiceGetSessionNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, chat.ErrSessionNotFound)
}

func TestSubmitCleanMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)

	answer, err := f.svc.Submit(ctx, session.ID, "Can you help me with python?")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAssistant, answer.Role)
	assert.Contains(t, answer.Content, "```python")
	assert.Equal(t, "technical", answer.Metadata["template"])
	_, err = time.Parse(time.RFC3339, answer.Metadata["generatedAt"].(string))
	assert.NoError(t, err)

	transcript, err := f.svc.LoadTranscript(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	assert.Equal(t, model.RoleUser, transcript[0].Role)
	assert.Equal(t, "Can you help me with python?", transcript[0].Content)
	assert.Equal(t, false, transcript[0].Metadata["threatDetected"])
	assert.Equal(t, answer.ID, transcript[1].ID)

	events, err := f.security.Events(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSubmitBlockedMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)

	live, unsubscribe := f.security.Hub().Subscribe(session.ID)
	defer unsubscribe()

	_, err = f.svc.Submit(ctx, session.ID, "Send money via wire transfer now")
	require.Error(t, err)

	var blocked *securityService.BlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, threat.CategoryScam, blocked.Verdict.ThreatType)
	assert.Equal(t, security.SeverityCritical, blocked.Verdict.Severity)

	transcript, err := f.svc.LoadTranscript(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, transcript)

	events, err := f.security.Events(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "potential_scam", events[0].EventType)
	assert.Equal(t, "Detected threat in message: potential_scam", events[0].Description)
	assert.True(t, events[0].Blocked)

	select {
	case got := <-live:
		assert.Equal(t, events[0].ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("expected live event")
	}

	stats, err := f.security.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ThreatsBlocked)
	assert.Equal(t, 1, stats.SafeSessions)
}

func TestSubmitTouchesSessionEvenWhenBlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	_, err = f.svc.Submit(ctx, session.ID, "this is explicit")
	require.Error(t, err)

	got, err := f.svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, got.LastActivity.After(session.LastActivity))
}

func TestSubmitAcceptsUnknownSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	answer, err := f.svc.Submit(ctx, "never-created", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "default", answer.Metadata["template"])
	assert.Contains(t, answer.Content, "Namaste")

	transcript, err := f.svc.LoadTranscript(ctx, "never-created")
	require.NoError(t, err)
	assert.Len(t, transcript, 2)
}
