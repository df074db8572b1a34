package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/raadhya/backend/internal/analysis/reply"
	"github.com/zhouzirui/raadhya/backend/internal/analysis/threat"
	"github.com/zhouzirui/raadhya/backend/internal/metrics"
	"github.com/zhouzirui/raadhya/backend/internal/model/chat"
	"github.com/zhouzirui/raadhya/backend/internal/model/security"
	securityService "github.com/zhouzirui/raadhya/backend/internal/service/security"
	"github.com/zhouzirui/raadhya/backend/internal/store"
)

var ErrSessionNotFound = errors.New("session not found")

// EventRecorder persists and broadcasts security events.
type EventRecorder interface {
	Record(ctx context.Context, event security.Event) (security.Event, error)
}

// Service runs the screen-then-reply pipeline for chat messages.
type Service struct {
	store      store.Store
	classifier *threat.Classifier
	responder  *reply.Responder
	events     EventRecorder
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires the chat pipeline. metrics may be nil.
func NewService(st store.Store, classifier *threat.Classifier, responder *reply.Responder, events EventRecorder, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      st,
		classifier: classifier,
		responder:  responder,
		events:     events,
		metrics:    m,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession provisions an anonymous, protected session.
func (s *Service) CreateSession(ctx context.Context) (chat.Session, error) {
	session, err := s.store.CreateSession(ctx, uuid.NewString())
	if err != nil {
		return chat.Session{}, fmt.Errorf("create session: %w", err)
	}
	s.logger.Info("session created", zap.String("session_id", session.ID))
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(ctx context.Context, sessionID string) (chat.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return chat.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return chat.Session{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// LoadTranscript returns stored messages for the provided session, oldest first.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	messages, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// Submit screens text, stores it with a canned reply and returns the reply.
// A blocked message is not stored and yields *security.BlockedError.
func (s *Service) Submit(ctx context.Context, sessionID, text string) (chat.Message, error) {
	if err := s.store.TouchSession(ctx, sessionID, s.now()); err != nil {
		return chat.Message{}, fmt.Errorf("touch session: %w", err)
	}

	verdict := s.classifier.Classify(text)
	if verdict.IsThreat {
		s.metrics.ThreatDetected(string(verdict.ThreatType), string(verdict.Severity))
		_, err := s.events.Record(ctx, security.Event{
			SessionID:   sessionID,
			EventType:   string(verdict.ThreatType),
			Severity:    verdict.Severity,
			Description: fmt.Sprintf("Detected threat in message: %s", verdict.ThreatType),
			Blocked:     verdict.ShouldBlock,
		})
		if err != nil {
			s.metrics.ChatMessage(metrics.OutcomeFailed)
			return chat.Message{}, err
		}
	}

	if verdict.ShouldBlock {
		s.metrics.ChatMessage(metrics.OutcomeBlocked)
		s.logger.Warn("chat message blocked",
			zap.String("session_id", sessionID),
			zap.String("threat_type", string(verdict.ThreatType)),
			zap.String("rule_id", verdict.RuleID))
		return chat.Message{}, &securityService.BlockedError{Verdict: verdict}
	}

	if _, err := s.store.CreateMessage(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleUser,
		Content:   text,
		Metadata:  map[string]any{"threatDetected": verdict.IsThreat},
	}); err != nil {
		s.metrics.ChatMessage(metrics.OutcomeFailed)
		return chat.Message{}, fmt.Errorf("store user message: %w", err)
	}

	answer := s.responder.Respond(text)
	assistant, err := s.store.CreateMessage(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleAssistant,
		Content:   answer.Content,
		Metadata: map[string]any{
			"generatedAt": s.now().Format(time.RFC3339),
			"template":    string(answer.Template),
		},
	})
	if err != nil {
		s.metrics.ChatMessage(metrics.OutcomeFailed)
		return chat.Message{}, fmt.Errorf("store assistant message: %w", err)
	}

	s.metrics.ChatMessage(metrics.OutcomeAccepted)
	s.logger.Debug("chat reply generated",
		zap.String("session_id", sessionID),
		zap.String("template", string(answer.Template)))
	return assistant, nil
}
