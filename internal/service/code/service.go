// Package code screens submitted snippets and records simulated runs.
package code

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhouzirui/raadhya/backend/internal/analysis/threat"
	"github.com/zhouzirui/raadhya/backend/internal/metrics"
	"github.com/zhouzirui/raadhya/backend/internal/model/code"
	"github.com/zhouzirui/raadhya/backend/internal/model/security"
	securityService "github.com/zhouzirui/raadhya/backend/internal/service/security"
	"github.com/zhouzirui/raadhya/backend/internal/store"
)

// Request is a validated execution request.
type Request struct {
	SessionID string
	Code      string
	Language  string
}

// EventRecorder persists and broadcasts security events.
type EventRecorder interface {
	Record(ctx context.Context, event security.Event) (security.Event, error)
}

type Service struct {
	store      store.Store
	classifier *threat.Classifier
	events     EventRecorder
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewService(st store.Store, classifier *threat.Classifier, events EventRecorder, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, classifier: classifier, events: events, metrics: m, logger: logger}
}

// Execute screens the code and, when allowed, stores a simulated run.
// Blocked code yields *security.BlockedError and no execution record.
func (s *Service) Execute(ctx context.Context, req Request) (code.Execution, error) {
	verdict := s.classifier.Classify(req.Code)
	if verdict.ShouldBlock {
		s.metrics.ThreatDetected(string(threat.CategoryMaliciousCode), string(security.SeverityHigh))
		if _, err := s.events.Record(ctx, security.Event{
			SessionID:   req.SessionID,
			EventType:   string(threat.CategoryMaliciousCode),
			Severity:    security.SeverityHigh,
			Description: "Potentially malicious code execution blocked",
			Blocked:     true,
		}); err != nil {
			s.metrics.CodeExecution(metrics.OutcomeFailed)
			return code.Execution{}, err
		}

		s.metrics.CodeExecution(metrics.OutcomeBlocked)
		s.logger.Warn("code execution blocked",
			zap.String("session_id", req.SessionID),
			zap.String("language", req.Language),
			zap.String("rule_id", verdict.RuleID))
		return code.Execution{}, &securityService.BlockedError{Verdict: verdict}
	}

	exec, err := s.store.CreateCodeExecution(ctx, code.Execution{
		SessionID: req.SessionID,
		Code:      req.Code,
		Language:  req.Language,
		Output:    code.OptionalText(Simulate(req.Language, req.Code)),
		IsSafe:    true,
	})
	if err != nil {
		s.metrics.CodeExecution(metrics.OutcomeFailed)
		return code.Execution{}, fmt.Errorf("store code execution: %w", err)
	}

	s.metrics.CodeExecution(metrics.OutcomeAccepted)
	return exec, nil
}

// History lists a session's executions newest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]code.Execution, error) {
	execs, err := s.store.ListCodeExecutions(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list code executions: %w", err)
	}
	return execs, nil
}
