// Package security records security events and serves protection statistics.
package security

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhouzirui/raadhya/backend/internal/analysis/threat"
	"github.com/zhouzirui/raadhya/backend/internal/model/security"
	"github.com/zhouzirui/raadhya/backend/internal/store"
)

// BlockedError reports that a submission was refused by the classifier.
type BlockedError struct {
	Verdict threat.Verdict
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked: %s (%s)", e.Verdict.ThreatType, e.Verdict.Severity)
}

// IsBlocked reports whether err wraps a *BlockedError.
func IsBlocked(err error) bool {
	var blocked *BlockedError
	return errors.As(err, &blocked)
}

// Service persists events and publishes them to the hub.
type Service struct {
	store  store.Store
	hub    *Hub
	logger *zap.Logger
}

// NewService wires the security service.
func NewService(st store.Store, hub *Hub, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hub == nil {
		hub = NewHub(logger)
	}
	return &Service{store: st, hub: hub, logger: logger}
}

// Hub returns the live event hub.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Record stores event and, once stored, publishes it.
func (s *Service) Record(ctx context.Context, event security.Event) (security.Event, error) {
	stored, err := s.store.CreateSecurityEvent(ctx, event)
	if err != nil {
		return security.Event{}, fmt.Errorf("create security event: %w", err)
	}

	s.logger.Info("security event recorded",
		zap.String("session_id", stored.SessionID),
		zap.String("event_type", stored.EventType),
		zap.String("severity", string(stored.Severity)),
		zap.Bool("blocked", stored.Blocked))

	s.hub.Publish(stored)
	return stored, nil
}

// Stats returns the global protection counters.
func (s *Service) Stats(ctx context.Context) (security.Stats, error) {
	stats, err := s.store.SecurityStats(ctx)
	if err != nil {
		return security.Stats{}, fmt.Errorf("security stats: %w", err)
	}
	return stats, nil
}

// Events lists a session's events newest first.
func (s *Service) Events(ctx context.Context, sessionID string) ([]security.Event, error) {
	events, err := s.store.ListSecurityEvents(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list security events: %w", err)
	}
	return events, nil
}
