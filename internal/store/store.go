// Package store persists sessions, messages, security events and code executions.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/zhouzirui/raadhya/backend/internal/model/chat"
	"github.com/zhouzirui/raadhya/backend/internal/model/code"
	"github.com/zhouzirui/raadhya/backend/internal/model/security"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the append-only persistence contract. Records referencing a
// session are accepted whether or not that session exists.
type Store interface {
	// CreateSession stores a new session with default fields.
	CreateSession(ctx context.Context, id string) (chat.Session, error)

	// GetSession returns ErrNotFound for unknown ids.
	GetSession(ctx context.Context, id string) (chat.Session, error)

	// TouchSession sets LastActivity. Unknown ids are ignored.
	TouchSession(ctx context.Context, id string, at time.Time) error

	// CreateMessage assigns the next id and, when unset, the timestamp.
	CreateMessage(ctx context.Context, msg chat.Message) (chat.Message, error)

	// ListMessages returns the session's messages oldest first.
	ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error)

	// CreateSecurityEvent assigns the next id and, when unset, the timestamp.
	CreateSecurityEvent(ctx context.Context, event security.Event) (security.Event, error)

	// ListSecurityEvents returns the session's events newest first.
	ListSecurityEvents(ctx context.Context, sessionID string) ([]security.Event, error)

	// SecurityStats counts blocked events and sessions across the whole store.
	SecurityStats(ctx context.Context) (security.Stats, error)

	// CreateCodeExecution assigns the next id and, when unset, the timestamp.
	CreateCodeExecution(ctx context.Context, exec code.Execution) (code.Execution, error)

	// ListCodeExecutions returns the session's executions newest first.
	ListCodeExecutions(ctx context.Context, sessionID string) ([]code.Execution, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
