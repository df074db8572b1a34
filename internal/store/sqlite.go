package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/zhouzirui/raadhya/backend/internal/model/chat"
	"github.com/zhouzirui/raadhya/backend/internal/model/code"
	"github.com/zhouzirui/raadhya/backend/internal/model/security"
)

const schema = `
PRAGMA busy_timeout = 5000;
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	threat_level INTEGER NOT NULL DEFAULT 0,
	is_protected INTEGER NOT NULL DEFAULT 1,
	created_at INTEGER NOT NULL,
	last_activity INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	metadata TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);

CREATE TABLE IF NOT EXISTS security_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	severity TEXT NOT NULL,
	description TEXT NOT NULL,
	blocked INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_security_events_session ON security_events(session_id, created_at);

CREATE TABLE IF NOT EXISTS code_executions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	code TEXT NOT NULL,
	language TEXT NOT NULL,
	output TEXT,
	error TEXT,
	is_safe INTEGER NOT NULL DEFAULT 1,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_code_executions_session ON code_executions(session_id, created_at);
`

// SQLiteStore implements Store on a SQLite database file.
// Timestamps are stored as unix nanoseconds.
type SQLiteStore struct {
	db     *sql.DB
	now    func() time.Time
	logger *zap.Logger
}

// NewSQLite opens (and creates when missing) the database at dbPath.
func NewSQLite(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}, nil
}

func (s *SQLiteStore) CreateSession(ctx context.Context, id string) (chat.Session, error) {
	session := chat.NewSession(id, s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, threat_level, is_protected, created_at, last_activity) VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.ThreatLevel, session.IsProtected,
		session.CreatedAt.UnixNano(), session.LastActivity.UnixNano(),
	)
	if err != nil {
		return chat.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (chat.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, threat_level, is_protected, created_at, last_activity FROM sessions WHERE id = ?`, id)

	var session chat.Session
	var createdAt, lastActivity int64
	err := row.Scan(&session.ID, &session.ThreatLevel, &session.IsProtected, &createdAt, &lastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Session{}, ErrNotFound
	}
	if err != nil {
		return chat.Session{}, fmt.Errorf("scan session: %w", err)
	}

	session.CreatedAt = fromNanos(createdAt)
	session.LastActivity = fromNanos(lastActivity)
	return session, nil
}

func (s *SQLiteStore) TouchSession(ctx context.Context, id string, at time.Time) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE sessions SET last_activity = ? WHERE id = ?`, at.UnixNano(), id); err != nil {
		return fmt.Errorf("update last_activity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}

	var metadata any
	if msg.Metadata != nil {
		raw, err := json.Marshal(msg.Metadata)
		if err != nil {
			return chat.Message{}, fmt.Errorf("encode metadata: %w", err)
		}
		metadata = string(raw)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.SessionID, string(msg.Role), msg.Content, metadata, msg.Timestamp.UnixNano(),
	)
	if err != nil {
		return chat.Message{}, fmt.Errorf("insert message: %w", err)
	}
	if msg.ID, err = res.LastInsertId(); err != nil {
		return chat.Message{}, fmt.Errorf("message id: %w", err)
	}
	return msg, nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, metadata, created_at
		 FROM messages WHERE session_id = ? ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer s.closeRows(rows, "messages")

	messages := make([]chat.Message, 0)
	for rows.Next() {
		var msg chat.Message
		var role string
		var metadata sql.NullString
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = chat.Role(role)
		msg.Timestamp = fromNanos(createdAt)
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &msg.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for message %d: %w", msg.ID, err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func (s *SQLiteStore) CreateSecurityEvent(ctx context.Context, event security.Event) (security.Event, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO security_events (session_id, event_type, severity, description, blocked, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.SessionID, event.EventType, string(event.Severity), event.Description, event.Blocked,
		event.Timestamp.UnixNano(),
	)
	if err != nil {
		return security.Event{}, fmt.Errorf("insert security event: %w", err)
	}
	if event.ID, err = res.LastInsertId(); err != nil {
		return security.Event{}, fmt.Errorf("security event id: %w", err)
	}
	return event, nil
}

func (s *SQLiteStore) ListSecurityEvents(ctx context.Context, sessionID string) ([]security.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, event_type, severity, description, blocked, created_at
		 FROM security_events WHERE session_id = ? ORDER BY created_at DESC, id DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query security events: %w", err)
	}
	defer s.closeRows(rows, "security_events")

	events := make([]security.Event, 0)
	for rows.Next() {
		var event security.Event
		var severity string
		var createdAt int64
		if err := rows.Scan(&event.ID, &event.SessionID, &event.EventType, &severity,
			&event.Description, &event.Blocked, &createdAt); err != nil {
			return nil, fmt.Errorf("scan security event: %w", err)
		}
		event.Severity = security.Severity(severity)
		event.Timestamp = fromNanos(createdAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate security events: %w", err)
	}
	return events, nil
}

func (s *SQLiteStore) SecurityStats(ctx context.Context) (security.Stats, error) {
	var stats security.Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM security_events WHERE blocked = 1), (SELECT COUNT(*) FROM sessions)`,
	).Scan(&stats.ThreatsBlocked, &stats.SafeSessions)
	if err != nil {
		return security.Stats{}, fmt.Errorf("query security stats: %w", err)
	}
	return stats, nil
}

func (s *SQLiteStore) CreateCodeExecution(ctx context.Context, exec code.Execution) (code.Execution, error) {
	if exec.Timestamp.IsZero() {
		exec.Timestamp = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO code_executions (session_id, code, language, output, error, is_safe, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		exec.SessionID, exec.Code, exec.Language, exec.Output, exec.Error, exec.IsSafe,
		exec.Timestamp.UnixNano(),
	)
	if err != nil {
		return code.Execution{}, fmt.Errorf("insert code execution: %w", err)
	}
	if exec.ID, err = res.LastInsertId(); err != nil {
		return code.Execution{}, fmt.Errorf("code execution id: %w", err)
	}
	return exec, nil
}

func (s *SQLiteStore) ListCodeExecutions(ctx context.Context, sessionID string) ([]code.Execution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, code, language, output, error, is_safe, created_at
		 FROM code_executions WHERE session_id = ? ORDER BY created_at DESC, id DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query code executions: %w", err)
	}
	defer s.closeRows(rows, "code_executions")

	executions := make([]code.Execution, 0)
	for rows.Next() {
		var exec code.Execution
		var output, execErr sql.NullString
		var createdAt int64
		if err := rows.Scan(&exec.ID, &exec.SessionID, &exec.Code, &exec.Language,
			&output, &execErr, &exec.IsSafe, &createdAt); err != nil {
			return nil, fmt.Errorf("scan code execution: %w", err)
		}
		if output.Valid {
			exec.Output = &output.String
		}
		if execErr.Valid {
			exec.Error = &execErr.String
		}
		exec.Timestamp = fromNanos(createdAt)
		executions = append(executions, exec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate code executions: %w", err)
	}
	return executions, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func (s *SQLiteStore) closeRows(rows *sql.Rows, table string) {
	if err := rows.Close(); err != nil {
		s.logger.Warn("failed to close rows", zap.String("table", table), zap.Error(err))
	}
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
