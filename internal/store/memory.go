package store

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/zhouzirui/raadhya/backend/internal/model/chat"
	"github.com/zhouzirui/raadhya/backend/internal/model/code"
	"github.com/zhouzirui/raadhya/backend/internal/model/security"
)

// MemoryStore keeps everything in process memory for the lifetime of the process.
type MemoryStore struct {
	mu         sync.RWMutex
	now        func() time.Time
	sessions   map[string]chat.Session
	messages   []chat.Message
	events     []security.Event
	executions []code.Execution

	nextMessageID   int64
	nextEventID     int64
	nextExecutionID int64
}

// NewMemoryStore bootstraps an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:             func() time.Time { return time.Now().UTC() },
		sessions:        make(map[string]chat.Session),
		messages:        make([]chat.Message, 0, 64),
		nextMessageID:   1,
		nextEventID:     1,
		nextExecutionID: 1,
	}
}

func (s *MemoryStore) CreateSession(_ context.Context, id string) (chat.Session, error) {
	session := chat.NewSession(id, s.now())

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	return session, nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return chat.Session{}, ErrNotFound
	}
	return session, nil
}

func (s *MemoryStore) TouchSession(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.LastActivity = at
		s.sessions[id] = session
	}
	return nil
}

func (s *MemoryStore) CreateMessage(_ context.Context, msg chat.Message) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextMessageID
	s.nextMessageID++
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	msg.Metadata = maps.Clone(msg.Metadata)

	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	matched := lo.Filter(s.messages, func(m chat.Message, _ int) bool {
		return m.SessionID == sessionID
	})
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})
	return matched, nil
}

func (s *MemoryStore) CreateSecurityEvent(_ context.Context, event security.Event) (security.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = s.nextEventID
	s.nextEventID++
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}

	s.events = append(s.events, event)
	return event, nil
}

func (s *MemoryStore) ListSecurityEvents(_ context.Context, sessionID string) ([]security.Event, error) {
	s.mu.RLock()
	matched := lo.Filter(s.events, func(e security.Event, _ int) bool {
		return e.SessionID == sessionID
	})
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	return matched, nil
}

func (s *MemoryStore) SecurityStats(_ context.Context) (security.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return security.Stats{
		ThreatsBlocked: lo.CountBy(s.events, func(e security.Event) bool { return e.Blocked }),
		SafeSessions:   len(s.sessions),
	}, nil
}

func (s *MemoryStore) CreateCodeExecution(_ context.Context, exec code.Execution) (code.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exec.ID = s.nextExecutionID
	s.nextExecutionID++
	if exec.Timestamp.IsZero() {
		exec.Timestamp = s.now()
	}

	s.executions = append(s.executions, exec)
	return exec, nil
}

func (s *MemoryStore) ListCodeExecutions(_ context.Context, sessionID string) ([]code.Execution, error) {
	s.mu.RLock()
	matched := lo.Filter(s.executions, func(e code.Execution, _ int) bool {
		return e.SessionID == sessionID
	})
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	return matched, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
