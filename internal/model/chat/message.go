package chat

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is an immutable conversation turn.
type Message struct {
	ID        int64          `json:"id"`
	Content   string         `json:"content"`
	Role      Role           `json:"role"`
	SessionID string         `json:"sessionId"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}
