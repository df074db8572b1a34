package chat

import "time"

// Session groups the messages and security events of one client conversation.
type Session struct {
	ID           string    `json:"id"`
	ThreatLevel  int       `json:"threatLevel"`
	IsProtected  bool      `json:"isProtected"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// NewSession returns a session with the defaults every new conversation starts with.
func NewSession(id string, now time.Time) Session {
	return Session{
		ID:           id,
		ThreatLevel:  0,
		IsProtected:  true,
		CreatedAt:    now,
		LastActivity: now,
	}
}
