package security

import "time"

// Severity ranks a security event.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// Event records a flagged message or code submission.
type Event struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"sessionId"`
	EventType   string    `json:"eventType"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Blocked     bool      `json:"blocked"`
}

// Stats summarises protection activity across all sessions.
type Stats struct {
	ThreatsBlocked int `json:"threatsBlocked"`
	SafeSessions   int `json:"safeSessions"`
}
