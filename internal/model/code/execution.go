package code

import "time"

// Execution is the persisted result of a simulated code run.
// Output and Error are nil when empty.
type Execution struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	Code      string    `json:"code"`
	Language  string    `json:"language"`
	Output    *string   `json:"output"`
	Error     *string   `json:"error"`
	Timestamp time.Time `json:"timestamp"`
	IsSafe    bool      `json:"isSafe"`
}

// OptionalText converts an empty string to nil.
func OptionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
