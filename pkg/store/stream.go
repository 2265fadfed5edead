package store

import "time"

// StreamState tracks an in-flight streaming turn for a session, kept in
// memory so a second stream on the same session can be rejected early.
type StreamState struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

const (
	StreamStatusStarted   = "STARTED"
	StreamStatusStreaming = "STREAMING"
)
