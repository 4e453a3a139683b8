package events

import "time"

// CurveChangedEvent carries the state of a session's curve after a recompute.
// RSquared is nil when the value is undefined.
type CurveChangedEvent struct {
	SessionID      string    `json:"session_id"`
	Order          int       `json:"order"`
	Mode           string    `json:"mode"`
	Coefficients   []float64 `json:"coefficients"`
	ChiSquared     float64   `json:"chi_squared"`
	RSquared       *float64  `json:"r_squared"`
	RelevantPoints int       `json:"relevant_points"`
	Degenerate     bool      `json:"degenerate,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// SessionEvent announces a session being created or deleted.
type SessionEvent struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}
