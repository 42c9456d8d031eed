// Package audit records authentication events and serves them back for review.
//
// A Recorder fans each event out to any number of sinks (SQLite, MQTT,
// InfluxDB). Sink failures are logged and never reach the authentication flow.
package audit

import "time"

// Action identifies the authentication flow that produced an event.
type Action string

// Recorded actions.
const (
	ActionLogin    Action = "login"
	ActionRefresh  Action = "refresh"
	ActionRegister Action = "register"
)

// Outcome is the result of an authentication attempt.
type Outcome string

// Recorded outcomes.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is a single authentication audit entry.
// It never carries passwords or tokens.
type Event struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Outcome   Outcome   `json:"outcome"`
	ActorID   string    `json:"actor_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
