// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// AuthQueueName is the durable queue carrying authentication audit events.
const AuthQueueName = "auth.events"

// Event types published by the session and user services.
const (
    EventUserRegistered  = "user.registered"
    EventLogin           = "session.login"
    EventLoginFailed     = "session.login_failed"
    EventLogout          = "session.logout"
    EventPasswordChanged = "user.password_changed"
)

// AuthEvent is published whenever an account or session changes state.  It
// carries enough information for the audit worker to write a log line without
// querying the primary database.  Secrets and tokens are never included.
type AuthEvent struct {
    Type       string `json:"type"`
    UserID     string `json:"user_id,omitempty"`
    Username   string `json:"username,omitempty"`
    OccurredAt string `json:"occurred_at"`
    RemoteIP   string `json:"remote_ip,omitempty"`
}

// NewAuthEvent stamps an event with the given time in RFC 3339 UTC.
func NewAuthEvent(typ, userID, username string, at time.Time) AuthEvent {
    return AuthEvent{
        Type:       typ,
        UserID:     userID,
        Username:   username,
        OccurredAt: at.UTC().Format(time.RFC3339),
    }
}
