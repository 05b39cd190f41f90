package domain

import "time"

// ActivityType enumerates the audit events emitted by the core.
type ActivityType string

const (
	ActivityAccountRegistered ActivityType = "account.registered"
	ActivityLoginSuccess      ActivityType = "auth.login.success"
	ActivityLoginFailure      ActivityType = "auth.login.failure"
)

// ActivityEvent is an audit record. It never carries submitted credentials;
// a failed login records only the failure reason.
type ActivityEvent struct {
	Type       ActivityType `json:"type"`
	UserID     string       `json:"user_id,omitempty"`
	Username   string       `json:"username,omitempty"`
	Reason     string       `json:"reason,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// ShardKey picks the value used to keep one account's events in order.
func (e ActivityEvent) ShardKey() string {
	if e.UserID != "" {
		return e.UserID
	}
	return string(e.Type)
}
