package webcite

import "context"

// Severity classifies a notification.
type Severity string

// Severity levels.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a message for the user.
type Notification struct {
	Channel  string
	Message  string
	Severity Severity
}

// Notifier delivers messages to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
