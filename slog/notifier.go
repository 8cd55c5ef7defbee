package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/webcite"
)

// Ensure Notifier implements webcite.Notifier.
var _ webcite.Notifier = (*Notifier)(nil)

// Notifier delivers notifications as log records at the level matching
// their severity.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier creates a new Notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Notify logs the notification.
func (n *Notifier) Notify(ctx context.Context, notification webcite.Notification) {
	level := slog.LevelInfo
	switch notification.Severity {
	case webcite.SeverityWarning:
		level = slog.LevelWarn
	case webcite.SeverityError:
		level = slog.LevelError
	}
	attrs := []any{}
	if notification.Channel != "" {
		attrs = append(attrs, "channel", notification.Channel)
	}
	n.logger.Log(ctx, level, notification.Message, attrs...)
}
