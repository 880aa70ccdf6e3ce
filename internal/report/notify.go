package report

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the structured log instead of
// delivering them. Used until an outbound mail relay is wired up.
type LogNotifier struct {
	Logger *slog.Logger
}

// Send logs the notification at info level.
func (n *LogNotifier) Send(_ context.Context, msg Notification) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
