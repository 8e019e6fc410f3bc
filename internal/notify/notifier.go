// Package notify delivers user-facing alerts. The core decides when a
// notification fires and with what content; rendering is the dispatcher's
// problem.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier displays one alert to the user.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// LogNotifier writes notifications to the application log. It is the
// fallback dispatcher when no Telegram credentials are configured, and is
// handy in tests.
type LogNotifier struct {
	log *zap.SugaredLogger
}

func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, title, body string) error {
	n.log.Infow("notification", "title", title, "body", body)
	return nil
}
