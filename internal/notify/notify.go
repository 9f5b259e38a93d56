package notify

import (
	"context"

	"go.uber.org/zap"
)

// Sender delivers a notification message to a recipient address. Delivery
// is best effort: callers treat a failed send as a warning, not an error,
// so account flows never fail because a mail relay is down.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogSender writes notifications to the application log instead of
// delivering them. It is the default sender for local development.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(_ context.Context, recipient, subject, body string) error {
	zap.L().Info("Notification dispatched",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}
