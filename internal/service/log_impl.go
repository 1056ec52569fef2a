package service

import (
	"context"

	"go.uber.org/zap"
)

// logNotifier writes the message to the log instead of delivering it.
// It backs --dry-run.
type logNotifier struct {
	channel string
	log     *zap.Logger
}

// NewLogNotifier creates a Notifier that only logs what channel would have sent.
func NewLogNotifier(channel string, log *zap.Logger) Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &logNotifier{channel: channel, log: log}
}

func (n *logNotifier) Name() string {
	return "log"
}

func (n *logNotifier) Send(_ context.Context, message string) error {
	n.log.Info("Dry-run: notification not sent",
		zap.String("channel", n.channel),
		zap.String("message", message))
	return nil
}
