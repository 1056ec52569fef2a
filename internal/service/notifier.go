package service

import "context"

// Notifier delivers one plain-text release announcement.
//
// Send makes exactly one delivery attempt; failures wrap domain.ErrNotify.
type Notifier interface {
	Name() string
	Send(ctx context.Context, message string) error
}
