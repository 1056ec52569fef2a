package service

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEmailNotifier(t *testing.T, opts EmailOptions) *emailNotifier {
	t.Helper()
	notifier, err := NewEmailNotifier(opts, zap.NewNop())
	require.NoError(t, err)
	return notifier.(*emailNotifier)
}

func TestNewEmailNotifier(t *testing.T) {
	t.Run("Should list every missing setting", func(t *testing.T) {
		_, err := NewEmailNotifier(EmailOptions{SMTPServer: "smtp.example.com"}, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrMissingConfig))
		assert.Contains(t, err.Error(), "recipient, hostname, password")
	})
	t.Run("Should use the hostname as sender and username", func(t *testing.T) {
		n := newTestEmailNotifier(t, EmailOptions{
			SMTPServer: "smtp.example.com",
			Recipient:  "ops@example.com",
			Hostname:   "bot@example.com",
			Password:   "pw",
		})
		assert.Equal(t, "bot@example.com", n.from)
		assert.Equal(t, "bot@example.com", n.username)
		assert.Equal(t, implicitTLSPort, n.port)
		assert.Equal(t, DefaultSMTPTimeout, n.timeout)
		assert.Equal(t, "email", n.Name())
	})
}

func TestEmailNotifier_buildMessage(t *testing.T) {
	t.Run("Should address one recipient with the configured subject", func(t *testing.T) {
		n := newTestEmailNotifier(t, EmailOptions{
			SMTPServer: "smtp.example.com",
			Recipient:  "ops@example.com",
			Hostname:   "bot@example.com",
			Password:   "pw",
			Subject:    "New version of Nearcore just came out",
		})
		msg, err := n.buildMessage("https://github.com/near/nearcore/releases/tag/1.39.1")
		require.NoError(t, err)
		rcpts, err := msg.GetRecipients()
		require.NoError(t, err)
		assert.Equal(t, []string{"ops@example.com"}, rcpts)
		assert.Equal(t, []string{"New version of Nearcore just came out"}, msg.GetGenHeader(mail.HeaderSubject))
	})
	t.Run("Should reject a malformed recipient", func(t *testing.T) {
		n := newTestEmailNotifier(t, EmailOptions{
			SMTPServer: "smtp.example.com",
			Recipient:  "not an address",
			Hostname:   "bot@example.com",
			Password:   "pw",
		})
		_, err := n.buildMessage("body")
		assert.ErrorContains(t, err, "invalid recipient")
	})
}

func TestEmailNotifier_Send(t *testing.T) {
	t.Run("Should wrap connection failures as notify errors", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := ln.Addr().(*net.TCPAddr).Port
		require.NoError(t, ln.Close())
		n := newTestEmailNotifier(t, EmailOptions{
			SMTPServer: "127.0.0.1",
			Port:       port,
			Timeout:    time.Second,
			Recipient:  "ops@example.com",
			Hostname:   "bot@example.com",
			Password:   "pw",
		})
		err = n.Send(context.Background(), "body")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotify))
	})
}

func TestLogNotifier_Send(t *testing.T) {
	t.Run("Should log the message instead of sending it", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		n := NewLogNotifier("telegram", zap.New(core))
		require.NoError(t, n.Send(context.Background(), "hello"))
		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "hello", entry.ContextMap()["message"])
		assert.Equal(t, "telegram", entry.ContextMap()["channel"])
		assert.Equal(t, "log", n.Name())
	})
}
