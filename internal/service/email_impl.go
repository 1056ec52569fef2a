package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// implicitTLSPort is the SMTP submission port that expects TLS from the first byte.
const implicitTLSPort = 465

// emailNotifier sends one plain-text mail through an authenticated SMTP relay.
type emailNotifier struct {
	host      string
	port      int
	timeout   time.Duration
	from      string
	recipient string
	username  string
	password  string
	subject   string
	log       *zap.Logger
}

// EmailOptions configures NewEmailNotifier.
type EmailOptions struct {
	SMTPServer string
	Port       int
	Timeout    time.Duration
	Recipient  string
	// Hostname doubles as the sender address and the SMTP username.
	Hostname string
	Password string
	Subject  string
}

// NewEmailNotifier creates a Notifier for the email channel.
func NewEmailNotifier(opts EmailOptions, log *zap.Logger) (Notifier, error) {
	var missing []string
	if strings.TrimSpace(opts.SMTPServer) == "" {
		missing = append(missing, "smtp server")
	}
	if strings.TrimSpace(opts.Recipient) == "" {
		missing = append(missing, "recipient")
	}
	if strings.TrimSpace(opts.Hostname) == "" {
		missing = append(missing, "hostname")
	}
	if opts.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: email channel needs %s", domain.ErrMissingConfig, strings.Join(missing, ", "))
	}
	port := opts.Port
	if port <= 0 {
		port = implicitTLSPort
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultSMTPTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	hostname := strings.TrimSpace(opts.Hostname)
	return &emailNotifier{
		host:      strings.TrimSpace(opts.SMTPServer),
		port:      port,
		timeout:   timeout,
		from:      hostname,
		recipient: strings.TrimSpace(opts.Recipient),
		username:  hostname,
		password:  opts.Password,
		subject:   opts.Subject,
		log:       log,
	}, nil
}

func (n *emailNotifier) Name() string {
	return "email"
}

// Send builds the message and delivers it synchronously.
func (n *emailNotifier) Send(ctx context.Context, message string) error {
	msg, err := n.buildMessage(message)
	if err != nil {
		return fmt.Errorf("%w: failed to build email: %w", domain.ErrNotify, err)
	}
	client, err := mail.NewClient(n.host, n.clientOptions()...)
	if err != nil {
		return fmt.Errorf("%w: failed to configure smtp client: %w", domain.ErrNotify, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: failed to send email via %s:%d: %w", domain.ErrNotify, n.host, n.port, err)
	}
	n.log.Debug("Email accepted by relay", zap.String("smtp_server", n.host), zap.String("recipient", n.recipient))
	return nil
}

// buildMessage creates a single-sender, single-recipient plain-text message.
func (n *emailNotifier) buildMessage(message string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", n.from, err)
	}
	if err := msg.To(n.recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", n.recipient, err)
	}
	msg.Subject(n.subject)
	msg.SetBodyString(mail.TypeTextPlain, message)
	return msg, nil
}

func (n *emailNotifier) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(n.port),
		mail.WithTimeout(n.timeout),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.username),
		mail.WithPassword(n.password),
	}
	if n.port == implicitTLSPort {
		return append(opts, mail.WithSSL())
	}
	return append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
}
