package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/compozy/releasewatch/internal/domain"
	"go.uber.org/zap"
)

// telegramNotifier sends messages through the Telegram bot API.
type telegramNotifier struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
	log     *zap.Logger
}

// TelegramOptions configures NewTelegramNotifier.
type TelegramOptions struct {
	Token   string
	ChatID  string
	BaseURL string
	Timeout time.Duration
	// HTTPClient replaces the default client, mostly for tests.
	HTTPClient *http.Client
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramNotifier creates a Notifier for the bot channel.
func NewTelegramNotifier(opts TelegramOptions, log *zap.Logger) (Notifier, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("%w: bot api token cannot be empty", domain.ErrMissingConfig)
	}
	if strings.TrimSpace(opts.ChatID) == "" {
		return nil, fmt.Errorf("%w: chat id cannot be empty", domain.ErrMissingConfig)
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultTelegramAPIURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &telegramNotifier{
		client:  client,
		baseURL: baseURL,
		token:   strings.TrimSpace(opts.Token),
		chatID:  strings.TrimSpace(opts.ChatID),
		log:     log,
	}, nil
}

func (n *telegramNotifier) Name() string {
	return "telegram"
}

// Send posts {chat_id, text} to /bot<token>/sendMessage.
func (n *telegramNotifier) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: n.chatID, Text: message})
	if err != nil {
		return fmt.Errorf("%w: failed to encode telegram message: %w", domain.ErrNotify, err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to build telegram request: %s", domain.ErrNotify, n.redact(err))
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to send telegram message: %s", domain.ErrNotify, n.redact(err))
	}
	defer resp.Body.Close()
	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: telegram answered %s%s", domain.ErrNotify, resp.Status, describeTelegram(data))
	}
	if readErr != nil {
		n.log.Warn("Failed to read telegram response", zap.Error(readErr))
		return nil
	}
	var parsed telegramResponse
	if err := json.Unmarshal(data, &parsed); err == nil && !parsed.OK {
		return fmt.Errorf("%w: telegram rejected the message%s", domain.ErrNotify, describeTelegram(data))
	}
	n.log.Debug("Telegram message accepted", zap.String("chat_id", n.chatID))
	return nil
}

// redact removes the bot token from transport errors, which embed the URL.
func (n *telegramNotifier) redact(err error) string {
	var msg string
	if err != nil {
		msg = err.Error()
	}
	if n.token == "" {
		return msg
	}
	return strings.ReplaceAll(msg, n.token, "<redacted>")
}

func describeTelegram(data []byte) string {
	var parsed telegramResponse
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.Description == "" {
		return ""
	}
	return ": " + parsed.Description
}
