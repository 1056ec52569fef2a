package service

import "time"

// Timeout constants for notification channels
const (
	// DefaultHTTPTimeout bounds a bot API call
	DefaultHTTPTimeout = 30 * time.Second
	// DefaultSMTPTimeout bounds dialing and talking to the SMTP relay
	DefaultSMTPTimeout = 30 * time.Second
	// DefaultTelegramAPIURL is the public bot API endpoint
	DefaultTelegramAPIURL = "https://api.telegram.org"
	// maxErrorBody caps how much of an error response is read
	maxErrorBody = 4 << 10
)
