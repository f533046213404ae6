package notify

import (
	"context"
	"errors"
)

// ErrUnregistered signals a permanently invalid device token. It is the only
// transport outcome that may cause a stored token to be cleared.
var ErrUnregistered = errors.New("device token is not registered")

// Priority of a push message. High priority wakes the device.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Message is one push notification addressed to a single device token.
type Message struct {
	Token     string
	Title     string
	Body      string
	Data      map[string]string
	Priority  Priority
	ChannelID string
	Sound     string
}

// Transport sends a single push message. Implementations map their native
// "token no longer valid" condition onto ErrUnregistered.
type Transport interface {
	// Send delivers one message. A nil error means accepted by the transport.
	Send(ctx context.Context, msg *Message) error
	// Validate performs a dry-run send to probe a token without delivering
	// anything. Returns ErrUnregistered for permanently invalid tokens.
	Validate(ctx context.Context, token string) error
}
