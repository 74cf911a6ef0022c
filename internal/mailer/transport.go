package mailer

import (
	"context"
	"fmt"
)

// Transport delivers composed messages.
type Transport interface {
	// Send delivers msg and returns the provider message id.
	Send(ctx context.Context, msg *Message) (string, error)
	// Check verifies credentials and returns the authenticated account.
	Check(ctx context.Context) (string, error)
}

// SendError represents a failed delivery. Message is the provider's reason.
type SendError struct {
	Transport string
	Recipient string
	Message   string
	Cause     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s send to %s failed: %s", e.Transport, e.Recipient, e.Message)
}

func (e *SendError) Unwrap() error {
	return e.Cause
}
