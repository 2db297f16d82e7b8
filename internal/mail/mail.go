// Package mail delivers outbound email through a transactional provider.
package mail

import (
	"context"
	"errors"
	"fmt"
)

// Message is a provider-neutral email.
type Message struct {
	To      string
	From    string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// ErrNotConfigured is returned by providers missing credentials they need
// before they can even attempt a send.
var ErrNotConfigured = errors.New("mail provider not configured")

// ProviderError is a non-2xx answer from the provider API.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}
