// Package speech defines the streaming speech-to-text provider interface and
// the per-session configuration passed to it. The transcription itself is
// delegated entirely to an external service; this package is only the
// boundary.
package speech

import (
	"context"

	"github.com/meetscribe/meetscribe/internal/transcript"
)

// Stream is a live recognition stream. Events are delivered in recognition
// order until the stream is stopped or the underlying connection ends, after
// which the channel is closed.
type Stream interface {
	// Events returns the channel of interim/final recognition events.
	Events() <-chan transcript.Event

	// Stop tears down the streaming connection and the capture resource.
	// It must release both deterministically regardless of normal or error
	// exit, and is safe to call more than once.
	Stop(ctx context.Context) error
}

// Provider is the interface that streaming speech backends must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string

	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool

	// Start opens a recognition stream using the supplied per-session
	// configuration.
	Start(ctx context.Context, cfg Config) (Stream, error)
}
