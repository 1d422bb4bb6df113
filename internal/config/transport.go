// Package config provides configuration types for the Sass embedded host.
package config

import (
	"context"

	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// Transport defines the interface for communicating with the compiler.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., a compiler behind a socket).
//
// The default implementation is ProcessTransport which spawns a subprocess.
// Custom transports can be injected via Options.Transport.
type Transport interface {
	// Start initializes the transport and prepares it for communication.
	// This is called before any messages are sent or received.
	Start(ctx context.Context) error

	// Send writes one whole message to the compiler.
	Send(ctx context.Context, msg message.InboundMessage) error

	// Receive blocks until the compiler sends one whole message. A nil
	// message with a nil error means the frame carried no known variant.
	Receive(ctx context.Context) (message.OutboundMessage, error)

	// Close terminates the transport and releases resources.
	// It's safe to call Close multiple times.
	Close() error
}
