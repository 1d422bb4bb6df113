package protocol

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/wagiedev/sass-embedded-go/internal/config"
	"github.com/wagiedev/sass-embedded-go/internal/errors"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// script plays the compiler: it receives each message the host sends and
// returns the messages the compiler answers with.
type script func(in message.InboundMessage) []message.OutboundMessage

// mockTransport is an in-memory compiler. Every message passes through the
// protocol 2 packet codec in both directions, so compilation ids reach the
// host only through the frame.
type mockTransport struct {
	mu      sync.Mutex
	script  script
	sent    []message.InboundMessage
	pending []message.OutboundMessage
	sendErr error
	closed  bool

	// overlap is set when a new request arrives before the previous
	// exchange was fully consumed.
	overlap bool
}

var _ config.Transport = (*mockTransport)(nil)

func newMockTransport(s script) *mockTransport {
	return &mockTransport{script: s}
}

func (m *mockTransport) Start(context.Context) error { return nil }

func (m *mockTransport) Send(_ context.Context, msg message.InboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return &errors.TransportError{Op: "send", Err: errors.ErrTransportClosed}
	}

	if m.sendErr != nil {
		return m.sendErr
	}

	id, b, err := message.MarshalInboundPacket(msg, message.Protocol2)
	if err != nil {
		return err
	}

	decoded, err := message.UnmarshalInboundPacket(id, b, message.Protocol2)
	if err != nil {
		return err
	}

	switch decoded.(type) {
	case *message.CompileRequest, *message.VersionRequest:
		if len(m.pending) > 0 {
			m.overlap = true
		}
	}

	m.sent = append(m.sent, decoded)
	m.pending = append(m.pending, m.script(decoded)...)

	return nil
}

func (m *mockTransport) Receive(context.Context) (message.OutboundMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		return nil, &errors.TransportError{Op: "receive", Err: io.EOF}
	}

	msg := m.pending[0]
	m.pending = m.pending[1:]

	if msg == nil {
		return nil, nil
	}

	id, b, err := message.MarshalOutboundPacket(msg, message.Protocol2)
	if err != nil {
		return nil, fmt.Errorf("mock compiler sent an unencodable message: %w", err)
	}

	return message.UnmarshalOutboundPacket(id, b, message.Protocol2)
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

func (m *mockTransport) sentMessages() []message.InboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]message.InboundMessage(nil), m.sent...)
}

// versionResponse answers a VersionRequest the way Dart Sass does.
func versionResponse(id uint32) *message.VersionResponse {
	return &message.VersionResponse{
		ID:                    id,
		ProtocolVersion:       "2.7.1",
		CompilerVersion:       "1.77.0",
		ImplementationVersion: "1.77.0",
		ImplementationName:    "dart-sass",
	}
}

// answerVersion handles VersionRequests and defers everything else to next.
func answerVersion(next script) script {
	return func(in message.InboundMessage) []message.OutboundMessage {
		if req, ok := in.(*message.VersionRequest); ok {
			return []message.OutboundMessage{versionResponse(req.ID)}
		}

		if next == nil {
			return nil
		}

		return next(in)
	}
}
