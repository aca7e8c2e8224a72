package eventbus

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const natsBufferSize = 64

// NATSTransport relays events over a NATS subject tree. Every subscriber gets
// every message; there is no queue group.
type NATSTransport struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSTransport builds a transport publishing under subject (for example
// "fotoowl.events").
func NewNATSTransport(conn *nats.Conn, subject string, logger zerolog.Logger) *NATSTransport {
	if subject == "" {
		subject = "fotoowl.events"
	}
	return &NATSTransport{
		conn:    conn,
		subject: strings.TrimSuffix(subject, "."),
		logger:  logger.With().Str("component", "nats_transport").Logger(),
	}
}

// Send implements Transport.
func (t *NATSTransport) Send(_ context.Context, name string, payload []byte) error {
	if err := t.conn.Publish(t.subject+"."+name, payload); err != nil {
		return fmt.Errorf("publish %q: %w", name, err)
	}
	return nil
}

// Receive implements Transport.
func (t *NATSTransport) Receive(ctx context.Context) (<-chan Message, error) {
	messages := make(chan Message, natsBufferSize)
	prefix := t.subject + "."

	sub, err := t.conn.Subscribe(prefix+">", func(msg *nats.Msg) {
		select {
		case messages <- Message{Name: strings.TrimPrefix(msg.Subject, prefix), Payload: msg.Data}:
		default:
			t.logger.Warn().Str("subject", msg.Subject).Msg("dropping event for slow relay")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %q: %w", t.subject, err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			t.logger.Warn().Err(err).Msg("failed to drain event subscription")
		}
	}()

	return messages, nil
}
