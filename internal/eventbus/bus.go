package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/fotoowl-gallery-api/internal/observability"
)

const (
	originLocal  = "local"
	originRemote = "remote"
)

// Handler reacts to a bus event. A returned error is logged; it never stops
// delivery to the remaining handlers.
type Handler func(ctx context.Context, evt Event) error

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is an in-process publish/subscribe hub with an optional relay to
// sibling contexts.
type Bus struct {
	mu        sync.RWMutex
	handlers  map[Kind][]subscription
	nextID    uint64
	transport Transport
	nodeID    string
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// New builds a bus. A nil transport keeps every event inside this process.
func New(transport Transport, logger zerolog.Logger) *Bus {
	return &Bus{
		handlers:  make(map[Kind][]subscription),
		transport: transport,
		nodeID:    uuid.NewString(),
		logger:    logger.With().Str("component", "event_bus").Logger(),
		tracer:    observability.Tracer("eventbus"),
		now:       time.Now,
	}
}

// NodeID identifies this context on the relay.
func (b *Bus) NodeID() string {
	return b.nodeID
}

// Subscribe registers handler for kind and returns a function removing it.
func (b *Bus) Subscribe(kind Kind, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[kind] = append(b.handlers[kind], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			subs := b.handlers[kind]
			for i, sub := range subs {
				if sub.id == id {
					b.handlers[kind] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(b.handlers[kind]) == 0 {
				delete(b.handlers, kind)
			}
		})
	}
}

// Publish delivers evt synchronously to this process's handlers in
// registration order.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	b.dispatch(ctx, evt, originLocal)
}

// Broadcast publishes locally and relays evt to sibling contexts. The local
// delivery happens even when the relay fails.
func (b *Bus) Broadcast(ctx context.Context, evt Event) error {
	spanCtx, span := b.tracer.Start(ctx, "bus.broadcast", trace.WithAttributes(
		attribute.String("event.kind", string(evt.Kind())),
		attribute.String("event.image_id", evt.ImageID()),
	))
	defer span.End()

	var relayErr error
	if b.transport != nil {
		relayErr = b.send(spanCtx, evt)
		if relayErr != nil {
			span.RecordError(relayErr)
		}
	}

	b.dispatch(spanCtx, evt, originLocal)
	return relayErr
}

// Start consumes the transport until ctx is done. Without a transport it is a no-op.
func (b *Bus) Start(ctx context.Context) error {
	if b.transport == nil {
		return nil
	}

	messages, err := b.transport.Receive(ctx)
	if err != nil {
		return fmt.Errorf("start event relay: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				b.receive(ctx, msg)
			}
		}
	}()
	return nil
}

func (b *Bus) send(ctx context.Context, evt Event) error {
	payload, err := EncodeEnvelope(NewEnvelope(b.nodeID, evt, b.now()))
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", evt.Kind(), err)
	}
	if err := b.transport.Send(ctx, string(evt.Kind()), payload); err != nil {
		return err
	}
	return nil
}

func (b *Bus) receive(ctx context.Context, msg Message) {
	kind, ok := ParseKind(msg.Name)
	if !ok {
		return
	}

	env, err := DecodeEnvelope(msg.Payload)
	if err != nil {
		observability.MalformedRecords().WithLabelValues("relay").Inc()
		b.logger.Warn().Err(err).Str("slot", msg.Name).Msg("dropping relayed event")
		return
	}
	if env.Source == b.nodeID {
		return
	}
	if env.Kind != kind {
		observability.MalformedRecords().WithLabelValues("relay").Inc()
		b.logger.Warn().Str("slot", msg.Name).Str("kind", string(env.Kind)).Msg("event kind does not match slot")
		return
	}

	evt, err := env.Event()
	if err != nil {
		observability.MalformedRecords().WithLabelValues("relay").Inc()
		b.logger.Warn().Err(err).Msg("dropping relayed event")
		return
	}

	b.dispatch(ctx, evt, originRemote)
}

func (b *Bus) dispatch(ctx context.Context, evt Event, origin string) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[evt.Kind()]...)
	b.mu.RUnlock()

	observability.BusEvents().WithLabelValues(string(evt.Kind()), origin).Inc()

	for _, sub := range subs {
		b.invoke(ctx, sub.handler, evt)
	}
}

func (b *Bus) invoke(ctx context.Context, handler Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			observability.BusHandlerFailures().WithLabelValues(string(evt.Kind())).Inc()
			b.logger.Error().
				Err(fmt.Errorf("%v", r)).
				Str("kind", string(evt.Kind())).
				Str("image_id", evt.ImageID()).
				Msg("event handler panicked")
		}
	}()

	if err := handler(ctx, evt); err != nil {
		observability.BusHandlerFailures().WithLabelValues(string(evt.Kind())).Inc()
		b.logger.Warn().Err(err).Str("kind", string(evt.Kind())).Str("image_id", evt.ImageID()).Msg("event handler failed")
	}
}
