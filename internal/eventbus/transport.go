package eventbus

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/noah-isme/fotoowl-gallery-api/internal/store"
)

// DefaultNamespace prefixes the store slots used for cross-context events.
const DefaultNamespace = "gallery-"

const (
	slotSeparator = "/"
	// slotRing bounds the slots one transport cycles through per event kind.
	// A sibling must read a slot before this many later sends reuse it.
	slotRing = 256
)

// Message is a payload received from a sibling context. Name is the event
// slot with any namespace removed.
type Message struct {
	Name    string
	Payload []byte
}

// Transport carries envelopes between contexts. Delivery is best effort and
// reaches only contexts that are running when the message is sent.
type Transport interface {
	Send(ctx context.Context, name string, payload []byte) error
	Receive(ctx context.Context) (<-chan Message, error)
}

// WatchableStore is a store whose writes can be observed.
type WatchableStore interface {
	store.Store
	store.Watcher
}

// StoreTransport relays events through slots of the durable store, so every
// process watching the same store picks them up. Each send goes to its own
// slot "<namespace><name>/<instance>-<n>" so a burst of sends is not collapsed
// into the last value by watchers that read a slot after the change notice.
type StoreTransport struct {
	store     WatchableStore
	namespace string
	instance  string
	seq       atomic.Uint64
}

// NewStoreTransport builds a transport over st.
func NewStoreTransport(st WatchableStore, namespace string) *StoreTransport {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &StoreTransport{store: st, namespace: namespace, instance: uuid.NewString()}
}

// Send writes the payload to the next slot for name.
func (t *StoreTransport) Send(ctx context.Context, name string, payload []byte) error {
	if err := t.store.Set(ctx, t.slotKey(name), payload); err != nil {
		return fmt.Errorf("write event slot %q: %w", name, err)
	}
	return nil
}

func (t *StoreTransport) slotKey(name string) string {
	n := (t.seq.Add(1) - 1) % slotRing
	return fmt.Sprintf("%s%s%s%s-%d", t.namespace, name, slotSeparator, t.instance, n)
}

// slotName maps a store key back to the event name; ok is false for keys
// outside the namespace.
func slotName(key, namespace string) (string, bool) {
	if !strings.HasPrefix(key, namespace) {
		return "", false
	}
	name := strings.TrimPrefix(key, namespace)
	if i := strings.Index(name, slotSeparator); i >= 0 {
		name = name[:i]
	}
	return name, name != ""
}

// Receive turns writes to namespaced slots into messages.
func (t *StoreTransport) Receive(ctx context.Context) (<-chan Message, error) {
	changes, err := t.store.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("watch event slots: %w", err)
	}

	messages := make(chan Message, cap(changes))
	go func() {
		defer close(messages)
		for change := range changes {
			name, ok := slotName(change.Key, t.namespace)
			if !ok {
				continue
			}
			select {
			case messages <- Message{Name: name, Payload: change.Value}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return messages, nil
}
