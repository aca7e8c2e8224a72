package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fotoowl-gallery-api/internal/eventbus"
	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
	"github.com/noah-isme/fotoowl-gallery-api/internal/store"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newMemoryStore() *store.FileStore {
	return store.NewFileStore(memfs.New(), testLogger())
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

// sequence returns a deterministic intn that cycles through values.
func sequence(values ...int) intn {
	var mu sync.Mutex
	i := 0
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		v := values[i%len(values)] % n
		i++
		return v
	}
}

type unavailableStore struct{}

func (unavailableStore) Get(context.Context, string) ([]byte, error) {
	return nil, store.ErrUnavailable
}

func (unavailableStore) Set(context.Context, string, []byte) error {
	return store.ErrUnavailable
}

type failingTransport struct{}

func (failingTransport) Send(context.Context, string, []byte) error {
	return errors.New("relay slot rejected write")
}

func (failingTransport) Receive(context.Context) (<-chan eventbus.Message, error) {
	return make(chan eventbus.Message), nil
}

type stubIdentity struct {
	user models.Identity
}

func (s stubIdentity) Ensure(context.Context) models.Identity { return s.user }
func (s stubIdentity) Reset(context.Context) models.Identity  { return s.user }

var (
	userOne = models.Identity{ID: "u1", DisplayName: "Bold Explorer", Color: "#FF6B6B"}
	userTwo = models.Identity{ID: "u2", DisplayName: "Dreamy Artist", Color: "#4ECDC4"}
)

func newMiniredisClient(t *testing.T, server *miniredis.Miniredis) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// localContext wires one gallery process: state, bus, feed and interactions.
type localContext struct {
	state        *AppState
	bus          *eventbus.Bus
	feed         ActivityFeed
	interactions *localInteractionService
}

func newLocalContext(t *testing.T, st store.Store, transport eventbus.Transport, user models.Identity) *localContext {
	t.Helper()
	ctx := context.Background()

	state := LoadAppState(ctx, st, AppStateOptions{PersistActivity: true}, testLogger())
	bus := eventbus.New(transport, testLogger())
	feed := NewLocalActivityFeed(state, stubIdentity{user: user}, testLogger())
	svc := NewLocalInteractionService(st, bus, feed, testLogger()).(*localInteractionService)

	return &localContext{state: state, bus: bus, feed: feed, interactions: svc}
}

func requireOpen(t *testing.T, svc InteractionService, imageID string) ImageInteractions {
	t.Helper()
	session, err := svc.Open(context.Background(), imageID)
	require.NoError(t, err)
	t.Cleanup(session.Close)
	return session
}
