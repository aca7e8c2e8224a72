package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestFileStoreKeysAreEscaped(t *testing.T) {
	st := newMemoryStore()
	ctx := context.Background()

	key := ReactionsKey("photos/abc?x=1")
	require.NoError(t, st.Set(ctx, key, []byte(`[]`)))

	raw, err := st.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(raw))

	_, err = st.Get(ctx, ReactionsKey("photos"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreOverwrites(t *testing.T) {
	st := newMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, KeyTheme, []byte(`"light"`)))
	require.NoError(t, st.Set(ctx, KeyTheme, []byte(`"dark"`)))

	raw, err := st.Get(ctx, KeyTheme)
	require.NoError(t, err)
	require.Equal(t, `"dark"`, string(raw))
}

func TestMemoryFileStoreCannotWatch(t *testing.T) {
	_, err := newMemoryStore().Watch(context.Background())
	require.ErrorIs(t, err, ErrWatchUnsupported)
}

func TestFileStoreWatchSeesWritesFromAnotherStore(t *testing.T) {
	dir := t.TempDir()
	writer, err := OpenFileStore(dir, zerolog.Nop())
	require.NoError(t, err)
	observer, err := OpenFileStore(dir, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := observer.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, writer.Set(ctx, "gallery-reaction-added", []byte(`{"id":"r1"}`)))

	select {
	case change := <-changes:
		require.Equal(t, "gallery-reaction-added", change.Key)
		require.JSONEq(t, `{"id":"r1"}`, string(change.Value))
	case <-time.After(3 * time.Second):
		t.Fatal("expected change notification")
	}

	raw, err := observer.Get(ctx, "gallery-reaction-added")
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"r1"}`, string(raw))
}
