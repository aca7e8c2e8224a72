package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
	"github.com/noah-isme/fotoowl-gallery-api/internal/store"
)

func TestLoadAppStateDefaults(t *testing.T) {
	state := LoadAppState(context.Background(), newMemoryStore(), AppStateOptions{}, testLogger())

	_, ok := state.User()
	require.False(t, ok)
	require.Equal(t, models.DefaultPreferences(), state.Preferences())
	require.Empty(t, state.Activity())
	require.Equal(t, DefaultActivityCapacity, state.ActivityCapacity())
}

func TestAppStatePreferencesPersistAcrossReload(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	state := LoadAppState(ctx, st, AppStateOptions{}, testLogger())

	prefs, err := state.ToggleTheme(ctx)
	require.NoError(t, err)
	require.Equal(t, models.ThemeDark, prefs.Theme)
	require.NoError(t, state.SetMoodFilter(ctx, "urban"))
	require.NoError(t, state.SetViewMode(ctx, "masonry"))

	reloaded := LoadAppState(ctx, st, AppStateOptions{}, testLogger())
	require.Equal(t, models.Preferences{Theme: models.ThemeDark, MoodFilter: "urban", ViewMode: "masonry"}, reloaded.Preferences())

	prefs, err = reloaded.ToggleTheme(ctx)
	require.NoError(t, err)
	require.Equal(t, models.ThemeLight, prefs.Theme)
}

func TestAppStateRejectsUnknownPreferences(t *testing.T) {
	ctx := context.Background()
	state := LoadAppState(ctx, newMemoryStore(), AppStateOptions{}, testLogger())

	require.ErrorIs(t, state.SetMoodFilter(ctx, "sepia"), ErrInvalidPreference)
	require.ErrorIs(t, state.SetViewMode(ctx, "list"), ErrInvalidPreference)
	require.ErrorIs(t, state.SetTheme(ctx, "blue"), ErrInvalidPreference)
	require.Equal(t, models.DefaultPreferences(), state.Preferences())
}

func TestAppStateIgnoresMalformedStoredValues(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyUser, []byte(`{"id":`)))
	require.NoError(t, st.Set(ctx, store.KeyMoodFilter, []byte(`"sepia"`)))
	require.NoError(t, st.Set(ctx, store.KeyRecentActivity, []byte(`not json`)))

	state := LoadAppState(ctx, st, AppStateOptions{PersistActivity: true}, testLogger())
	_, ok := state.User()
	require.False(t, ok)
	require.Equal(t, "all", state.Preferences().MoodFilter)
	require.Empty(t, state.Activity())
}

func TestAppStateActivityRingEvictsOldest(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	state := LoadAppState(ctx, st, AppStateOptions{PersistActivity: true}, testLogger())

	for i := 0; i < DefaultActivityCapacity+1; i++ {
		require.NoError(t, state.PrependActivity(ctx, models.Activity{ID: fmt.Sprintf("activity-%d", i), Timestamp: int64(i)}))
	}

	entries := state.Activity()
	require.Len(t, entries, DefaultActivityCapacity)
	require.Equal(t, "activity-50", entries[0].ID)
	require.Equal(t, "activity-1", entries[len(entries)-1].ID, "oldest entry should be evicted")

	reloaded := LoadAppState(ctx, st, AppStateOptions{PersistActivity: true}, testLogger())
	require.Equal(t, entries, reloaded.Activity())
}

func TestAppStateActivityNotPersistedWhenDisabled(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	state := LoadAppState(ctx, st, AppStateOptions{PersistActivity: false}, testLogger())

	require.NoError(t, state.PrependActivity(ctx, models.Activity{ID: "activity-1"}))
	require.Len(t, state.Activity(), 1)

	_, err := st.Get(ctx, store.KeyRecentActivity)
	require.ErrorIs(t, err, store.ErrNotFound)

	reloaded := LoadAppState(ctx, st, AppStateOptions{PersistActivity: false}, testLogger())
	require.Empty(t, reloaded.Activity())
}

func TestAppStateKeepsMemoryStateWhenStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	state := LoadAppState(ctx, unavailableStore{}, AppStateOptions{PersistActivity: true}, testLogger())

	err := state.SetMoodFilter(ctx, "nature")
	require.ErrorIs(t, err, ErrStorageUnavailable)
	require.Equal(t, "nature", state.Preferences().MoodFilter)

	err = state.PrependActivity(ctx, models.Activity{ID: "activity-1"})
	require.ErrorIs(t, err, ErrStorageUnavailable)
	require.Len(t, state.Activity(), 1)
}

func TestAppStateActivityMergesWritersSharingTheStore(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()
	opts := AppStateOptions{PersistActivity: true}

	first := LoadAppState(ctx, store.NewFileStore(fs, testLogger()), opts, testLogger())
	second := LoadAppState(ctx, store.NewFileStore(fs, testLogger()), opts, testLogger())

	for i, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, first.PrependActivity(ctx, models.Activity{ID: id, Timestamp: int64(10 + i)}))
	}
	require.NoError(t, second.PrependActivity(ctx, models.Activity{ID: "b1", Timestamp: 20}))

	reloaded := LoadAppState(ctx, store.NewFileStore(fs, testLogger()), opts, testLogger())
	require.Equal(t, []string{"b1", "a3", "a2", "a1"}, activityIDs(reloaded.Activity()))
	require.Equal(t, []string{"b1", "a3", "a2", "a1"}, activityIDs(second.Activity()))
}

func TestAppStateConcurrentActivityWritesAreAllKept(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	state := LoadAppState(ctx, st, AppStateOptions{PersistActivity: true}, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, state.PrependActivity(ctx, models.Activity{ID: fmt.Sprintf("activity-%d", i), Timestamp: int64(i)}))
		}(i)
	}
	wg.Wait()

	reloaded := LoadAppState(ctx, st, AppStateOptions{PersistActivity: true}, testLogger())
	require.Len(t, reloaded.Activity(), 10)
	require.Equal(t, "activity-9", reloaded.Activity()[0].ID)
}

func activityIDs(entries []models.Activity) []string {
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	return ids
}
