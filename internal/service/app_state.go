package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
	"github.com/noah-isme/fotoowl-gallery-api/internal/store"
)

// DefaultActivityCapacity bounds the recent activity ring.
const DefaultActivityCapacity = 50

// AppStateOptions configures LoadAppState.
type AppStateOptions struct {
	ActivityCapacity int
	PersistActivity  bool
}

// AppState is the single source of truth for per-context state: the visitor
// identity, UI preferences and the recent activity ring. It is only mutated
// through its methods, each of which writes through to the store.
type AppState struct {
	mu       sync.RWMutex
	store    store.Store
	logger   zerolog.Logger
	capacity int
	persist  bool

	// activityMu serialises read-merge-write cycles of the stored feed.
	activityMu sync.Mutex

	user     models.Identity
	prefs    models.Preferences
	activity []models.Activity
}

// LoadAppState restores persisted state. Missing, malformed or unreadable
// values fall back to defaults; the context keeps working in memory.
func LoadAppState(ctx context.Context, st store.Store, opts AppStateOptions, logger zerolog.Logger) *AppState {
	capacity := opts.ActivityCapacity
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}

	state := &AppState{
		store:    st,
		logger:   logger.With().Str("component", "app_state").Logger(),
		capacity: capacity,
		persist:  opts.PersistActivity,
		prefs:    models.DefaultPreferences(),
		activity: []models.Activity{},
	}

	if user, found, err := store.ReadValue[models.Identity](ctx, st, store.KeyUser, state.logger); err != nil {
		state.logger.Warn().Err(err).Msg("identity not restored")
	} else if found && !user.IsZero() {
		state.user = user
	}

	if theme, found, err := store.ReadValue[string](ctx, st, store.KeyTheme, state.logger); err == nil && found && validTheme(theme) {
		state.prefs.Theme = theme
	}
	if mood, found, err := store.ReadValue[string](ctx, st, store.KeyMoodFilter, state.logger); err == nil && found && models.ValidMood(mood) {
		state.prefs.MoodFilter = mood
	}
	if mode, found, err := store.ReadValue[string](ctx, st, store.KeyViewMode, state.logger); err == nil && found && models.ValidViewMode(mode) {
		state.prefs.ViewMode = mode
	}

	if state.persist {
		entries, err := store.ReadCollection[models.Activity](ctx, st, store.KeyRecentActivity, state.logger)
		if err != nil {
			state.logger.Warn().Err(err).Msg("activity feed not restored")
		}
		if len(entries) > capacity {
			entries = entries[:capacity]
		}
		state.activity = entries
	}

	return state
}

// User returns the current identity; ok is false until one is set.
func (s *AppState) User() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, !s.user.IsZero()
}

// SetUser replaces the identity. The in-memory value is kept even when the
// write fails.
func (s *AppState) SetUser(ctx context.Context, user models.Identity) error {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	return s.write(ctx, store.KeyUser, user)
}

// Preferences returns the current UI preferences.
func (s *AppState) Preferences() models.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// ToggleTheme flips between the light and dark theme.
func (s *AppState) ToggleTheme(ctx context.Context) (models.Preferences, error) {
	s.mu.Lock()
	if s.prefs.Theme == models.ThemeDark {
		s.prefs.Theme = models.ThemeLight
	} else {
		s.prefs.Theme = models.ThemeDark
	}
	prefs := s.prefs
	s.mu.Unlock()

	return prefs, s.write(ctx, store.KeyTheme, prefs.Theme)
}

// SetTheme selects a theme explicitly.
func (s *AppState) SetTheme(ctx context.Context, theme string) error {
	if !validTheme(theme) {
		return fmt.Errorf("%w: theme %q", ErrInvalidPreference, theme)
	}
	s.mu.Lock()
	s.prefs.Theme = theme
	s.mu.Unlock()

	return s.write(ctx, store.KeyTheme, theme)
}

// SetMoodFilter selects the mood used to query the gallery.
func (s *AppState) SetMoodFilter(ctx context.Context, mood string) error {
	if !models.ValidMood(mood) {
		return fmt.Errorf("%w: mood %q", ErrInvalidPreference, mood)
	}
	s.mu.Lock()
	s.prefs.MoodFilter = mood
	s.mu.Unlock()

	return s.write(ctx, store.KeyMoodFilter, mood)
}

// SetViewMode selects the gallery layout.
func (s *AppState) SetViewMode(ctx context.Context, mode string) error {
	if !models.ValidViewMode(mode) {
		return fmt.Errorf("%w: view mode %q", ErrInvalidPreference, mode)
	}
	s.mu.Lock()
	s.prefs.ViewMode = mode
	s.mu.Unlock()

	return s.write(ctx, store.KeyViewMode, mode)
}

// PrependActivity inserts entry at the head of the ring and evicts the oldest
// entries beyond capacity. When persisted, the ring is merged by id with the
// stored feed first, so processes sharing the store keep each other's entries.
func (s *AppState) PrependActivity(ctx context.Context, entry models.Activity) error {
	s.mu.Lock()
	keep := len(s.activity)
	if keep > s.capacity-1 {
		keep = s.capacity - 1
	}
	next := make([]models.Activity, 0, keep+1)
	next = append(next, entry)
	next = append(next, s.activity[:keep]...)
	s.activity = next
	s.mu.Unlock()

	if !s.persist {
		return nil
	}

	s.activityMu.Lock()
	defer s.activityMu.Unlock()

	stored, err := store.ReadCollection[models.Activity](ctx, s.store, store.KeyRecentActivity, s.logger)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	s.activity = mergeActivity(s.activity, stored, s.capacity)
	snapshot := append([]models.Activity(nil), s.activity...)
	s.mu.Unlock()

	if err := store.WriteCollection(ctx, s.store, store.KeyRecentActivity, snapshot); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// mergeActivity joins two newest-first feeds, dropping repeated ids and
// keeping the newest capacity entries.
func mergeActivity(local, stored []models.Activity, capacity int) []models.Activity {
	merged := make([]models.Activity, 0, len(local)+len(stored))
	seen := make(map[string]struct{}, len(local)+len(stored))
	for _, group := range [][]models.Activity{local, stored} {
		for _, entry := range group {
			if _, dup := seen[entry.ID]; dup {
				continue
			}
			seen[entry.ID] = struct{}{}
			merged = append(merged, entry)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})
	if len(merged) > capacity {
		merged = merged[:capacity]
	}
	return merged
}

// Activity returns a copy of the ring, newest first.
func (s *AppState) Activity() []models.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Activity{}, s.activity...)
}

// ActivityCapacity is the maximum length of the ring.
func (s *AppState) ActivityCapacity() int {
	return s.capacity
}

func (s *AppState) write(ctx context.Context, key string, value interface{}) error {
	if err := store.WriteValue(ctx, s.store, key, value); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("state change not persisted")
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func validTheme(theme string) bool {
	return theme == models.ThemeLight || theme == models.ThemeDark
}
