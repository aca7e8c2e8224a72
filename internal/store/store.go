// Package store implements the durable key/value persistence shared by every
// gallery process on one machine.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when a key was never written.
	ErrNotFound = errors.New("store: key not found")
	// ErrUnavailable wraps I/O failures of the underlying medium.
	ErrUnavailable = errors.New("store: unavailable")
	// ErrWatchUnsupported is returned by stores that cannot observe foreign writes.
	ErrWatchUnsupported = errors.New("store: watch not supported")
)

// Fixed keys for global application state.
const (
	KeyUser           = "user"
	KeyTheme          = "theme"
	KeyMoodFilter     = "mood-filter"
	KeyViewMode       = "view-mode"
	KeyRecentActivity = "recent-activity"
)

// Store persists opaque values by key. Set always overwrites the whole value;
// there is no transaction spanning several keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Change is a write observed on a shared store.
type Change struct {
	Key   string
	Value []byte
}

// Watcher streams writes made by any process sharing the store, including the
// caller's own. The channel closes when ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// ReactionsKey is the key of an image's reaction collection.
func ReactionsKey(imageID string) string {
	return "reactions-" + imageID
}

// CommentsKey is the key of an image's comment collection.
func CommentsKey(imageID string) string {
	return "comments-" + imageID
}
