package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
)

const (
	fileSuffix   = ".json"
	tempDir      = ".tmp"
	tempPrefix   = "value-"
	changeBuffer = 64
)

// DefaultDir is the per-user data directory used when none is configured.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "fotoowl-gallery")
}

// FileStore keeps one JSON file per key on a billy filesystem. Several
// processes may open the same directory; they then share one store.
type FileStore struct {
	fs     billy.Filesystem
	dir    string
	logger zerolog.Logger
}

// NewFileStore wraps an existing filesystem. Stores built this way cannot be
// watched; use OpenFileStore for a directory on disk.
func NewFileStore(fs billy.Filesystem, logger zerolog.Logger) *FileStore {
	return &FileStore{
		fs:     fs,
		logger: logger.With().Str("component", "file_store").Logger(),
	}
}

// OpenFileStore roots a store at dir, creating it if needed.
func OpenFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %q: %w", dir, err)
	}

	store := NewFileStore(osfs.New(dir), logger)
	store.dir = dir
	return store, nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	raw, err := util.ReadFile(s.fs, fileName(key))
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: read %q: %v", ErrUnavailable, key, err)
	}
	return raw, nil
}

// Set implements Store. The value is written to a temporary file and renamed
// over the target so concurrent readers never observe a partial value.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	tmp, err := util.TempFile(s.fs, tempDir, tempPrefix)
	if err != nil {
		return fmt.Errorf("%w: create temp for %q: %v", ErrUnavailable, key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("%w: write %q: %v", ErrUnavailable, key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("%w: close %q: %v", ErrUnavailable, key, err)
	}
	if err := s.fs.Rename(tmpName, fileName(key)); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("%w: rename %q: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Watch implements Watcher using filesystem notifications on the store
// directory. Values are read when the notification arrives, so rapid
// successive writes to one key may be observed once with the latest value.
func (s *FileStore) Watch(ctx context.Context) (<-chan Change, error) {
	if s.dir == "" {
		return nil, ErrWatchUnsupported
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", s.dir, err)
	}

	changes := make(chan Change, changeBuffer)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				key, ok := keyFromFile(event.Name)
				if !ok {
					continue
				}
				value, err := s.Get(ctx, key)
				if err != nil {
					s.logger.Debug().Err(err).Str("key", key).Msg("changed key no longer readable")
					continue
				}
				select {
				case changes <- Change{Key: key, Value: value}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn().Err(err).Msg("file watcher error")
			}
		}
	}()

	return changes, nil
}

func fileName(key string) string {
	return url.PathEscape(key) + fileSuffix
}

func keyFromFile(name string) (string, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, fileSuffix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(base, fileSuffix))
	if err != nil {
		return "", false
	}
	return key, true
}
