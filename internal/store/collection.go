package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/observability"
)

// ReadCollection loads the JSON array stored under key. A missing key or a
// value that does not parse yields an empty collection and no error; only an
// unavailable store returns an error (alongside an empty collection).
func ReadCollection[T any](ctx context.Context, st Store, key string, logger zerolog.Logger) ([]T, error) {
	raw, err := st.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		observability.StoreErrors().WithLabelValues("read").Inc()
		return []T{}, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("discarding malformed stored collection")
		observability.MalformedRecords().WithLabelValues("store").Inc()
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// WriteCollection overwrites the collection stored under key.
func WriteCollection[T any](ctx context.Context, st Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode collection %q: %w", key, err)
	}
	if err := st.Set(ctx, key, raw); err != nil {
		observability.StoreErrors().WithLabelValues("write").Inc()
		return err
	}
	return nil
}

// ReadValue loads a single JSON value. found is false when the key is missing
// or malformed.
func ReadValue[T any](ctx context.Context, st Store, key string, logger zerolog.Logger) (value T, found bool, err error) {
	raw, err := st.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return value, false, nil
	}
	if err != nil {
		observability.StoreErrors().WithLabelValues("read").Inc()
		return value, false, err
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("discarding malformed stored value")
		observability.MalformedRecords().WithLabelValues("store").Inc()
		var zero T
		return zero, false, nil
	}
	return value, true, nil
}

// WriteValue overwrites a single JSON value.
func WriteValue[T any](ctx context.Context, st Store, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value %q: %w", key, err)
	}
	if err := st.Set(ctx, key, raw); err != nil {
		observability.StoreErrors().WithLabelValues("write").Inc()
		return err
	}
	return nil
}
