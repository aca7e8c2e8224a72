package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultRedisPrefix = "fotoowl:store"

// RedisStore keeps values in a Redis keyspace and announces every write on a
// pub/sub channel so other processes can watch it.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	channel string
	logger  zerolog.Logger
}

type redisChange struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// NewRedisStore builds a store under the given key prefix.
func NewRedisStore(client *redis.Client, prefix string, logger zerolog.Logger) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{
		client:  client,
		prefix:  prefix,
		channel: prefix + ":changes",
		logger:  logger.With().Str("component", "redis_store").Logger(),
	}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %q: %v", ErrUnavailable, key, err)
	}
	return raw, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	announcement, err := json.Marshal(redisChange{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("encode change for %q: %w", key, err)
	}

	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.redisKey(key), value, 0)
		pipe.Publish(ctx, s.channel, announcement)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: set %q: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Watch implements Watcher. The subscription is confirmed before returning.
func (s *RedisStore) Watch(ctx context.Context) (<-chan Change, error) {
	pubsub := s.client.Subscribe(ctx, s.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: subscribe %q: %v", ErrUnavailable, s.channel, err)
	}

	changes := make(chan Change, changeBuffer)
	go func() {
		defer close(changes)
		defer func() {
			_ = pubsub.Close()
		}()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change redisChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					s.logger.Warn().Err(err).Msg("invalid store change announcement")
					continue
				}
				select {
				case changes <- Change{Key: change.Key, Value: change.Value}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return changes, nil
}

func (s *RedisStore) redisKey(key string) string {
	return s.prefix + ":" + key
}
