package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dosewatch/internal/metrics"
	"dosewatch/internal/models"
)

// DefaultRedisKey is the slot the collection lives under when none is
// configured.
const DefaultRedisKey = "dosewatch:reminders"

// RedisStore keeps the collection as one JSON value under a single key.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zerolog.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, key string, logger *zerolog.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

// Load fetches and decodes the collection. A missing key or corrupted value
// yields an empty collection.
func (s *RedisStore) Load(ctx context.Context) ([]models.Reminder, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Reminder{}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var reminders []models.Reminder
	if err := json.Unmarshal(data, &reminders); err != nil {
		metrics.IncStoreLoadFailure()
		s.logger.Warn().Err(err).Str("key", s.key).
			Msg("store content unparsable, starting with empty collection")
		return []models.Reminder{}, nil
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return reminders, nil
}

// Save overwrites the slot with the serialized collection.
func (s *RedisStore) Save(ctx context.Context, reminders []models.Reminder) error {
	data, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("marshal reminders: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	metrics.IncStoreSave()
	return nil
}
