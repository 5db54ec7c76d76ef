package modelstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/okian/skillmatch/internal/domain/retrain"
	"github.com/okian/skillmatch/internal/domain/vocab"
)

// DefaultRedisKey is the key the artifact is stored under.
const DefaultRedisKey = "skillmatch:model"

var _ retrain.ModelStore = (*RedisStore)(nil)

// RedisStore keeps the model artifact under one Redis key, so every replica
// can restore the same model.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore creates a RedisStore. An empty key uses DefaultRedisKey.
func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Save stores the encoded artifact without expiry.
func (s *RedisStore) Save(ctx context.Context, m *vocab.Model) error {
	const op = "modelstore.redis.save"
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.client.Set(ctx, s.key, buf.Bytes(), 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load fetches and decodes the artifact. A missing key yields
// retrain.ErrNoArtifact.
func (s *RedisStore) Load(ctx context.Context) (*vocab.Model, error) {
	const op = "modelstore.redis.load"
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, retrain.ErrNoArtifact
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m, err := vocab.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, s.key, err)
	}
	return m, nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
