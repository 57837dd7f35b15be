package resetkeys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
	"github.com/aussiebroadwan/stackplate/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "reset_key:"

// RedisStore shares pending resets between instances. Keys are stored as
// their SHA-256 fingerprint, so a dump of redis can't be replayed as links,
// and expire on their own after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client. ttl <= 0 uses domain.DefaultResetWindow.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = domain.DefaultResetWindow
	}
	return &RedisStore{client: client, ttl: ttl}
}

type redisRecord struct {
	Email    string    `json:"email"`
	IssuedAt time.Time `json:"issued_at"`
}

func redisKey(key string) string {
	return redisKeyPrefix + cryptox.FingerprintToken(key)
}

func (s *RedisStore) Put(ctx context.Context, key string, rec domain.ResetRecord) error {
	raw, err := json.Marshal(redisRecord{Email: rec.Email, IssuedAt: rec.IssuedAt.UTC()})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store reset key: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (domain.ResetRecord, error) {
	raw, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ResetRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.ResetRecord{}, fmt.Errorf("load reset key: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.ResetRecord{}, fmt.Errorf("decode reset key: %w", err)
	}
	return domain.ResetRecord{Email: rec.Email, IssuedAt: rec.IssuedAt}, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	// DEL is atomic, only one caller sees a count of 1
	n, err := s.client.Del(ctx, redisKey(key)).Result()
	if err != nil {
		return fmt.Errorf("delete reset key: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Purge is a no-op, redis expires records itself.
func (s *RedisStore) Purge(context.Context, time.Time) (int, error) { return 0, nil }

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
