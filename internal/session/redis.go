package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

const redisKeyPrefix = "apisource:session:"

// RedisStore keeps sessions in Redis as JSON values with a TTL, letting
// multiple server instances share session state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing Redis client.  A non-positive ttl defaults
// to 24h since Redis keys should always expire.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (r *RedisStore) save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSessionStore, "encode session")
	}
	if err := r.client.Set(ctx, redisKey(s.ID), raw, r.ttl).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSessionStore, "write session")
	}
	return nil
}

// Create implements Store.
func (r *RedisStore) Create(ctx context.Context, s *Session) (*Session, error) {
	if s.ID == "" {
		s.ID = NewID()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = StatusPending
	}
	if err := r.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.New(apperrors.ErrCodeSessionNotFound, "session not found").
			WithDetail(id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSessionStore, "read session")
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSessionStore, "decode session")
	}
	return &s, nil
}

// Update implements Store.
func (r *RedisStore) Update(ctx context.Context, s *Session) error {
	stored, err := r.Get(ctx, s.ID)
	if err != nil {
		return err
	}
	s.CreatedAt = stored.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	return r.save(ctx, s)
}

// AppendHistory implements Store.
func (r *RedisStore) AppendHistory(ctx context.Context, id string, entry ChatEntry) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	s.History = append(s.History, entry)
	s.UpdatedAt = time.Now().UTC()
	return r.save(ctx, s)
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSessionStore, "delete session")
	}
	return nil
}

//Personal.AI order the ending
