package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"logistics-service/internal/domain"
	"logistics-service/internal/ports"
)

const keyPrefix = "session:"

// Redis-backed implementation of the SessionStore port. Each session is a
// JSON value under session:<id> with a TTL refreshed on every save.
type RedisSessionStore struct {
	Client redis.Cmdable
}

func NewRedisSessionStore(client redis.Cmdable) *RedisSessionStore {
	return &RedisSessionStore{Client: client}
}

var _ ports.SessionStore = (*RedisSessionStore)(nil)

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*ports.Session, error) {
	raw, err := s.Client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get session: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: redis get: %w", err)
	}

	var sess ports.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("get session: decode: %w", err)
	}
	sess.ID = id
	return &sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *ports.Session, ttl time.Duration) error {
	if sess.ID == "" {
		return errors.New("save session: missing id")
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("save session: encode: %w", err)
	}
	if err := s.Client.Set(ctx, keyPrefix+sess.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save session: redis set: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.Client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: redis del: %w", err)
	}
	return nil
}
