package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"creme-store/apperrors"

	"github.com/redis/go-redis/v9"
)

type Store interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, sessionID string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

const maxUpdateAttempts = 10

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// RedisStore keeps one JSON document per session with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	return r.read(ctx, r.client, sessionID)
}

// Update runs fn against the stored session under WATCH, retrying when another
// request for the same session wins the race. If fn fails nothing is written.
func (r *RedisStore) Update(ctx context.Context, sessionID string, fn func(*Session) error) (*Session, error) {
	key := sessionKey(sessionID)

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var updated *Session
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			session, err := r.read(ctx, tx, sessionID)
			if err != nil {
				return err
			}
			if err := fn(session); err != nil {
				return err
			}

			data, err := json.Marshal(session)
			if err != nil {
				return fmt.Errorf("marshal cart failed: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, r.ttl)
				return nil
			})
			if err == nil {
				updated = session
			}
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, fmt.Errorf("%w: cart %s is being modified concurrently", apperrors.ErrConflict, sessionID)
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisStore) read(ctx context.Context, c getter, sessionID string) (*Session, error) {
	data, err := c.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewSession(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if session.Items == nil {
		session.Items = []CartItem{}
	}
	if session.AttemptID == "" {
		// Documents written before attempt ids existed.
		session.AttemptID = sessionID + "@" + session.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return &session, nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}
