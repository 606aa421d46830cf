package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis so several kiosk terminals can share
// one service instance pool.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects with short timeouts; a slow session backend must
// not stall the kiosk.
func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &RedisStore{client: client, ttl: ttl}
}

// Healthy verifies connectivity for the health endpoint.
func (s *RedisStore) Healthy(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}

func key(sid string) string { return "gymkiosk:session:" + sid }

// Get returns the stored state, or Initial() for unknown sessions.
func (s *RedisStore) Get(ctx context.Context, sid string) (State, error) {
	raw, err := s.client.Get(ctx, key(sid)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Initial(), nil
		}
		return Initial(), err
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return Initial(), nil
	}
	return st, nil
}

// Put stores the state and refreshes the TTL.
func (s *RedisStore) Put(ctx context.Context, sid string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(sid), raw, s.ttl).Err()
}

// Delete drops the session.
func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.client.Del(ctx, key(sid)).Err()
}
