package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Leopold1975/incidents_control/internal/incidents/repository/sessionrepo"
	"github.com/Leopold1975/incidents_control/internal/pkg/config"
	"github.com/Leopold1975/incidents_control/internal/pkg/redistools"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps one key per live refresh token (its jti), so logout
// and rotation can revoke a session before the token naturally expires.
type SessionStore struct {
	rdb *redis.Client
}

func New(ctx context.Context, cfg config.Redis) (SessionStore, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redistools.Connect(ctx, rdb); err != nil {
		return SessionStore{}, fmt.Errorf("connect error: %w", err)
	}

	return SessionStore{rdb: rdb}, nil
}

func (ss SessionStore) Store(ctx context.Context, jti string, userID int64, ttl time.Duration) error {
	if err := ss.rdb.Set(ctx, sessionKey(jti), userID, ttl).Err(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (ss SessionStore) Validate(ctx context.Context, jti string) (int64, error) {
	v, err := ss.rdb.Get(ctx, sessionKey(jti)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, sessionrepo.ErrNotFound
		}

		return 0, fmt.Errorf("get error: %w", err)
	}

	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse session value error: %w", err)
	}

	return id, nil
}

func (ss SessionStore) Revoke(ctx context.Context, jti string) error {
	n, err := ss.rdb.Del(ctx, sessionKey(jti)).Result()
	if err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	if n == 0 {
		return sessionrepo.ErrNotFound
	}

	return nil
}

func (ss SessionStore) Client() *redis.Client {
	return ss.rdb
}

func sessionKey(jti string) string {
	return "session:" + jti
}
