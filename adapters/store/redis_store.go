package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the TokenStore interface
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ ports.TokenStore = (*RedisStore)(nil)

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "webauth:token:",
	}
}

// Put stores the token with a TTL matching its remaining lifetime
func (s *RedisStore) Put(ctx context.Context, key string, token *core.AuthToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	return nil
}

// Get loads a token stored by Put
func (s *RedisStore) Get(ctx context.Context, key string) (*core.AuthToken, error) {
	payload, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	var token core.AuthToken
	if err := json.Unmarshal(payload, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}
