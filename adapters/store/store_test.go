package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/ports"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testToken(ttl time.Duration) *core.AuthToken {
	now := time.Now().Truncate(time.Second)
	return &core.AuthToken{
		Raw:       "header.payload.signature",
		Account:   "GBLTXF46JTCGMWFJASQLVXMMA36IPYTDCN4EN73HRXCGDCGYBZM3A444",
		ID:        uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func testStore(t *testing.T, s ports.TokenStore) {
	ctx := context.Background()
	key := uuid.NewString()

	_, err := s.Get(ctx, key)
	assert.ErrorIs(t, err, core.ErrTokenNotFound)

	token := testToken(time.Hour)
	require.NoError(t, s.Put(ctx, key, token))

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, token.Raw, got.Raw)
	assert.Equal(t, token.ID, got.ID)
	assert.True(t, token.ExpiresAt.Equal(got.ExpiresAt))

	expiredKey := uuid.NewString()
	require.NoError(t, s.Put(ctx, expiredKey, testToken(-time.Minute)))
	_, err = s.Get(ctx, expiredKey)
	assert.ErrorIs(t, err, core.ErrTokenNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Put(context.Background(), "k", testToken(time.Hour)))

	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	got.Raw = "changed"

	again, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "header.payload.signature", again.Raw)
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	testStore(t, NewRedisStore(client))
}
