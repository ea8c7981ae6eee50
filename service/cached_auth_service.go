package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/ports"
)

// DefaultCacheLeeway is how long before expiry a cached token stops being reused
const DefaultCacheLeeway = 30 * time.Second

// CachedAuthService reuses tokens from a store until shortly before they expire
type CachedAuthService struct {
	auth   ports.Authenticator
	store  ports.TokenStore
	leeway time.Duration
	logger *slog.Logger
}

var _ ports.Authenticator = (*CachedAuthService)(nil)

// NewCachedAuthService wraps auth with a token cache. logger may be nil.
func NewCachedAuthService(auth ports.Authenticator, store ports.TokenStore, logger *slog.Logger) *CachedAuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedAuthService{
		auth:   auth,
		store:  store,
		leeway: DefaultCacheLeeway,
		logger: logger,
	}
}

// Authenticate returns a cached token for the same account, memo and client
// domain, or authenticates and caches the new token
func (c *CachedAuthService) Authenticate(ctx context.Context, account core.AccountIdentity, opts ...ports.AuthOption) (*core.AuthToken, error) {
	var params ports.AuthParams
	for _, opt := range opts {
		opt(&params)
	}
	key := cacheKey(account, params)

	cached, err := c.store.Get(ctx, key)
	switch {
	case err == nil && !cached.Expired(time.Now().Add(c.leeway)):
		return cached, nil
	case err != nil && !errors.Is(err, core.ErrTokenNotFound):
		c.logger.Warn("failed to read cached token", "key", key, "error", err)
	}

	token, err := c.auth.Authenticate(ctx, account, opts...)
	if err != nil {
		return nil, err
	}

	if err := c.store.Put(ctx, key, token); err != nil {
		c.logger.Warn("failed to cache token", "key", key, "error", err)
	}

	return token, nil
}

func cacheKey(account core.AccountIdentity, params ports.AuthParams) string {
	return strings.Join([]string{account.Address, params.MemoID, params.ClientDomain}, "|")
}
