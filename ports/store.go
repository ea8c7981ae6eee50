package ports

import (
	"context"

	"github.com/layer-3/webauth/core"
)

// TokenStore caches issued tokens until they expire
type TokenStore interface {
	Put(ctx context.Context, key string, token *core.AuthToken) error
	Get(ctx context.Context, key string) (*core.AuthToken, error)
}
