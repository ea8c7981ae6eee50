package ports

import (
	"context"

	"github.com/layer-3/webauth/core"
)

// AuthParams holds the per call overrides of an authentication
type AuthParams struct {
	Signer       WalletSigner
	MemoID       string
	ClientDomain string
}

// AuthOption sets a field of AuthParams
type AuthOption func(*AuthParams)

// Authenticator obtains bearer tokens for an account
type Authenticator interface {
	Authenticate(ctx context.Context, account core.AccountIdentity, opts ...AuthOption) (*core.AuthToken, error)
}
