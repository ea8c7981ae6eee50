package service

import (
	"log/slog"
	"net/http"

	"github.com/layer-3/webauth/ports"
)

// Config is supplied once when the service is built and never modified afterwards
type Config struct {
	NetworkPassphrase   string             // Network the challenges must be built for
	WebAuthEndpoint     string             // WEB_AUTH_ENDPOINT of the server
	HomeDomain          string             // Domain hosting the server's stellar.toml
	DefaultClientDomain string             // Used when a call sets no client domain
	DefaultSigner       ports.WalletSigner // Used when a call sets no signer
	HTTPClient          *http.Client       // Optional, nil uses http.DefaultClient
	Logger              *slog.Logger       // Optional, nil uses slog.Default()
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// WithWalletSigner overrides the default signer for one call
func WithWalletSigner(signer ports.WalletSigner) ports.AuthOption {
	return func(p *ports.AuthParams) {
		p.Signer = signer
	}
}

// WithMemoID authenticates a memo-distinguished sub account. It cannot be
// combined with a client domain.
func WithMemoID(memoID string) ports.AuthOption {
	return func(p *ports.AuthParams) {
		p.MemoID = memoID
	}
}

// WithClientDomain overrides the default client domain for one call.
// An empty domain disables client domain verification.
func WithClientDomain(domain string) ports.AuthOption {
	return func(p *ports.AuthParams) {
		p.ClientDomain = domain
	}
}
