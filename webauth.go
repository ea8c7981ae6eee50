// Package webauth authenticates Stellar accounts against an anchor's web
// auth endpoint, discovered from the anchor's stellar.toml.
package webauth

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/layer-3/webauth/adapters/tokenizer"
	"github.com/layer-3/webauth/adapters/toml"
	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/ports"
	"github.com/layer-3/webauth/service"
	"github.com/stellar/go/network"
)

// AnchorConfig configures how an anchor is discovered and authenticated against
type AnchorConfig struct {
	NetworkPassphrase   string // Defaults to the stellar.toml value, then the public network
	DefaultClientDomain string
	DefaultSigner       ports.WalletSigner
	HTTPClient          *http.Client
	Logger              *slog.Logger
	Scheme              string               // Scheme used to fetch stellar.toml, defaults to https
	Tokenizer           ports.Tokenizer      // Defaults to a decode-only JWT tokenizer
	Publisher           ports.EventPublisher // Optional
	Store               ports.TokenStore     // Enables token caching when set
}

// Anchor is a Stellar anchor identified by its home domain
type Anchor struct {
	homeDomain string
	cfg        AnchorConfig

	mu   sync.Mutex
	info *toml.Info
	auth ports.Authenticator
}

// NewAnchor creates an anchor client. Nothing is fetched until first use.
func NewAnchor(homeDomain string, cfg AnchorConfig) *Anchor {
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}
	if cfg.Tokenizer == nil {
		cfg.Tokenizer = tokenizer.NewJWTTokenizer()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Anchor{homeDomain: homeDomain, cfg: cfg}
}

// HomeDomain returns the domain hosting the anchor's stellar.toml
func (a *Anchor) HomeDomain() string {
	return a.homeDomain
}

// Info fetches the anchor's stellar.toml. A successful result is kept for the
// lifetime of the Anchor.
func (a *Anchor) Info(ctx context.Context) (*toml.Info, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.infoLocked(ctx)
}

func (a *Anchor) infoLocked(ctx context.Context) (*toml.Info, error) {
	if a.info != nil {
		return a.info, nil
	}

	url := toml.BuildURL(a.cfg.Scheme, a.homeDomain)
	a.cfg.Logger.Debug("fetching stellar.toml", "url", url)

	info, err := toml.Fetch(ctx, a.cfg.HTTPClient, url)
	if err != nil {
		return nil, err
	}

	a.info = info
	return info, nil
}

// Auth returns the authenticator for the anchor's WEB_AUTH_ENDPOINT
func (a *Anchor) Auth(ctx context.Context) (ports.Authenticator, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.auth != nil {
		return a.auth, nil
	}

	info, err := a.infoLocked(ctx)
	if err != nil {
		return nil, err
	}
	if info.WebAuthEndpoint == "" {
		return nil, core.ErrMissingWebAuthEndpoint
	}

	passphrase := a.cfg.NetworkPassphrase
	if passphrase == "" {
		passphrase = info.NetworkPassphrase
	}
	if passphrase == "" {
		passphrase = network.PublicNetworkPassphrase
	}

	var auth ports.Authenticator = service.NewAuthService(service.Config{
		NetworkPassphrase:   passphrase,
		WebAuthEndpoint:     info.WebAuthEndpoint,
		HomeDomain:          a.homeDomain,
		DefaultClientDomain: a.cfg.DefaultClientDomain,
		DefaultSigner:       a.cfg.DefaultSigner,
		HTTPClient:          a.cfg.HTTPClient,
		Logger:              a.cfg.Logger,
	}, a.cfg.Tokenizer, a.cfg.Publisher)

	if a.cfg.Store != nil {
		auth = service.NewCachedAuthService(auth, domainStore{TokenStore: a.cfg.Store, domain: a.homeDomain}, a.cfg.Logger)
	}

	a.auth = auth
	return auth, nil
}

// AuthToken authenticates account against the anchor
func (a *Anchor) AuthToken(ctx context.Context, account core.AccountIdentity, opts ...ports.AuthOption) (*core.AuthToken, error) {
	auth, err := a.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return auth.Authenticate(ctx, account, opts...)
}

// domainStore keeps tokens of different anchors apart in a shared store
type domainStore struct {
	ports.TokenStore
	domain string
}

func (s domainStore) Put(ctx context.Context, key string, token *core.AuthToken) error {
	return s.TokenStore.Put(ctx, s.domain+"|"+key, token)
}

func (s domainStore) Get(ctx context.Context, key string) (*core.AuthToken, error) {
	return s.TokenStore.Get(ctx, s.domain+"|"+key)
}
