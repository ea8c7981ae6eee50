package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/webauth/adapters/tokenizer"
	"github.com/layer-3/webauth/adapters/toml"
	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/internal/challenge"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// DefaultTokenTTL is the lifetime of issued tokens
const DefaultTokenTTL = 24 * time.Hour

var (
	errBadRequest           = errors.New("bad request")
	errInvalidAccount       = fmt.Errorf("%w: invalid account", errBadRequest)
	errInvalidHomeDomain    = fmt.Errorf("%w: invalid home_domain", errBadRequest)
	errInvalidMemo          = fmt.Errorf("%w: memo must be a non-negative integer", errBadRequest)
	errMemoWithClientDomain = fmt.Errorf("%w: memo cannot be used with client_domain", errBadRequest)
	errNotClientDomainTx    = fmt.Errorf("%w: transaction has no client_domain operation", errBadRequest)
)

// ClientDomainResolver returns the SIGNING_KEY published by a client domain
type ClientDomainResolver func(ctx context.Context, domain string) (string, error)

// TOMLResolver resolves client domain keys from their stellar.toml
func TOMLResolver(client *http.Client, scheme string) ClientDomainResolver {
	return func(ctx context.Context, domain string) (string, error) {
		info, err := toml.Fetch(ctx, client, toml.BuildURL(scheme, domain))
		if err != nil {
			return "", err
		}
		if info.SigningKey == "" {
			return "", errors.New("stellar.toml has no SIGNING_KEY")
		}
		return info.SigningKey, nil
	}
}

// ServerConfig configures the web auth server
type ServerConfig struct {
	SigningKey          *keypair.Full // Server account, signs every challenge
	NetworkPassphrase   string
	HomeDomain          string
	WebAuthDomain       string                  // Defaults to HomeDomain
	WebAuthEndpoint     string                  // Published in stellar.toml, derived from the request when empty
	Tokenizer           *tokenizer.JWTTokenizer // Must be created with NewSigningJWTTokenizer
	TokenTTL            time.Duration
	ChallengeTimeout    time.Duration
	ResolveClientDomain ClientDomainResolver // Nil rejects every client_domain
	DomainSigningKey    *keypair.Full        // Enables POST /sign when set
	Logger              *slog.Logger
}

// Server issues challenges and exchanges signed challenges for tokens
type Server struct {
	cfg    ServerConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewServer creates a web auth server
func NewServer(cfg ServerConfig) *Server {
	if cfg.WebAuthDomain == "" {
		cfg.WebAuthDomain = cfg.HomeDomain
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.ChallengeTimeout == 0 {
		cfg.ChallengeTimeout = challenge.DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// ChallengeRequest holds the query parameters of GET /auth
type ChallengeRequest struct {
	Account      string `form:"account" binding:"required"`
	HomeDomain   string `form:"home_domain"`
	Memo         string `form:"memo"`
	ClientDomain string `form:"client_domain"`
}

// Challenge builds a server signed challenge for the requested account
func (s *Server) Challenge(ctx context.Context, req ChallengeRequest) (*core.ChallengeResponse, error) {
	if _, err := keypair.ParseAddress(req.Account); err != nil {
		return nil, errInvalidAccount
	}
	if req.HomeDomain != "" && req.HomeDomain != s.cfg.HomeDomain {
		return nil, errInvalidHomeDomain
	}

	params := challenge.BuildParams{
		ServerKey:         s.cfg.SigningKey,
		ClientAccount:     req.Account,
		HomeDomain:        s.cfg.HomeDomain,
		WebAuthDomain:     s.cfg.WebAuthDomain,
		NetworkPassphrase: s.cfg.NetworkPassphrase,
		Timeout:           s.cfg.ChallengeTimeout,
	}

	if req.Memo != "" {
		if req.ClientDomain != "" {
			return nil, errMemoWithClientDomain
		}
		id, err := strconv.ParseUint(req.Memo, 10, 64)
		if err != nil {
			return nil, errInvalidMemo
		}
		params.MemoID = &id
	}

	if req.ClientDomain != "" {
		key, err := s.resolveClientDomain(ctx, req.ClientDomain)
		if err != nil {
			return nil, err
		}
		params.ClientDomain = req.ClientDomain
		params.ClientDomainKey = key
	}

	tx, err := challenge.Build(params)
	if err != nil {
		return nil, err
	}

	return encodeTx(tx, s.cfg.NetworkPassphrase)
}

func (s *Server) resolveClientDomain(ctx context.Context, domain string) (string, error) {
	if s.cfg.ResolveClientDomain == nil {
		return "", fmt.Errorf("%w: client_domain is not supported", errBadRequest)
	}

	key, err := s.cfg.ResolveClientDomain(ctx, domain)
	if err != nil {
		s.logger.Warn("client domain lookup failed", "domain", domain, "error", err)
		return "", fmt.Errorf("%w: client_domain %s could not be verified", errBadRequest, domain)
	}
	if _, err := keypair.ParseAddress(key); err != nil {
		return "", fmt.Errorf("%w: client_domain %s publishes an invalid signing key", errBadRequest, domain)
	}

	return key, nil
}

// Token verifies a signed challenge and issues a token for its client account
func (s *Server) Token(ctx context.Context, envelope string) (*core.AuthToken, error) {
	now := s.now()

	parsed, err := challenge.Verify(envelope, s.cfg.SigningKey.Address(), s.cfg.NetworkPassphrase, s.cfg.WebAuthDomain, s.cfg.HomeDomain)
	if err != nil {
		return nil, err
	}

	subject := parsed.ClientAccount
	if parsed.MemoID != nil {
		subject += ":" + strconv.FormatUint(*parsed.MemoID, 10)
	}

	token, err := s.cfg.Tokenizer.Issue(core.AuthToken{
		Issuer:       s.issuer(),
		Account:      subject,
		ClientDomain: parsed.ClientDomain,
		ID:           uuid.NewString(),
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.cfg.TokenTTL),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("token issued", "account", subject, "client_domain", parsed.ClientDomain, "jti", token.ID)
	return token, nil
}

// SignClientDomain adds the domain signature to a challenge that asks for it
func (s *Server) SignClientDomain(envelope, networkPassphrase string) (*core.ChallengeResponse, error) {
	if networkPassphrase != s.cfg.NetworkPassphrase {
		return nil, fmt.Errorf("%w: unsupported network", errBadRequest)
	}

	tx, err := challenge.Decode(envelope)
	if err != nil {
		return nil, err
	}

	op, ok := challenge.FindManageData(tx, core.ClientDomainDataName)
	if !ok || op.SourceAccount != s.cfg.DomainSigningKey.Address() {
		return nil, errNotClientDomainTx
	}

	signed, err := tx.Sign(networkPassphrase, s.cfg.DomainSigningKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return encodeTx(signed, networkPassphrase)
}

// Info returns the stellar.toml content served by this server. A server
// holding a domain signing key acts as a client domain and publishes that key.
func (s *Server) Info(endpoint string) toml.Info {
	if s.cfg.WebAuthEndpoint != "" {
		endpoint = s.cfg.WebAuthEndpoint
	}
	info := toml.Info{
		NetworkPassphrase: s.cfg.NetworkPassphrase,
		WebAuthEndpoint:   endpoint,
	}
	switch {
	case s.cfg.DomainSigningKey != nil:
		info.SigningKey = s.cfg.DomainSigningKey.Address()
	case s.cfg.SigningKey != nil:
		info.SigningKey = s.cfg.SigningKey.Address()
	}
	return info
}

func (s *Server) issuer() string {
	if s.cfg.WebAuthEndpoint != "" {
		return s.cfg.WebAuthEndpoint
	}
	return "https://" + s.cfg.WebAuthDomain + "/auth"
}

func encodeTx(tx *txnbuild.Transaction, networkPassphrase string) (*core.ChallengeResponse, error) {
	envelope, err := tx.Base64()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}
	return &core.ChallengeResponse{Transaction: envelope, NetworkPassphrase: networkPassphrase}, nil
}
