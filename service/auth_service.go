package service

import (
	"context"
	"log/slog"

	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/ports"
)

// AuthService authenticates accounts against a single web auth endpoint
type AuthService struct {
	cfg       Config
	requester *Requester
	signer    *ChallengeSigner
	exchanger *Exchanger
	eventPub  ports.EventPublisher
	logger    *slog.Logger
}

var _ ports.Authenticator = (*AuthService)(nil)

// NewAuthService creates a new authentication service. eventPub may be nil.
func NewAuthService(cfg Config, tokenizer ports.Tokenizer, eventPub ports.EventPublisher) *AuthService {
	return &AuthService{
		cfg:       cfg,
		requester: NewRequester(cfg),
		signer:    NewChallengeSigner(cfg),
		exchanger: NewExchanger(cfg, tokenizer),
		eventPub:  eventPub,
		logger:    cfg.logger(),
	}
}

// Authenticate requests a challenge, signs it and exchanges it for a token.
// The first failing step ends the call; no step is retried.
func (s *AuthService) Authenticate(ctx context.Context, account core.AccountIdentity, opts ...ports.AuthOption) (*core.AuthToken, error) {
	params := ports.AuthParams{
		Signer:       s.cfg.DefaultSigner,
		ClientDomain: s.cfg.DefaultClientDomain,
	}
	for _, opt := range opts {
		opt(&params)
	}

	if params.Signer == nil {
		return nil, core.ErrNoWalletSigner
	}

	challenge, err := s.requester.Challenge(ctx, account, params.MemoID, params.ClientDomain)
	if err != nil {
		return nil, err
	}

	signed, err := s.signer.Sign(ctx, challenge, account, params.Signer)
	if err != nil {
		return nil, err
	}

	token, err := s.exchanger.Token(ctx, signed)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("authenticated",
		"account", account.Address,
		"home_domain", s.cfg.HomeDomain,
		"expires_at", token.ExpiresAt,
	)

	if s.eventPub != nil {
		event := core.AuthenticatedEvent{
			Account:      account.Address,
			HomeDomain:   s.cfg.HomeDomain,
			ClientDomain: params.ClientDomain,
			TokenID:      token.ID,
			ExpiresAt:    token.ExpiresAt,
		}
		if err := s.eventPub.PublishAuthenticated(ctx, event); err != nil {
			// The token is valid regardless of the notification
			s.logger.Warn("failed to publish authenticated event", "account", account.Address, "error", err)
		}
	}

	return token, nil
}
