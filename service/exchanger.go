package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/internal/httpx"
	"github.com/layer-3/webauth/ports"
	"github.com/stellar/go/txnbuild"
)

type tokenRequest struct {
	Transaction string `json:"transaction"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Exchanger trades a signed challenge for a bearer token
type Exchanger struct {
	endpoint  string
	client    *http.Client
	tokenizer ports.Tokenizer
}

// NewExchanger creates a token exchanger
func NewExchanger(cfg Config, tokenizer ports.Tokenizer) *Exchanger {
	return &Exchanger{
		endpoint:  cfg.WebAuthEndpoint,
		client:    cfg.HTTPClient,
		tokenizer: tokenizer,
	}
}

// Token posts the signed challenge and validates the returned token
func (e *Exchanger) Token(ctx context.Context, signed *txnbuild.Transaction) (*core.AuthToken, error) {
	envelope, err := signed.Base64()
	if err != nil {
		return nil, fmt.Errorf("failed to encode signed challenge: %w", err)
	}

	var resp tokenResponse
	if err := httpx.PostJSON(ctx, e.client, e.endpoint, nil, tokenRequest{Transaction: envelope}, &resp); err != nil {
		return nil, err
	}

	if isBlank(resp.Token) {
		return nil, core.ErrMissingToken
	}

	token, err := e.tokenizer.Decode(resp.Token)
	if err != nil {
		return nil, err
	}

	if token.Expired(time.Now()) {
		return nil, core.NewTokenExpiredError(token.ExpiresAt)
	}

	return token, nil
}
