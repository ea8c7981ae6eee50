package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/internal/httpx"
)

// Requester fetches challenge transactions from the web auth endpoint
type Requester struct {
	endpoint          string
	homeDomain        string
	networkPassphrase string
	client            *http.Client
	logger            *slog.Logger
}

// NewRequester creates a challenge requester
func NewRequester(cfg Config) *Requester {
	return &Requester{
		endpoint:          cfg.WebAuthEndpoint,
		homeDomain:        cfg.HomeDomain,
		networkPassphrase: cfg.NetworkPassphrase,
		client:            cfg.HTTPClient,
		logger:            cfg.logger(),
	}
}

// Challenge requests a challenge for account. Arguments are validated before
// any request is made.
func (r *Requester) Challenge(ctx context.Context, account core.AccountIdentity, memoID, clientDomain string) (*core.ChallengeResponse, error) {
	if err := validateChallengeParams(memoID, clientDomain); err != nil {
		return nil, err
	}

	u, err := url.Parse(r.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse web auth endpoint: %w", err)
	}

	q := u.Query()
	q.Set("account", account.Address)
	q.Set("home_domain", r.homeDomain)
	if !isBlank(memoID) {
		q.Set("memo", memoID)
	}
	if !isBlank(clientDomain) {
		q.Set("client_domain", clientDomain)
	}
	u.RawQuery = q.Encode()

	r.logger.Debug("challenge request",
		"account", account.Address,
		"memo", memoID,
		"client_domain", clientDomain,
	)

	var resp core.ChallengeResponse
	if err := httpx.GetJSON(ctx, r.client, u.String(), &resp); err != nil {
		return nil, err
	}

	if isBlank(resp.Transaction) {
		return nil, core.ErrMissingTransaction
	}

	if resp.NetworkPassphrase != r.networkPassphrase {
		return nil, core.NewNetworkMismatchError(r.networkPassphrase, resp.NetworkPassphrase)
	}

	return &resp, nil
}

// validateChallengeParams checks the memo first, then the memo and client
// domain exclusion. When both rules are broken both errors are reported.
func validateChallengeParams(memoID, clientDomain string) error {
	if isBlank(memoID) {
		return nil
	}

	var errs []error
	if _, err := strconv.ParseUint(memoID, 10, 64); err != nil {
		errs = append(errs, core.ErrInvalidMemoID)
	}
	if !isBlank(clientDomain) {
		errs = append(errs, core.ErrClientDomainWithMemo)
	}

	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
