package signer

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/internal/challenge"
	"github.com/layer-3/webauth/internal/httpx"
	"github.com/layer-3/webauth/ports"
	"github.com/stellar/go/txnbuild"
)

// DomainSignerConfig configures the remote client domain signer
type DomainSignerConfig struct {
	URL            string            // Endpoint of the custodian holding the domain key
	RequestHeaders map[string]string // E.g. an Authorization header for the custodian
	HTTPClient     *http.Client      // Optional, nil uses http.DefaultClient
}

// DomainSigner signs the client role locally and delegates the client domain
// role to a remote custodian
type DomainSigner struct {
	*KeypairSigner

	url     string
	headers map[string]string
	client  *http.Client
}

var _ ports.WalletSigner = (*DomainSigner)(nil)

var errNoClientSigner = errors.New("domain signer needs a client signer")

type domainSignRequest struct {
	Transaction       string `json:"transaction"`
	NetworkPassphrase string `json:"network_passphrase"`
}

// NewDomainSigner creates a signer that uses client for the client account
// and the custodian at cfg.URL for the domain account
func NewDomainSigner(client *KeypairSigner, cfg DomainSignerConfig) (*DomainSigner, error) {
	if client == nil {
		return nil, errNoClientSigner
	}

	return &DomainSigner{
		KeypairSigner: client,
		url:           cfg.URL,
		headers:       cfg.RequestHeaders,
		client:        cfg.HTTPClient,
	}, nil
}

// SignWithDomainAccount sends the challenge to the custodian and decodes the
// transaction it returns
func (s *DomainSigner) SignWithDomainAccount(ctx context.Context, transactionXDR, networkPassphrase string, _ core.AccountIdentity) (*txnbuild.Transaction, error) {
	req := domainSignRequest{
		Transaction:       transactionXDR,
		NetworkPassphrase: networkPassphrase,
	}

	var resp core.ChallengeResponse
	if err := httpx.PostJSON(ctx, s.client, s.url, s.headers, req, &resp); err != nil {
		return nil, err
	}

	if strings.TrimSpace(resp.Transaction) == "" {
		return nil, core.ErrMissingTransaction
	}
	if resp.NetworkPassphrase != "" && resp.NetworkPassphrase != networkPassphrase {
		return nil, core.NewNetworkMismatchError(networkPassphrase, resp.NetworkPassphrase)
	}

	return challenge.Decode(resp.Transaction)
}
