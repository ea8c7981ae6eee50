package service

import (
	"context"
	"log/slog"

	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/internal/challenge"
	"github.com/layer-3/webauth/ports"
	"github.com/stellar/go/txnbuild"
)

// ChallengeSigner applies the wallet signer roles a challenge asks for
type ChallengeSigner struct {
	logger *slog.Logger
}

// NewChallengeSigner creates a challenge signer
func NewChallengeSigner(cfg Config) *ChallengeSigner {
	return &ChallengeSigner{logger: cfg.logger()}
}

// Sign decodes the challenge and signs it. When the challenge carries a
// client_domain operation the domain account signs first and the client
// account signs the transaction the domain signer returned.
func (s *ChallengeSigner) Sign(ctx context.Context, resp *core.ChallengeResponse, account core.AccountIdentity, signer ports.WalletSigner) (*txnbuild.Transaction, error) {
	tx, err := challenge.Decode(resp.Transaction)
	if err != nil {
		return nil, err
	}

	if challenge.RequiresClientDomain(tx) {
		s.logger.Debug("authenticating with client domain", "account", account.Address)

		tx, err = signer.SignWithDomainAccount(ctx, resp.Transaction, resp.NetworkPassphrase, account)
		if err != nil {
			return nil, err
		}
	}

	return signer.SignWithClientAccount(ctx, tx, resp.NetworkPassphrase, account)
}
