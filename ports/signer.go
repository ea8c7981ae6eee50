package ports

import (
	"context"

	"github.com/layer-3/webauth/core"
	"github.com/stellar/go/txnbuild"
)

// WalletSigner signs challenge transactions on behalf of the authenticating account
type WalletSigner interface {
	// SignWithClientAccount adds the client account signature to the challenge
	SignWithClientAccount(ctx context.Context, tx *txnbuild.Transaction, networkPassphrase string, account core.AccountIdentity) (*txnbuild.Transaction, error)

	// SignWithDomainAccount adds the client domain signature to the encoded challenge.
	// Implementations may hand the envelope to a remote custodian and return
	// whatever transaction it sends back.
	SignWithDomainAccount(ctx context.Context, transactionXDR, networkPassphrase string, account core.AccountIdentity) (*txnbuild.Transaction, error)
}
