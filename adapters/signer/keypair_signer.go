package signer

import (
	"context"
	"fmt"

	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/internal/challenge"
	"github.com/layer-3/webauth/ports"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// KeypairSigner signs both the client and the domain role with a single local key
type KeypairSigner struct {
	kp *keypair.Full
}

var _ ports.WalletSigner = (*KeypairSigner)(nil)

// NewKeypairSigner creates a signer from a secret seed (S...)
func NewKeypairSigner(secret string) (*KeypairSigner, error) {
	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to parse secret seed: %w", err)
	}
	return &KeypairSigner{kp: kp}, nil
}

// NewKeypairSignerFromFull wraps an already parsed key pair
func NewKeypairSignerFromFull(kp *keypair.Full) *KeypairSigner {
	return &KeypairSigner{kp: kp}
}

// Address returns the public address of the signing key
func (s *KeypairSigner) Address() string {
	return s.kp.Address()
}

// SignWithClientAccount signs the challenge with the local key
func (s *KeypairSigner) SignWithClientAccount(_ context.Context, tx *txnbuild.Transaction, networkPassphrase string, _ core.AccountIdentity) (*txnbuild.Transaction, error) {
	signed, err := tx.Sign(networkPassphrase, s.kp)
	if err != nil {
		return nil, fmt.Errorf("failed to sign with client account: %w", err)
	}
	return signed, nil
}

// SignWithDomainAccount decodes the challenge and signs it with the local key
func (s *KeypairSigner) SignWithDomainAccount(_ context.Context, transactionXDR, networkPassphrase string, _ core.AccountIdentity) (*txnbuild.Transaction, error) {
	tx, err := challenge.Decode(transactionXDR)
	if err != nil {
		return nil, err
	}

	signed, err := tx.Sign(networkPassphrase, s.kp)
	if err != nil {
		return nil, fmt.Errorf("failed to sign with domain account: %w", err)
	}
	return signed, nil
}
