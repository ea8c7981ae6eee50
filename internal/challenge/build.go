package challenge

import (
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/webauth/core"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// WebAuthDomainDataName names the manage data entry holding the auth server domain
const WebAuthDomainDataName = "web_auth_domain"

// DefaultTimeout bounds how long a challenge can be answered
const DefaultTimeout = 5 * time.Minute

var (
	ErrInvalidChallenge = errors.New("invalid challenge")
	ErrNotSigned        = errors.New("transaction is missing a required signature")
)

// BuildParams describes a challenge issued by a server
type BuildParams struct {
	ServerKey         *keypair.Full
	ClientAccount     string
	HomeDomain        string
	WebAuthDomain     string
	ClientDomain      string
	ClientDomainKey   string // Account that must sign for ClientDomain
	MemoID            *uint64
	NetworkPassphrase string
	Timeout           time.Duration
}

// Build creates a challenge transaction signed by the server key
func Build(p BuildParams) (*txnbuild.Transaction, error) {
	if p.Timeout == 0 {
		p.Timeout = DefaultTimeout
	}
	if _, err := keypair.ParseAddress(p.ClientAccount); err != nil {
		return nil, fmt.Errorf("invalid client account %q: %w", p.ClientAccount, err)
	}
	if p.ClientDomain != "" {
		if _, err := keypair.ParseAddress(p.ClientDomainKey); err != nil {
			return nil, fmt.Errorf("invalid client domain key %q: %w", p.ClientDomainKey, err)
		}
	}

	var memo *txnbuild.MemoID
	if p.MemoID != nil {
		m := txnbuild.MemoID(*p.MemoID)
		memo = &m
	}

	tx, err := txnbuild.BuildChallengeTx(p.ServerKey.Seed(), p.ClientAccount, p.WebAuthDomain, p.HomeDomain, p.NetworkPassphrase, p.Timeout, memo)
	if err != nil {
		return nil, fmt.Errorf("failed to build challenge: %w", err)
	}
	if p.ClientDomain == "" {
		return tx, nil
	}

	return withClientDomain(tx, p)
}

// withClientDomain rebuilds a challenge with a trailing client_domain
// operation and signs it again with the server key
func withClientDomain(tx *txnbuild.Transaction, p BuildParams) (*txnbuild.Transaction, error) {
	source := tx.SourceAccount()
	tb := tx.Timebounds()

	ops := append(append([]txnbuild.Operation{}, tx.Operations()...), &txnbuild.ManageData{
		SourceAccount: p.ClientDomainKey,
		Name:          core.ClientDomainDataName,
		Value:         []byte(p.ClientDomain),
	})

	rebuilt, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &source,
		Operations:    ops,
		BaseFee:       tx.BaseFee(),
		Memo:          tx.Memo(),
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimebounds(tb.MinTime, tb.MaxTime),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build challenge: %w", err)
	}

	rebuilt, err = rebuilt.Sign(p.NetworkPassphrase, p.ServerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign challenge: %w", err)
	}

	return rebuilt, nil
}

// Parsed is a challenge read back by the server that issued it
type Parsed struct {
	Tx              *txnbuild.Transaction
	ClientAccount   string
	ClientDomain    string
	ClientDomainKey string
	MemoID          *uint64
}

// Read decodes a challenge and checks that serverAccount issued and signed it
// for homeDomain and webAuthDomain and that it is inside its time bounds
func Read(envelope, serverAccount, networkPassphrase, webAuthDomain, homeDomain string) (*Parsed, error) {
	if _, err := Decode(envelope); err != nil {
		return nil, err
	}

	tx, clientAccount, _, memo, err := txnbuild.ReadChallengeTx(envelope, serverAccount, networkPassphrase, webAuthDomain, []string{homeDomain})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChallenge, err)
	}

	parsed := &Parsed{Tx: tx, ClientAccount: clientAccount}
	if cd, ok := FindManageData(tx, core.ClientDomainDataName); ok {
		parsed.ClientDomain = string(cd.Value)
		parsed.ClientDomainKey = cd.SourceAccount
	}
	if memo != nil {
		id := uint64(*memo)
		parsed.MemoID = &id
	}

	return parsed, nil
}

// VerifySigners checks that the challenge is signed by the server, by every
// account in signers and by no other key
func VerifySigners(envelope, serverAccount, networkPassphrase, webAuthDomain, homeDomain string, signers ...string) error {
	found, err := txnbuild.VerifyChallengeTxSigners(envelope, serverAccount, networkPassphrase, webAuthDomain, []string{homeDomain}, signers...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidChallenge, err)
	}

	seen := make(map[string]bool, len(found))
	for _, s := range found {
		seen[s] = true
	}
	for _, s := range signers {
		if !seen[s] {
			return fmt.Errorf("%w: %s", ErrNotSigned, s)
		}
	}

	return nil
}

// Verify reads a signed challenge and requires signatures from its client
// account and, when the challenge names one, its client domain account
func Verify(envelope, serverAccount, networkPassphrase, webAuthDomain, homeDomain string) (*Parsed, error) {
	parsed, err := Read(envelope, serverAccount, networkPassphrase, webAuthDomain, homeDomain)
	if err != nil {
		return nil, err
	}

	signers := []string{parsed.ClientAccount}
	if parsed.ClientDomainKey != "" {
		signers = append(signers, parsed.ClientDomainKey)
	}
	if err := VerifySigners(envelope, serverAccount, networkPassphrase, webAuthDomain, homeDomain, signers...); err != nil {
		return nil, err
	}

	return parsed, nil
}
