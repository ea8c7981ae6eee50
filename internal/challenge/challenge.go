package challenge

import (
	"errors"

	"github.com/layer-3/webauth/core"
	"github.com/stellar/go/txnbuild"
)

// Decode parses a base64 TransactionEnvelope XDR. Fee bump envelopes are
// rejected since a challenge is always a plain transaction.
func Decode(envelope string) (*txnbuild.Transaction, error) {
	generic, err := txnbuild.TransactionFromXDR(envelope)
	if err != nil {
		return nil, core.Malformed(core.ErrMalformedTransaction, err)
	}

	tx, ok := generic.Transaction()
	if !ok {
		return nil, core.Malformed(core.ErrMalformedTransaction, errors.New("fee bump transaction"))
	}

	return tx, nil
}

// FindManageData returns the first manage data operation with the given name
func FindManageData(tx *txnbuild.Transaction, name string) (*txnbuild.ManageData, bool) {
	for _, op := range tx.Operations() {
		md, ok := op.(*txnbuild.ManageData)
		if ok && md.Name == name {
			return md, true
		}
	}
	return nil, false
}

// RequiresClientDomain reports whether the challenge asks for a client domain signature
func RequiresClientDomain(tx *txnbuild.Transaction) bool {
	_, ok := FindManageData(tx, core.ClientDomainDataName)
	return ok
}
