package core

import "time"

// ClientDomainDataName is the manage data entry a server adds to a challenge
// when it expects a signature from the client domain account.
const ClientDomainDataName = "client_domain"

// AccountIdentity identifies the account authenticating
type AccountIdentity struct {
	Address string // Stellar account address (G...)
}

// ChallengeResponse is the body returned by the web auth endpoint on GET
type ChallengeResponse struct {
	Transaction       string `json:"transaction"`        // Base64 TransactionEnvelope XDR
	NetworkPassphrase string `json:"network_passphrase"` // Network the challenge was built for
}

// AuthToken is a bearer token returned by the web auth endpoint
type AuthToken struct {
	Raw          string    `json:"token"`
	Issuer       string    `json:"iss,omitempty"`
	Account      string    `json:"sub,omitempty"` // Account, optionally suffixed with ":<memo>"
	ClientDomain string    `json:"client_domain,omitempty"`
	ID           string    `json:"jti,omitempty"`
	IssuedAt     time.Time `json:"iat"`
	ExpiresAt    time.Time `json:"exp"`
}

// String returns the raw token so it can be used directly in an Authorization header
func (t AuthToken) String() string {
	return t.Raw
}

// Expired reports whether the token is no longer valid at the given time
func (t AuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// AuthenticatedEvent describes a successful authentication
type AuthenticatedEvent struct {
	Account      string    `json:"account"`
	HomeDomain   string    `json:"home_domain"`
	ClientDomain string    `json:"client_domain,omitempty"`
	TokenID      string    `json:"token_id,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}
