package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/layer-3/webauth/adapters/tokenizer"
	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/internal/challenge"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/require"
)

const (
	testPassphrase = network.TestNetworkPassphrase
	testHomeDomain = "testanchor.stellar.org"
)

// fakeAnchor is a minimal web auth server
type fakeAnchor struct {
	t        *testing.T
	server   *keypair.Full
	issuer   *tokenizer.JWTTokenizer
	srv      *httptest.Server
	tokenTTL time.Duration

	// Overrides applied to responses
	passphrase      string
	transaction     *string
	token           *string
	clientDomainKey string

	mu       sync.Mutex
	gets     []url.Values
	posts    int
	received *txnbuild.Transaction
}

func newFakeAnchor(t *testing.T) *fakeAnchor {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	a := &fakeAnchor{
		t:          t,
		server:     keypair.MustRandom(),
		issuer:     tokenizer.NewSigningJWTTokenizer(key),
		tokenTTL:   time.Hour,
		passphrase: testPassphrase,
	}
	a.srv = httptest.NewServer(http.HandlerFunc(a.handle))
	t.Cleanup(a.srv.Close)
	return a
}

func (a *fakeAnchor) config(signer *recordingSigner) Config {
	cfg := Config{
		NetworkPassphrase: testPassphrase,
		WebAuthEndpoint:   a.srv.URL + "/auth",
		HomeDomain:        testHomeDomain,
		HTTPClient:        a.srv.Client(),
	}
	if signer != nil {
		cfg.DefaultSigner = signer
	}
	return cfg
}

func (a *fakeAnchor) handle(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		a.gets = append(a.gets, r.URL.Query())
		json.NewEncoder(w).Encode(core.ChallengeResponse{
			Transaction:       a.challenge(r.URL.Query()),
			NetworkPassphrase: a.passphrase,
		})

	case http.MethodPost:
		a.posts++
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if tx, err := challenge.Decode(req.Transaction); err == nil {
			a.received = tx
		}
		json.NewEncoder(w).Encode(tokenResponse{Token: a.issue(r.URL.Query())})
	}
}

func (a *fakeAnchor) challenge(q url.Values) string {
	if a.transaction != nil {
		return *a.transaction
	}

	p := challenge.BuildParams{
		ServerKey:         a.server,
		ClientAccount:     q.Get("account"),
		HomeDomain:        testHomeDomain,
		WebAuthDomain:     testHomeDomain,
		NetworkPassphrase: testPassphrase,
	}
	if q.Get("client_domain") != "" {
		p.ClientDomain = q.Get("client_domain")
		p.ClientDomainKey = a.clientDomainKey
	}

	tx, err := challenge.Build(p)
	if err != nil {
		a.t.Errorf("build challenge: %v", err)
		return ""
	}
	envelope, err := tx.Base64()
	if err != nil {
		a.t.Errorf("encode challenge: %v", err)
	}
	return envelope
}

func (a *fakeAnchor) issue(url.Values) string {
	if a.token != nil {
		return *a.token
	}

	now := time.Now()
	token, err := a.issuer.Issue(core.AuthToken{
		Issuer:    a.srv.URL + "/auth",
		Account:   "G",
		ID:        "jti-1",
		IssuedAt:  now,
		ExpiresAt: now.Add(a.tokenTTL),
	})
	if err != nil {
		a.t.Errorf("issue token: %v", err)
		return ""
	}
	return token.Raw
}

func (a *fakeAnchor) requests() ([]url.Values, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]url.Values(nil), a.gets...), a.posts
}

// verifyChallenge checks that tx was issued by the anchor and carries
// signatures from exactly the given accounts besides the server
func (a *fakeAnchor) verifyChallenge(tx *txnbuild.Transaction, signers ...string) error {
	envelope, err := tx.Base64()
	if err != nil {
		return err
	}
	return challenge.VerifySigners(envelope, a.server.Address(), testPassphrase, testHomeDomain, testHomeDomain, signers...)
}

func strPtr(s string) *string {
	return &s
}

// recordingSigner signs with real keys and records the order of role calls
type recordingSigner struct {
	client *keypair.Full
	domain *keypair.Full
	err    error

	mu    sync.Mutex
	calls []string
}

func newRecordingSigner() *recordingSigner {
	return &recordingSigner{client: keypair.MustRandom(), domain: keypair.MustRandom()}
}

func (s *recordingSigner) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *recordingSigner) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *recordingSigner) account() core.AccountIdentity {
	return core.AccountIdentity{Address: s.client.Address()}
}

func (s *recordingSigner) SignWithClientAccount(_ context.Context, tx *txnbuild.Transaction, networkPassphrase string, _ core.AccountIdentity) (*txnbuild.Transaction, error) {
	s.record("client")
	if s.err != nil {
		return nil, s.err
	}
	return tx.Sign(networkPassphrase, s.client)
}

func (s *recordingSigner) SignWithDomainAccount(_ context.Context, transactionXDR, networkPassphrase string, _ core.AccountIdentity) (*txnbuild.Transaction, error) {
	s.record("domain")
	if s.err != nil {
		return nil, s.err
	}
	tx, err := challenge.Decode(transactionXDR)
	if err != nil {
		return nil, err
	}
	return tx.Sign(networkPassphrase, s.domain)
}
