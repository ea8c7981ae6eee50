package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/webauth/adapters/tokenizer"
	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/internal/challenge"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/require"
)

const testPassphrase = network.TestNetworkPassphrase

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	*Server
	srv  *httptest.Server
	host string
	key  *keypair.Full
}

// newTestServer starts a server whose home domain is its own listener address
func newTestServer(t *testing.T, mutate func(*ServerConfig)) *testServer {
	t.Helper()

	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	srv := httptest.NewUnstartedServer(nil)
	host := srv.Listener.Addr().String()

	cfg := ServerConfig{
		SigningKey:        keypair.MustRandom(),
		NetworkPassphrase: testPassphrase,
		HomeDomain:        host,
		Tokenizer:         tokenizer.NewSigningJWTTokenizer(signKey),
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	server := NewServer(cfg)
	srv.Config.Handler = SetupRouter(server)
	srv.Start()
	t.Cleanup(srv.Close)

	return &testServer{Server: server, srv: srv, host: host, key: cfg.SigningKey}
}

func staticResolver(keys map[string]string) ClientDomainResolver {
	return func(_ context.Context, domain string) (string, error) {
		key, ok := keys[domain]
		if !ok {
			return "", fmt.Errorf("unknown domain %s", domain)
		}
		return key, nil
	}
}

func (s *testServer) get(t *testing.T, path string, query url.Values) (int, []byte) {
	t.Helper()
	u := s.srv.URL + path
	if query != nil {
		u += "?" + query.Encode()
	}
	resp, err := s.srv.Client().Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func (s *testServer) post(t *testing.T, path string, in interface{}) (int, []byte) {
	t.Helper()
	payload, err := json.Marshal(in)
	require.NoError(t, err)
	resp, err := s.srv.Client().Post(s.srv.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

// challengeFor requests a challenge and decodes it
func (s *testServer) challengeFor(t *testing.T, query url.Values) *txnbuild.Transaction {
	t.Helper()
	status, body := s.get(t, "/auth", query)
	require.Equal(t, http.StatusOK, status, string(body))

	var resp core.ChallengeResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Equal(t, testPassphrase, resp.NetworkPassphrase)

	tx, err := challenge.Decode(resp.Transaction)
	require.NoError(t, err)
	return tx
}

// exchange posts a challenge signed by the given keys
func (s *testServer) exchange(t *testing.T, tx *txnbuild.Transaction, keys ...*keypair.Full) (int, []byte) {
	t.Helper()
	signed, err := tx.Sign(testPassphrase, keys...)
	require.NoError(t, err)
	envelope, err := signed.Base64()
	require.NoError(t, err)
	return s.post(t, "/auth", map[string]string{"transaction": envelope})
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error
}

func tokenFrom(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
