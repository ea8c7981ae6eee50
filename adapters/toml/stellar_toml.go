// Package toml discovers a server's web auth configuration from its stellar.toml.
package toml

import (
	"context"
	"fmt"
	"net/http"

	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/internal/httpx"
	gotoml "github.com/pelletier/go-toml/v2"
)

// WellKnownPath is where a home domain publishes its stellar.toml
const WellKnownPath = "/.well-known/stellar.toml"

// Info holds the stellar.toml fields used for authentication
type Info struct {
	NetworkPassphrase   string `toml:"NETWORK_PASSPHRASE,omitempty"`
	SigningKey          string `toml:"SIGNING_KEY,omitempty"`
	WebAuthEndpoint     string `toml:"WEB_AUTH_ENDPOINT,omitempty"`
	TransferServerSEP24 string `toml:"TRANSFER_SERVER_SEP0024,omitempty"`
}

// BuildURL returns the stellar.toml location for a home domain, which may
// include a subdomain and a port
func BuildURL(scheme, homeDomain string) string {
	return scheme + "://" + homeDomain + WellKnownPath
}

// Fetch downloads and parses a stellar.toml
func Fetch(ctx context.Context, client *http.Client, url string) (*Info, error) {
	body, err := httpx.Get(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return Parse(body)
}

// Parse decodes stellar.toml content
func Parse(data []byte) (*Info, error) {
	var info Info
	if err := gotoml.Unmarshal(data, &info); err != nil {
		return nil, core.Malformed(core.ErrMalformedResponse, fmt.Errorf("failed to parse stellar.toml: %w", err))
	}
	return &info, nil
}
