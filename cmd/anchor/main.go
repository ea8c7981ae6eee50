package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/layer-3/webauth/adapters/tokenizer"
	anchorhttp "github.com/layer-3/webauth/transport/http"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Generate a new ECDSA key pair (you would normally load this from somewhere secure)
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		panic(err)
	}

	signingKey, err := loadKeypair("STELLAR_SECRET")
	if err != nil {
		log.Fatalf("Failed to load server key: %v", err)
	}
	if signingKey == nil {
		signingKey = keypair.MustRandom()
		logger.Warn("STELLAR_SECRET not set, using a random server key", "address", signingKey.Address())
	}

	domainKey, err := loadKeypair("DOMAIN_SECRET")
	if err != nil {
		log.Fatalf("Failed to load client domain key: %v", err)
	}

	tokenTTL := anchorhttp.DefaultTokenTTL
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if tokenTTL, err = time.ParseDuration(v); err != nil {
			log.Fatalf("Invalid TOKEN_TTL: %v", err)
		}
	}

	addr := getenv("LISTEN_ADDR", ":9000")
	cfg := anchorhttp.ServerConfig{
		SigningKey:          signingKey,
		NetworkPassphrase:   getenv("NETWORK_PASSPHRASE", network.TestNetworkPassphrase),
		HomeDomain:          getenv("HOME_DOMAIN", "localhost"+addr),
		WebAuthDomain:       os.Getenv("WEB_AUTH_DOMAIN"),
		WebAuthEndpoint:     os.Getenv("WEB_AUTH_ENDPOINT"),
		Tokenizer:           tokenizer.NewSigningJWTTokenizer(privateKey),
		TokenTTL:            tokenTTL,
		ResolveClientDomain: anchorhttp.TOMLResolver(&http.Client{Timeout: 10 * time.Second}, getenv("CLIENT_DOMAIN_SCHEME", "https")),
		DomainSigningKey:    domainKey,
		Logger:              logger,
	}

	// Setup Gin router
	router := anchorhttp.SetupRouter(anchorhttp.NewServer(cfg))

	logger.Info("starting web auth server", "addr", addr, "home_domain", cfg.HomeDomain, "signing_key", signingKey.Address())
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadKeypair(env string) (*keypair.Full, error) {
	secret := os.Getenv(env)
	if secret == "" {
		return nil, nil
	}
	return keypair.ParseFull(secret)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
