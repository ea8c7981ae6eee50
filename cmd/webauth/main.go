package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/layer-3/webauth"
	"github.com/layer-3/webauth/adapters/events"
	"github.com/layer-3/webauth/adapters/signer"
	"github.com/layer-3/webauth/adapters/store"
	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/ports"
	"github.com/layer-3/webauth/service"
	"github.com/redis/go-redis/v9"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	homeDomain := os.Getenv("HOME_DOMAIN")
	if homeDomain == "" {
		log.Fatal("HOME_DOMAIN is required")
	}

	client, err := signer.NewKeypairSigner(os.Getenv("STELLAR_SECRET"))
	if err != nil {
		log.Fatalf("Failed to load STELLAR_SECRET: %v", err)
	}

	var walletSigner ports.WalletSigner = client
	if url := os.Getenv("CLIENT_DOMAIN_SIGNER_URL"); url != "" {
		headers := map[string]string{}
		if token := os.Getenv("CLIENT_DOMAIN_SIGNER_TOKEN"); token != "" {
			headers["Authorization"] = "Bearer " + token
		}
		domainSigner, err := signer.NewDomainSigner(client, signer.DomainSignerConfig{URL: url, RequestHeaders: headers})
		if err != nil {
			log.Fatalf("Failed to create client domain signer: %v", err)
		}
		walletSigner = domainSigner
	}

	cfg := webauth.AnchorConfig{
		NetworkPassphrase:   os.Getenv("NETWORK_PASSPHRASE"),
		DefaultClientDomain: os.Getenv("CLIENT_DOMAIN"),
		DefaultSigner:       walletSigner,
		HTTPClient:          &http.Client{Timeout: 30 * time.Second},
		Logger:              logger,
		Scheme:              os.Getenv("STELLAR_TOML_SCHEME"),
	}

	// Redis is optional: it caches tokens and carries authenticated events
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
		defer publisher.Close()

		cfg.Store = store.NewRedisStore(redisClient)
		cfg.Publisher = events.NewWatermillPublisher(publisher)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var opts []ports.AuthOption
	if memo := os.Getenv("MEMO_ID"); memo != "" {
		opts = append(opts, service.WithMemoID(memo))
	}

	anchor := webauth.NewAnchor(homeDomain, cfg)
	token, err := anchor.AuthToken(ctx, core.AccountIdentity{Address: client.Address()}, opts...)
	if err != nil {
		logger.Error("authentication failed", "home_domain", homeDomain, "error", err)
		os.Exit(1)
	}

	logger.Info("authenticated", "account", token.Account, "expires_at", token.ExpiresAt)
	fmt.Println(token)
}
