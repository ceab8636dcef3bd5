package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"studypilot/internal/app"
	"studypilot/internal/config"
	"studypilot/internal/kvstore"
	"studypilot/internal/payments"
	"studypilot/internal/ratelimit"
	"studypilot/internal/server"
	"studypilot/internal/store"
	"studypilot/internal/util"
	"studypilot/pkg/ai"
	"studypilot/pkg/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var dataStore store.Store
	if cfg.DatabaseURL != "" {
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to init postgres store: %v", err)
		}
	} else {
		dataStore = store.NewKVStore(kvstore.NewRedisKV(cfg.RedisAddr, cfg.RedisPassword))
	}

	var checkout payments.CheckoutCreator
	if cfg.StripeSecretKey != "" {
		checkout, err = payments.NewStripeClient(cfg.StripeSecretKey, cfg.StripeSuccessURL, cfg.StripeCancelURL)
		if err != nil {
			log.Fatalf("failed to init stripe client: %v", err)
		}
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object store: %v", err)
		}
	}

	appCore, err := app.New(app.Config{
		Store:    dataStore,
		Model:    ai.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel),
		Payments: checkout,
		Objects:  objects,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}
	var chatLimiter, checkoutLimiter *ratelimit.FixedWindowLimiter
	if cfg.ChatRateLimitPerMinute > 0 {
		chatLimiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "", cfg.ChatRateLimitPerMinute, time.Minute)
		if err != nil {
			log.Fatalf("failed to init chat rate limiter: %v", err)
		}
	}
	if cfg.CheckoutRateLimitPerMinute > 0 {
		checkoutLimiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "", cfg.CheckoutRateLimitPerMinute, time.Minute)
		if err != nil {
			log.Fatalf("failed to init checkout rate limiter: %v", err)
		}
	}

	httpServer, err := server.New(server.Config{
		App:             appCore,
		ChatLimiter:     chatLimiter,
		CheckoutLimiter: checkoutLimiter,
		TrustedProxies:  trustedProxies,
		MaxUploadBytes:  cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
