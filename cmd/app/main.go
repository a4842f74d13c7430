package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexJaimeH/narra-sub000/internal/config"
	"github.com/AlexJaimeH/narra-sub000/internal/infra/adapters/checkout"
	"github.com/AlexJaimeH/narra-sub000/internal/infra/adapters/identity"
	"github.com/AlexJaimeH/narra-sub000/internal/infra/adapters/mail"
	"github.com/AlexJaimeH/narra-sub000/internal/infra/api"
	"github.com/AlexJaimeH/narra-sub000/internal/infra/db/rest"
	"github.com/AlexJaimeH/narra-sub000/internal/infra/logging"
	"github.com/AlexJaimeH/narra-sub000/internal/infra/metrics"
	red "github.com/AlexJaimeH/narra-sub000/internal/infra/redis"
	"github.com/AlexJaimeH/narra-sub000/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Redis (optional) ----
	var locker red.Locker
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		locker = red.NewLocker(redisClient)
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis not configured; verify lock and rate limiting disabled")
	}

	// ---- Backend data gateway + repositories ----
	backend := rest.NewClient(&cfg.Backend)
	giftRepo := rest.NewGiftRepo(backend)
	deferredRepo := rest.NewDeferredGiftRepo(backend)
	profileRepo := rest.NewProfileRepo(backend)
	mgmtRepo := rest.NewManagementTokenRepo(backend)
	subscriberRepo := rest.NewSubscriberRepo(backend)
	eventRepo := rest.NewAccessEventRepo(backend)

	// ---- Collaborator adapters ----
	stripe := checkout.NewStripeClient(cfg.Stripe.SecretKey, cfg.Stripe.BaseURL)
	idp := identity.NewAdminClient(cfg.Identity.BaseURL, cfg.Identity.ServiceKey, cfg.App.BaseURL)
	mailer := mail.NewSMTPMailer(cfg.SMTP)
	notifier := mail.NewNotifier(mailer)

	// ---- Use cases ----
	provUC := usecase.NewProvisionUseCase(idp, profileRepo, mgmtRepo, giftRepo, notifier, cfg.App.ManagementURL, logger)
	giftUC := usecase.NewGiftUseCase(deferredRepo, giftRepo, provUC, idp, notifier, cfg.App.ActivationURL, cfg.App.ManagementURL, logger)
	checkoutUC := usecase.NewCheckoutUseCase(stripe, giftRepo, provUC, giftUC, locker, logger)
	accessUC := usecase.NewAccessUseCase(subscriberRepo, eventRepo, logger)

	// ---- HTTP server ----
	srv := api.NewServer(checkoutUC, provUC, giftUC, accessUC, limiter, cfg.HTTP.APIKey, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}
	cancel()
}
