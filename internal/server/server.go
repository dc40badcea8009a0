package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/config"
	"github.com/jamiljuma2/edulink/internal/handler"
	"github.com/jamiljuma2/edulink/internal/middleware"
	"github.com/jamiljuma2/edulink/internal/provider/fx"
	"github.com/jamiljuma2/edulink/internal/provider/lipana"
	"github.com/jamiljuma2/edulink/internal/provider/paypal"
	"github.com/jamiljuma2/edulink/internal/repository"
	"github.com/jamiljuma2/edulink/internal/router"
	"github.com/jamiljuma2/edulink/internal/usecase/payment"
	"github.com/jamiljuma2/edulink/internal/usecase/subscription"
)

// New wires repositories, rail clients and usecases into an http.Server.
// The returned pool is handed back so main can close it on shutdown.
func New(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*http.Server, *pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	ledger := repository.NewTransactionRepository(db)
	wallets := repository.NewWalletRepository(db)
	subs := repository.NewSubscriptionRepository(db)
	profiles := repository.NewProfileRepository(db)
	runner := repository.NewRunner(db)

	lipanaClient := lipana.NewClient(cfg.LipanaBaseURL, cfg.LipanaAPIKey)
	paypalClient := paypal.NewClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalSecret)
	rates := fx.NewClient(cfg.FXBaseURL, cfg.FXFallbackRate, rdb, logger)

	paymentSvc := payment.NewService(
		ledger, wallets, subs, runner,
		lipanaClient, paypalClient,
		payment.CheckoutURLs{Return: cfg.PayPalReturnURL, Cancel: cfg.PayPalCancelURL},
		logger,
	)
	subscriptionSvc := subscription.NewService(subs, ledger, rates, lipanaClient, logger)

	auth := middleware.NewAuth(cfg.JWTSecret, profiles, logger)

	handlers := router.Handlers{
		Payments:      handler.NewPaymentHandler(paymentSvc, logger),
		Webhook:       handler.NewWebhookHandler(paymentSvc, cfg.LipanaWebhookSecret, logger),
		Subscriptions: handler.NewSubscriptionHandler(subscriptionSvc, logger),
		Writer:        handler.NewWriterHandler(paymentSvc, logger),
		Admin:         handler.NewAdminHandler(paymentSvc, logger),
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router.Setup(handlers, auth, rdb),
	}
	return srv, db, nil
}
