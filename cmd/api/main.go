package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendorhub/internal/config"
	"vendorhub/internal/db"
	"vendorhub/internal/httpserver"
	"vendorhub/internal/notification"
	"vendorhub/internal/payment"
	checkoutrepo "vendorhub/internal/repository/checkout"
	customerrepo "vendorhub/internal/repository/customer"
	orderrepo "vendorhub/internal/repository/order"
	productrepo "vendorhub/internal/repository/product"
	shippingrepo "vendorhub/internal/repository/shipping"
	shoprepo "vendorhub/internal/repository/shop"
	subscriptionrepo "vendorhub/internal/repository/subscription"
	checkoutsvc "vendorhub/internal/service/checkout"
	ordersvc "vendorhub/internal/service/order"
	productsvc "vendorhub/internal/service/product"
	shippingsvc "vendorhub/internal/service/shipping"
	shopsvc "vendorhub/internal/service/shop"
	subscriptionsvc "vendorhub/internal/service/subscription"

	"go.uber.org/zap"
)

const reapInterval = time.Hour

func main() {
	cfg := config.FromEnv()
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	shopRepo := shoprepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	checkoutRepo := checkoutrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	shippingRepo := shippingrepo.NewPostgres(dbpool, logger)
	subscriptionRepo := subscriptionrepo.NewPostgres(dbpool, logger)

	var notifier notification.Sender = notification.Nop{}
	if cfg.SMTPHost != "" {
		emailSender, err := notification.NewEmailSender(notification.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.EmailFrom,
		}, logger)
		if err != nil {
			logger.Fatal("init email sender", zap.Error(err))
		}
		notifier = emailSender
	} else {
		logger.Warn("SMTP not configured, notifications disabled")
	}

	provider := payment.NewResilient(
		payment.NewStripe(cfg.StripeAPIKey, cfg.StripeWebhookSecret, logger),
		logger,
	)

	shippingService := shippingsvc.New(
		shippingRepo,
		shippingsvc.DefaultRates(cfg.DefaultStandardRateID, cfg.DefaultExpressRateID),
		logger,
	)
	checkoutService := checkoutsvc.New(
		checkoutRepo, productRepo, shopRepo, shippingService, provider, notifier,
		checkoutsvc.Config{
			PlatformFeePercent: cfg.PlatformFeePercent,
			SessionTTL:         cfg.SessionTTL,
			BaseURL:            cfg.CheckoutBaseURL,
		},
		logger,
	)
	orderService := ordersvc.New(orderRepo, logger)
	shopService := shopsvc.New(shopRepo)
	productService := productsvc.New(productRepo, shopRepo, logger)
	subscriptionService := subscriptionsvc.New(subscriptionRepo, customerRepo, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Checkout:      checkoutService,
		Orders:        orderService,
		Shipping:      shippingService,
		Shops:         shopService,
		Products:      productService,
		Subscriptions: subscriptionService,
		Verifier:      provider,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	reapCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go reapExpiredSessions(reapCtx, checkoutService, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// reapExpiredSessions periodically deletes unpaid checkout sessions that
// passed their deadline.
func reapExpiredSessions(ctx context.Context, checkout *checkoutsvc.Service, logger *zap.Logger) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := checkout.ReapExpired(ctx)
			if err != nil {
				logger.Error("reap expired sessions", zap.Error(err))
				continue
			}
			if deleted > 0 {
				logger.Info("reaped expired checkout sessions", zap.Int64("deleted", deleted))
			}
		}
	}
}
