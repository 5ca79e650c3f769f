package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"transfers24/internal/config"
	cronpkg "transfers24/internal/cron"
	"transfers24/internal/handler"
	"transfers24/internal/handler/api"
	"transfers24/internal/middleware"
	"transfers24/internal/notify"
	"transfers24/internal/payment"
	"transfers24/internal/payment/przelewy24"
	"transfers24/internal/pkg/httpclient"
	"transfers24/internal/pkg/logger"
	"transfers24/internal/repository"
	"transfers24/internal/router"
)

func main() {
	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	txRepo := repository.NewTransactionRepository(db)
	if err := txRepo.Migrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	// --- Callback Deduper (Redis with in-memory fallback) ---
	deduper, dedupeErr := middleware.NewCallbackDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		cfg.Redis.DedupTTL,
	)
	if dedupeErr != nil {
		log.Warn("Redis unavailable for callback dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Notifier ---
	notifier, err := notify.NewTelegram(cfg.Bot.Token, cfg.Bot.AdminID, log)
	if err != nil {
		log.Warn("Admin notifications disabled", zap.Error(err))
		notifier = notify.NopNotifier{}
	}

	// --- Gateway ---
	p24 := cfg.Transfers24
	opts := []przelewy24.Option{
		przelewy24.WithHTTPClient(httpclient.New().WithTimeout(p24.Timeout)),
	}
	if p24.BaseURL != "" {
		opts = append(opts, przelewy24.WithBaseURL(p24.BaseURL))
	}
	gateway := przelewy24.New(p24.Credentials(), opts...)
	payments := payment.NewHandler(gateway, p24, payment.NewZapLogger(log))
	log.Info("Przelewy24 handler ready",
		zap.String("credentials", payments.Mode().String()),
		zap.String("environment", p24.Credentials().Environment.String()),
	)

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	router.Setup(e, router.Handlers{
		Payment:  api.NewPaymentHandler(payments, &api.Repos{Transaction: txRepo}, p24, log),
		Callback: handler.NewPaymentCallbackHandler(payments, p24.Credentials(), txRepo, deduper, notifier, log),
	}, log, cfg.Server.APIKey, deduper)

	// --- Cron Scheduler ---
	// Per-call deployments have no credentials of their own to check.
	var scheduler *cronpkg.Scheduler
	if payments.Mode() == payment.CredentialsGlobal {
		scheduler = cronpkg.New(p24.HealthCron, payments, txRepo, notifier, log)
		if err := scheduler.Start(); err != nil {
			log.Fatal("Failed to start cron scheduler", zap.Error(err))
		}
	}

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		log.Info("Starting transfers24 server", zap.String("addr", addr), zap.String("env", cfg.Server.Env))
		if err := e.Start(addr); err != nil {
			log.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
