package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/auth"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/config"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/initializers"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/mailer"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := initializers.NewLogger(cfg.IsProduction())
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initializers.ConnectToDb(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	provider, err := mailer.New(cfg.Mail, logger)
	if err != nil {
		return err
	}
	dispatcher := mailer.NewDispatcher(provider, logger, mailer.DispatcherOptions{
		Workers:      cfg.Mail.Workers,
		QueueSize:    cfg.Mail.QueueSize,
		MaxRetries:   cfg.Mail.MaxRetries,
		DrainTimeout: cfg.Mail.DrainTimeout,
	})
	// outlives ctx so mail queued during shutdown still drains
	dispatcher.Start(context.Background())
	defer dispatcher.Close()

	initializers.StartCleanup(ctx, db, cfg.CleanupInterval, cfg.UnverifiedUserTTL, logger)

	identity, err := auth.NewGoogleVerifier(ctx, cfg.Google.ClientID)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	flow := auth.NewFlowManager(auth.Options{
		Users:         db.Users(),
		Challenges:    db.Challenges(),
		Mail:          dispatcher,
		Templates:     mailer.Templates{AppName: cfg.AppName, FrontendURL: cfg.FrontendURL},
		Tokens:        tokens,
		Identity:      identity,
		Logger:        logger,
		AppName:       cfg.AppName,
		EncryptionKey: cfg.EncryptionKey,
		OTPTTL:        cfg.OTPTTL,
		ResetTTL:      cfg.ResetTTL,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routes.SetupRouter(routes.Deps{Config: cfg, Flow: flow, Tokens: tokens}),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server exiting gracefully")
	return nil
}
