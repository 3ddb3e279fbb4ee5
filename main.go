package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"studio-booking/cmd"
	"studio-booking/internal/data/repository"
	"studio-booking/internal/wire"
	"studio-booking/pkg/database"
	"studio-booking/pkg/gateway"
	"studio-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Payment gateway client
	gw := gateway.NewStripeGateway(config.Gateway, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, gw, config, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background loops: expired-booking reaper and transfer reconciliation.
	go runReaper(ctx, app, config, logger)
	go runReconciliation(ctx, app, config, logger)

	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// runReaper periodically releases bookings that never completed payment.
func runReaper(ctx context.Context, app *wire.App, config *utils.Config, logger *zap.Logger) {
	ticker := time.NewTicker(config.Booking.ReaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.Service.Booking.ReleaseExpired(ctx); err != nil {
				logger.Error("Reaper pass failed", zap.Error(err))
			}
		}
	}
}

// runReconciliation periodically resubmits deferred and failed transfers.
func runReconciliation(ctx context.Context, app *wire.App, config *utils.Config, logger *zap.Logger) {
	ticker := time.NewTicker(config.Booking.ReaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.Service.Settlement.RetryPendingTransfers(ctx); err != nil {
				logger.Error("Reconciliation pass failed", zap.Error(err))
			}
		}
	}
}
