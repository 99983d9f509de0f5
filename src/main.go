package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/thunderoad/setlistd/src/features/catalog"
	"github.com/thunderoad/setlistd/src/features/config"
	"github.com/thunderoad/setlistd/src/features/hosting"
	"github.com/thunderoad/setlistd/src/features/importing"
	"github.com/thunderoad/setlistd/src/features/logging"
	"github.com/thunderoad/setlistd/src/features/metrics"
	"github.com/thunderoad/setlistd/src/features/stats"
	"github.com/thunderoad/setlistd/src/infra/database"
	"github.com/thunderoad/setlistd/src/infra/watcher"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Create the database catalog
	db, err := database.NewSqliteCatalog(cfgManager.Get().Database.Path)
	if err != nil {
		log.Fatalf("failed to open catalog: %v", err)
	}
	defer db.Close()

	catalogService := catalog.NewService(db)
	statsService := stats.NewService(db)
	metricsService := metrics.NewService(db)

	// Create the importing service and its file watcher
	importingService := importing.NewService(db, cfgManager, statsService)
	fileWatcher, err := watcher.NewWatcher(importingService.EventChannel())
	if err != nil {
		log.Fatalf("failed to create file watcher: %v", err)
	}
	importingService.SetWatcher(fileWatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfgManager.Get().Import.AutoStartWatcher {
		if err := importingService.StartWatcher(ctx); err != nil {
			slog.Error("Failed to start import watcher", "error", err)
		}
	}

	// Create and start the Telegram bot if enabled
	var telegramBot *hosting.TelegramBot
	if cfgManager.Get().Telegram.Enabled {
		var err error
		telegramBot, err = hosting.NewTelegramBot(cfgManager, statsService, importingService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go telegramBot.Start()
			slog.Info("Telegram bot started")
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, catalogService, statsService, importingService, metricsService)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	// Shutdown the Telegram bot
	if telegramBot != nil {
		telegramBot.Stop()
		slog.Info("Telegram bot stopped")
	}

	importingService.StopWatcher()

	// Shutdown the server
	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
