package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eduledger/internal/config"
	"eduledger/internal/db"
	"eduledger/internal/logger"
	"eduledger/internal/notify"
	"eduledger/internal/server"

	"github.com/redis/go-redis/v9"
)

func main() {
	logger.Init()
	logger.Info("Starting EduLedger")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := startNotifications(ctx, cfg)

	srv := server.New(database, cfg, publisher)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

// startNotifications runs the delivery worker when Redis is reachable. Settlement does
// not depend on it, so an unreachable Redis degrades to dropping notifications.
func startNotifications(ctx context.Context, cfg *config.Config) notify.Publisher {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, notifications disabled", "addr", cfg.RedisAddr, "error", err)
		_ = rdb.Close()
		return notify.Nop{}
	}

	mailer := notify.NewSMTPMailer(cfg.EmailFrom, cfg.EmailFromName, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	queue := notify.NewQueue(rdb, mailer)

	go queue.Start(ctx)
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = queue.Close()
				return
			case <-ticker.C:
				queue.QueueLength(ctx)
			}
		}
	}()

	logger.Info("Notification worker started", "redis", cfg.RedisAddr)
	return queue
}
