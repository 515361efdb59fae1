package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"bed-analytics-backend/config"
	"bed-analytics-backend/internal/analytics"
	"bed-analytics-backend/internal/api"
	"bed-analytics-backend/internal/db"
	"bed-analytics-backend/internal/monitor"
	"bed-analytics-backend/internal/notification"
	"bed-analytics-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "bed-analytics ", log.LstdFlags)

	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("failed to read .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Println("auth.jwt_secret is empty; cleaning-performance will reject every token")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	if cfg.Alerts.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			logger.Fatalf("VAPID keys must be configured when alerts are enabled.")
		}
		workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpushOptions)
		workerPool.Start(ctx)

		alerts := monitor.NewService(cfg.Alerts, analytics.NewEngine(appStore), workerPool)
		go alerts.Run(ctx)
	}

	router := api.NewRouter(cfg, appStore, &webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
