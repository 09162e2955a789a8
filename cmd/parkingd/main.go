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
	"github.com/robfig/cron/v3"

	"parking-reservation-backend/config"
	"parking-reservation-backend/internal/api"
	"parking-reservation-backend/internal/auth"
	"parking-reservation-backend/internal/db"
	"parking-reservation-backend/internal/notification"
	"parking-reservation-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "parkingd ", log.LstdFlags)

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
		logger.Fatalf("auth.jwt_secret must be configured")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	if cfg.Admin.Email != "" {
		hash, err := auth.HashPassword(cfg.Admin.Password, cfg.Auth.BcryptCost)
		if err != nil {
			logger.Fatalf("failed to hash admin password: %v", err)
		}
		if err := db.SeedAdmin(gormDB, cfg.Admin.Email, hash); err != nil {
			logger.Fatalf("failed to seed admin account: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var webpushOptions *webpush.Options
	var pool *notification.WorkerPool
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
	} else {
		logger.Println("VAPID keys are not configured, push delivery disabled")
	}

	var mailer notification.Mailer
	if cfg.SMTP.Host != "" {
		mailer = &notification.SMTPMailer{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}
	} else {
		logger.Println("SMTP is not configured, email delivery disabled")
	}

	notifier := notification.NewService(gormDB, mailer, pool)
	appStore := store.New(gormDB, notifier)
	logger.Println("allocation engine initialized")

	// The due sweep also runs lazily on request paths; cron bounds
	// staleness when traffic is quiet.
	runner := cron.New()
	_, err = runner.AddFunc(cfg.Sweep.CronSpec, func() {
		converted, deferred, err := appStore.ActivateDueScheduledBookings(ctx, cfg.Sweep.Limit)
		if err != nil {
			logger.Printf("scheduled booking sweep failed: %v", err)
			return
		}
		if len(converted) > 0 || len(deferred) > 0 {
			logger.Printf("scheduled booking sweep: %d converted, %d waitlisted", len(converted), len(deferred))
		}
	})
	if err != nil {
		logger.Fatalf("invalid sweep cron spec %q: %v", cfg.Sweep.CronSpec, err)
	}
	runner.Start()

	handler := api.NewHandler(appStore, cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute, cfg.Auth.BcryptCost, webpushOptions)
	router := api.NewRouter(handler, cfg)
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

	cronCtx := runner.Stop()
	<-cronCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
