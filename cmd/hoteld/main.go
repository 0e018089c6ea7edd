package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"hotel-booking-backend/config"
	"hotel-booking-backend/internal/api"
	"hotel-booking-backend/internal/booking"
	"hotel-booking-backend/internal/db"
	"hotel-booking-backend/internal/mw"
	"hotel-booking-backend/internal/notification"
	"hotel-booking-backend/internal/store"
)

// limiterIdle is how long a client IP is remembered by the rate limiter.
const limiterIdle = 10 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded, using process environment: %v", err)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	setupLogger(cfg.Log)
	log.Infof("configuration loaded successfully from %s", configPath)

	policy, err := booking.ParseTerminalPolicy(cfg.Booking.TerminalPolicy)
	if err != nil {
		log.Fatalf("invalid booking configuration: %v", err)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Info("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var storeOpts []store.Option
	if cfg.Database.UseSerializable() {
		storeOpts = append(storeOpts, store.WithSerializable())
	}
	appStore := store.NewGormStore(gormDB, storeOpts...)
	log.Info("data store initialized")

	bookingOpts := []booking.Option{booking.WithTerminalPolicy(policy)}
	var webpushOptions *webpush.Options
	if cfg.Push.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			log.Fatal("VAPID keys must be configured when push is enabled. Please generate them and add them to your config file.")
		}
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, gormDB, webpushOptions)
		pool.Start(ctx)
		bookingOpts = append(bookingOpts, booking.WithNotifier(pool))
		log.WithField("workers", cfg.WorkerPool.Size).Info("notification worker pool started")
	}
	bookings := booking.NewService(appStore, bookingOpts...)

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	go sweepLimiter(ctx, limiter)

	// Initialize router
	router := api.NewRouter(api.NewHandler(appStore, bookings, webpushOptions), api.RouterConfig{
		Limiter:  limiter,
		CacheTTL: cfg.Server.CacheTTL,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		log.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	log.Info("Shutdown signal received, stopping services...")
	cancel()

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server Shutdown: %v", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("Server gracefully stopped")
}

func setupLogger(cfg config.LogConfig) {
	log.SetOutput(os.Stdout)
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if level < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}

func sweepLimiter(ctx context.Context, limiter *mw.IPRateLimiter) {
	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := limiter.Sweep(limiterIdle); n > 0 {
				log.WithField("clients", n).Debug("rate limiter forgot idle clients")
			}
		case <-ctx.Done():
			return
		}
	}
}
