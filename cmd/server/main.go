package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/app"
	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/config"
	"github.com/nekogravitycat/shareit-backend/internal/db"
	"github.com/nekogravitycat/shareit-backend/internal/events"
	"github.com/nekogravitycat/shareit-backend/internal/logger"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/storage"
)

type eventPublisher interface {
	booking.Publisher
	Close() error
}

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Connect DB
	var pool *pgxpool.Pool
	if cfg.Storage == config.StoragePostgres {
		pool, err = db.NewPool(ctx, cfg.DBDSN, int32(cfg.DBMaxConns))
		if err != nil {
			zl.Fatal("failed to connect to db", zap.Error(err))
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			zl.Fatal("failed to prepare schema", zap.Error(err))
		}
	} else {
		zl.Warn("using in-memory storage; data is lost on restart")
	}

	// Booking events
	var publisher eventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaBookingTopic, zl.Named("events"))
		zl.Info("publishing booking events",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaBookingTopic),
		)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zl.Error("failed to close event publisher", zap.Error(err))
		}
	}()

	// Photo blobs
	var photoStore storage.Storage
	if cfg.PhotoDir != "" {
		local, err := storage.NewLocalStorage(cfg.PhotoDir)
		if err != nil {
			zl.Fatal("failed to prepare photo storage", zap.Error(err))
		}
		photoStore = local
	} else {
		zl.Warn("PHOTO_DIR is empty; photos are kept in memory")
	}

	container := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		DBPool:       pool,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		BcryptCost:   cfg.BcryptCost,
		HeaderAuth: auth.HeaderOptions{
			Trust: cfg.TrustUserHeader,
			Name:  cfg.UserIDHeader,
		},
		Logger:         zl,
		Publisher:      publisher,
		PhotoStore:     photoStore,
		PhotoMaxBytes:  cfg.PhotoMaxBytes,
		PhotoMaxPixels: cfg.PhotoMaxPixels,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		zl.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	zl.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited gracefully")
}
