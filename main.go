// Package main provides the main entry point for the subscription onboarding service
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lazparking/subscription-onboarding/app/handlers"
	"github.com/lazparking/subscription-onboarding/app/router"
	businessflow "github.com/lazparking/subscription-onboarding/business_flow"
	"github.com/lazparking/subscription-onboarding/config"
	"github.com/lazparking/subscription-onboarding/models"
	"github.com/lazparking/subscription-onboarding/repository"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log.Println("Starting subscription onboarding service...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	store, cleanup, err := initializeStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize identifier storage: %v", err)
	}
	defer cleanup()

	allocator := businessflow.NewIdentifierAllocator(store)
	sessionFlow := businessflow.NewSessionFlow(allocator)

	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := sessionFlow.StartSession(startCtx); err != nil {
		startCancel()
		log.Fatalf("Failed to start onboarding session: %v", err)
	}
	startCancel()

	sessionHandler := handlers.NewSessionHandler(sessionFlow)
	importExportHandler := handlers.NewImportExportHandler(sessionFlow, sessionFlow)

	r := router.NewFiberRouter(sessionHandler, importExportHandler, router.Options{
		CORSOrigins:   cfg.Server.CORSOrigins,
		EnableMetrics: cfg.Server.EnableMetrics,
		RateLimit:     cfg.Server.RateLimitPerMinute,
	})
	r.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := r.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := r.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger to stdout, a rotating file, or both.
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" {
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotated))
		return
	}
	log.SetOutput(rotated)
}

// initializeStore builds the identifier set repository for the configured
// provider. The returned cleanup closes any underlying connections.
func initializeStore(cfg config.StorageConfig) (repository.IDSetRepository, func(), error) {
	switch cfg.Provider {
	case "redis":
		client, err := initializeRedis(cfg)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisIDSetRepository(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil

	case "postgres":
		db, err := initializePostgres(cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repository.NewPostgresIDSetRepository(db), cleanup, nil

	case "memory":
		return repository.NewMemoryIDSetRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// initializeRedis initializes the Redis client and verifies connectivity
func initializeRedis(cfg config.StorageConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return client, nil
}

// initializePostgres initializes the database connection with connection pooling
func initializePostgres(cfg config.StorageConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(&models.IDSet{}); err != nil {
		return nil, fmt.Errorf("failed to migrate identifier tables: %w", err)
	}

	log.Printf("Database connection established with %d max open connections", cfg.MaxOpenConns)
	return db, nil
}
