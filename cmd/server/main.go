package main

import (
	"context"                          // context package is needed for Redis operations
	"referral_network/internal/api"    // Custom package for API handlers
	"referral_network/internal/config" // Custom package for configuration
	"referral_network/internal/db"     // Database connection and migrations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine-readable logs in production
	}

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the configured database
	database, err := db.Open(cfg.DBDriver, cfg.DSN(), cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	// Schema and package catalog are idempotent, apply on every start
	if err := db.Migrate(database); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	members, pins, ledger, withdrawals := api.NewServices(database, redisClient, cfg.CacheTTL)
	api.RegisterRoutes(r, api.Deps{
		DB:          database,        // Database for the admin guard
		Redis:       redisClient,     // Response cache
		Members:     members,         // Registration and profiles
		Pins:        pins,            // Pin lifecycle
		Ledger:      ledger,          // Wallet balances
		Withdrawals: withdrawals,     // Withdrawal requests
		JWTSecret:   cfg.JWTSecret,   // Token signing secret
		JWTTTL:      cfg.JWTTTL,      // Token lifetime
		CacheTTL:    cfg.CacheTTL,    // Listing cache lifetime
		CORSOrigins: cfg.CORSOrigins, // Allowed origins
	})

	logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {             // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
