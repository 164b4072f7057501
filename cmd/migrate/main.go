package main

import (
	"referral_network/internal/config" // Custom import path (Config)
	"referral_network/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	database, err := db.Open(cfg.DBDriver, cfg.DSN(), cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.WithField("driver", cfg.DBDriver).Info("Migration completed")
}
