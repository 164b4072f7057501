package db

import (
	"referral_network/internal/domain" // Importing domain models

	"github.com/go-gormigrate/gormigrate/v2" // Versioned migrations
	"github.com/shopspring/decimal"          // Package prices
	"github.com/sirupsen/logrus"             // Structured logging
	"gorm.io/gorm"                           // GORM ORM library
)

// migrations lists every schema change in application order
var migrations = []*gormigrate.Migration{
	{
		ID: "202610010001_create_members",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&domain.Member{}, &domain.ReferralEdge{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&domain.ReferralEdge{}, &domain.Member{})
		},
	},
	{
		ID: "202610010002_create_packages_and_pins",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&domain.Package{}, &domain.Pin{}, &domain.PinTransfer{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&domain.PinTransfer{}, &domain.Pin{}, &domain.Package{})
		},
	},
	{
		ID: "202610010003_create_wallets",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&domain.Wallet{}, &domain.WalletEntry{}, &domain.Withdrawal{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&domain.Withdrawal{}, &domain.WalletEntry{}, &domain.Wallet{})
		},
	},
}

// DefaultPackages is the catalog seeded on first migration, one package per price tier
var DefaultPackages = []domain.Package{
	{Name: "Starter", Price: decimal.NewFromInt(60), BaseDirectIncome: decimal.NewFromInt(20)},
	{Name: "Silver", Price: decimal.NewFromInt(120), BaseDirectIncome: decimal.NewFromInt(40)},
	{Name: "Gold", Price: decimal.NewFromInt(250), BaseDirectIncome: decimal.NewFromInt(80)},
}

// Migrate applies all pending migrations and seeds the package catalog
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations)
	if err := m.Migrate(); err != nil {
		logrus.WithError(err).Error("migration failed")
		return err
	}
	if err := SeedPackages(db); err != nil {
		logrus.WithError(err).Error("package seed failed")
		return err
	}
	logrus.Info("Migration completed.")
	return nil
}

// SeedPackages inserts the default packages that are missing by name
func SeedPackages(db *gorm.DB) error {
	for _, p := range DefaultPackages {
		pkg := p
		if err := db.Where(domain.Package{Name: pkg.Name}).FirstOrCreate(&pkg).Error; err != nil {
			return err
		}
	}
	return nil
}
