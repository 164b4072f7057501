package domain

import "github.com/shopspring/decimal" // Exact money arithmetic

// Package Model, owned by the catalog
type Package struct {
	ID               uint            `gorm:"primaryKey" json:"id"`                                  // Primary key
	Name             string          `gorm:"size:64;uniqueIndex;not null" json:"name"`              // Package name
	Price            decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`              // Joining price
	BaseDirectIncome decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"base_direct_income"` // Flat part of direct income
}
