package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// Wallet buckets
const (
	BucketDirect   = "direct"   // Income from members placed directly under the owner
	BucketIndirect = "indirect" // Income from spillover placements
)

// Wallet Model, one per member with two independent accumulators
type Wallet struct {
	ID             uint            `gorm:"primaryKey" json:"id"`                                         // Primary key
	MemberID       uint            `gorm:"uniqueIndex;not null" json:"member_id"`                        // Foreign key to Member
	DirectIncome   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"direct_income"`   // Direct bucket
	IndirectIncome decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"indirect_income"` // Indirect bucket
	UpdatedAt      time.Time       `json:"updated_at"`                                                   // Last adjustment
}

// Total returns the combined balance of both buckets
func (w *Wallet) Total() decimal.Decimal {
	return w.DirectIncome.Add(w.IndirectIncome)
}
