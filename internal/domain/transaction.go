package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet entry kinds
const (
	EntryDirectIncome   = "direct_income"   // Credit to the direct bucket
	EntryIndirectIncome = "indirect_income" // Credit to the indirect bucket
	EntryWithdrawal     = "withdrawal"      // Debit for an approved withdrawal
)

// WalletEntry Model, the audit trail of every ledger movement
type WalletEntry struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                      // Primary key
	MemberID     uint            `gorm:"index;not null" json:"member_id"`           // Wallet owner
	Bucket       string          `gorm:"size:16;not null" json:"bucket"`            // direct or indirect
	Kind         string          `gorm:"size:32;not null" json:"kind"`              // Entry kind
	Amount       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"` // Signed amount, debits negative
	SourceID     *uint           `gorm:"index" json:"source_id,omitempty"`          // Registered member that triggered the income
	WithdrawalID *uint           `gorm:"index" json:"withdrawal_id,omitempty"`      // Withdrawal that caused the debit
	CreatedAt    time.Time       `json:"created_at"`                                // Entry time
}
