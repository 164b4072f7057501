package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal statuses; approved and denied are terminal
const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalDenied   = "denied"
)

// Withdrawal Model
type Withdrawal struct {
	ID         uint            `gorm:"primaryKey" json:"id"`                          // Primary key
	MemberID   uint            `gorm:"index;not null" json:"member_id"`               // Requesting member
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`     // Requested amount
	Deduction  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"deduction"`  // Processing deduction
	NetAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"net_amount"` // Amount paid out
	Status     string          `gorm:"size:16;index;default:pending" json:"status"`   // pending, approved, denied
	DecidedBy  *uint           `json:"decided_by,omitempty"`                          // Admin who decided
	ApprovedAt *time.Time      `json:"approved_at,omitempty"`                         // Approval time
	DeniedAt   *time.Time      `json:"denied_at,omitempty"`                           // Denial time
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`                       // Request time
	UpdatedAt  time.Time       `json:"updated_at"`                                    // Last change
}
