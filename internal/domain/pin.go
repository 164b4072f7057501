package domain

import "time"

// Pin statuses. Transitions only move forward: available -> transferred -> used, or available -> used.
const (
	PinAvailable   = "available"
	PinTransferred = "transferred"
	PinUsed        = "used"
)

// Pin is a single-use activation token for one package
type Pin struct {
	ID          uint       `gorm:"primaryKey" json:"id"`                          // Primary key
	Code        string     `gorm:"size:32;uniqueIndex;not null" json:"code"`      // Code typed at registration
	GeneratedBy uint       `gorm:"index;not null" json:"generated_by"`            // Issuing admin
	PackageID   uint       `gorm:"index;not null" json:"package_id"`              // Package tier unlocked by the pin
	AssignedTo  *uint      `gorm:"index" json:"assigned_to,omitempty"`            // Holder after transfer, owner after use
	Status      string     `gorm:"size:16;index;default:available" json:"status"` // available, transferred, used
	ValidUntil  time.Time  `json:"valid_until"`                                   // Pin cannot be used after this
	UsedAt      *time.Time `json:"used_at,omitempty"`                             // Consumption time
	CreatedAt   time.Time  `json:"created_at"`                                    // Issue time
	UpdatedAt   time.Time  `json:"updated_at"`                                    // Last status change
}

// PinTransfer Model, one row per hand-over
type PinTransfer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PinID        uint      `gorm:"index;not null" json:"pin_id"`
	FromMemberID uint      `gorm:"index;not null" json:"from_member_id"`
	ToMemberID   uint      `gorm:"index;not null" json:"to_member_id"`
	CreatedAt    time.Time `json:"created_at"`
}
