package domain

import "time"

// ReferralEdge records where a member was actually placed in the tree.
// ReferrerID is the placement parent; SponsorID is whoever shared the referral
// code, which differs from ReferrerID when the registration spilled over.
type ReferralEdge struct {
	ID         uint      `gorm:"primaryKey" json:"id"`                    // Primary key
	ReferrerID uint      `gorm:"index;not null" json:"referrer_id"`       // Placement parent
	ReferredID uint      `gorm:"uniqueIndex;not null" json:"referred_id"` // New member, one inbound edge each
	SponsorID  uint      `gorm:"index;not null" json:"sponsor_id"`        // Owner of the referral code used
	CreatedAt  time.Time `json:"created_at"`                              // Placement time
}
