package domain

import "time" // Time for validity windows and timestamps

// Member roles
const (
	RoleUser  = "user"  // Ordinary network member
	RoleAdmin = "admin" // Administrator
)

// Member statuses
const (
	MemberActive   = "active"   // Member can log in and earn
	MemberInactive = "inactive" // Member is suspended
)

// Member Model
type Member struct {
	ID           uint       `gorm:"primaryKey" json:"id"`                              // Primary key
	Name         string     `gorm:"size:100;not null" json:"name"`                     // Display name
	MobileNumber string     `gorm:"size:20;uniqueIndex;not null" json:"mobile_number"` // Unique login identity
	Email        *string    `gorm:"size:191;uniqueIndex" json:"email,omitempty"`       // Optional unique email
	Password     string     `gorm:"not null" json:"-"`                                 // Hashed password
	Role         string     `gorm:"size:16;default:user" json:"role"`                  // Role: user or admin
	Status       string     `gorm:"size:16;default:active" json:"status"`              // Status: active or inactive
	ReferralCode string     `gorm:"size:32;uniqueIndex;not null" json:"referral_code"` // Code shared to recruit members
	ReferredBy   *string    `gorm:"size:32;index" json:"referred_by,omitempty"`        // Referral code of the placement parent
	Level        int        `gorm:"not null;default:1" json:"level"`                   // Rank derived from subtree size
	ValidUntil   *time.Time `json:"valid_until,omitempty"`                             // End of the membership validity window
	CreatedAt    time.Time  `json:"created_at"`                                        // Registration time
	UpdatedAt    time.Time  `json:"updated_at"`                                        // Last modification
}

// IsAdmin reports whether the member holds the admin role
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// ExtendValidity pushes the validity window forward by d, counting from now when it already lapsed
func (m *Member) ExtendValidity(now time.Time, d time.Duration) time.Time {
	start := now
	if m.ValidUntil != nil && m.ValidUntil.After(now) {
		start = *m.ValidUntil
	}
	until := start.Add(d)
	m.ValidUntil = &until
	return until
}
