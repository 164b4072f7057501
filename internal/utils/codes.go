package utils

import (
	"strings" // Case conversion

	"github.com/google/uuid" // Random identifiers
)

// NewCode returns a random upper-case code of n hex characters, prefixed
func NewCode(prefix string, n int) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(raw) {
		n = len(raw)
	}
	return prefix + strings.ToUpper(raw[:n])
}

// NewReferralCode returns a code members share to recruit
func NewReferralCode() string {
	return NewCode("REF", 8)
}

// NewPinCode returns a fresh activation pin code
func NewPinCode() string {
	return NewCode("PIN", 12)
}
