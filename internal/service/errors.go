package service

import "errors"

// Kind classifies service errors for the transport layer
type Kind int

const (
	KindValidation Kind = iota + 1 // Malformed input, rejected before any transaction starts
	KindConflict                   // Duplicate identity, used pin, finalized request
	KindNotFound                   // Unknown referrer, member, wallet or withdrawal
	KindAuthorization              // Caller lacks the required role
	KindInsufficientFunds          // Balance does not cover the amount
	KindInfrastructure             // Persistence failure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindInfrastructure:
		return "infrastructure"
	}
	return "unknown"
}

// Error is a classified service failure. Code is stable and safe to show to clients.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches errors by code so wrapped copies still compare equal to the sentinels
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrNotAuthorized       = newError(KindAuthorization, "not_authorized", "admin role required")
	ErrInvalidTier         = newError(KindValidation, "invalid_tier", "unknown package tier")
	ErrPinNotFound         = newError(KindNotFound, "pin_not_found", "pin not found")
	ErrPinAlreadyUsed      = newError(KindConflict, "pin_already_used", "pin already used")
	ErrInvalidPin          = newError(KindConflict, "invalid_pin", "pin is not assigned to this referrer")
	ErrPinExpired          = newError(KindConflict, "pin_expired", "pin validity has lapsed")
	ErrPinNotTransferable  = newError(KindConflict, "pin_not_transferable", "only available pins can be transferred")
	ErrIneligibleRecipient = newError(KindValidation, "ineligible_recipient", "recipient must be an active ordinary member")
	ErrReferrerNotFound    = newError(KindNotFound, "referrer_not_found", "referrer not found")
	ErrMemberNotFound      = newError(KindNotFound, "member_not_found", "member not found")
	ErrDuplicateMember     = newError(KindConflict, "duplicate_member", "member with this mobile number or email already exists")
	ErrWalletNotFound      = newError(KindNotFound, "wallet_not_found", "wallet not found")
	ErrInsufficientFunds   = newError(KindInsufficientFunds, "insufficient_funds", "insufficient funds")
	ErrBelowMinimumBalance = newError(KindInsufficientFunds, "below_minimum_balance", "wallet balance is below the withdrawal minimum")
	ErrWithdrawalNotFound  = newError(KindNotFound, "withdrawal_not_found", "withdrawal request not found")
	ErrWithdrawalFinalized = newError(KindConflict, "withdrawal_finalized", "withdrawal request already decided")
	ErrInvalidStatus       = newError(KindValidation, "invalid_status", "status must be approved or denied")
	ErrInvalidAmount       = newError(KindValidation, "invalid_amount", "amount must be positive with at most two decimal places")
)

// validationError builds a one-off validation failure
func validationError(msg string) *Error {
	return newError(KindValidation, "invalid_input", msg)
}

// infra wraps a persistence failure
func infra(op string, err error) error {
	return &Error{Kind: KindInfrastructure, Code: "internal", Message: op, Err: err}
}

// KindOf returns the classification of err, Infrastructure for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// CodeOf returns the client-facing code of err
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}

// MessageOf returns a message that is safe to return to clients
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInfrastructure {
		return e.Message
	}
	return "internal error"
}
