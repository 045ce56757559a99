package models

import "errors"

// Error taxonomy for the core operations. Every service method returns one of
// these sentinels (possibly wrapped) for expected, recoverable conditions;
// anything else is treated as a transaction failure.
var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrUnauthorized        = errors.New("not authorized for this operation")
	ErrNotFound            = errors.New("record not found")
	ErrInvalidToken        = errors.New("token does not match this event")
	ErrNotRegistered       = errors.New("no active registration for this event")
	ErrAlreadyRegistered   = errors.New("already registered for this event")
	ErrAlreadyCheckedIn    = errors.New("already checked in to this event")
	ErrAlreadyCheckedOut   = errors.New("already checked out of this event")
	ErrNotCheckedIn        = errors.New("not checked in to this event")
	ErrAlreadyAwarded      = errors.New("attendance has already been awarded")
	ErrEventFull           = errors.New("event has reached its volunteer capacity")
	ErrInsufficientBalance = errors.New("insufficient ʻĀina Bucks balance")
	ErrOutOfStock          = errors.New("reward is out of stock")

	ErrEmailExists        = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotPending         = errors.New("account has already been reviewed")
)

// ErrorCode maps a sentinel to the wire code carried in ErrorResponse.
// Unknown errors map to TRANSACTION_FAILURE, the only kind logged in full.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidToken):
		return "INVALID_TOKEN"
	case errors.Is(err, ErrNotRegistered):
		return "NOT_REGISTERED"
	case errors.Is(err, ErrAlreadyRegistered):
		return "ALREADY_REGISTERED"
	case errors.Is(err, ErrAlreadyCheckedIn):
		return "ALREADY_CHECKED_IN"
	case errors.Is(err, ErrAlreadyCheckedOut):
		return "ALREADY_CHECKED_OUT"
	case errors.Is(err, ErrNotCheckedIn):
		return "NOT_CHECKED_IN"
	case errors.Is(err, ErrAlreadyAwarded):
		return "ALREADY_AWARDED"
	case errors.Is(err, ErrEventFull):
		return "EVENT_FULL"
	case errors.Is(err, ErrInsufficientBalance):
		return "INSUFFICIENT_BALANCE"
	case errors.Is(err, ErrOutOfStock):
		return "OUT_OF_STOCK"
	case errors.Is(err, ErrEmailExists):
		return "EMAIL_EXISTS"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrNotPending):
		return "NOT_PENDING"
	default:
		return "TRANSACTION_FAILURE"
	}
}
