package core

import "fmt"

// ValidationError reports input that fails a domain invariant.
// Sentinel instances below allow callers to use errors.Is, while
// errors.As(&ValidationError{}) matches the whole class.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

var (
	ErrInvalidAmount         = &ValidationError{Reason: "amount must be a positive number"}
	ErrEmptyDescription      = &ValidationError{Reason: "empty description"}
	ErrEmptyName             = &ValidationError{Reason: "empty name"}
	ErrInvalidDate           = &ValidationError{Reason: "invalid date"}
	ErrUnknownKind           = &ValidationError{Reason: "unknown transaction kind"}
	ErrUnknownAccountType    = &ValidationError{Reason: "unknown account category"}
	ErrMissingDestination    = &ValidationError{Reason: "transfer requires a destination account"}
	ErrSameAccountTransfer   = &ValidationError{Reason: "transfer destination equals source account"}
	ErrUnexpectedDestination = &ValidationError{Reason: "destination account only allowed on transfers"}
	ErrInvalidMonthKey       = &ValidationError{Reason: "month must be in YYYY-MM format"}
	ErrInvalidTarget         = &ValidationError{Reason: "target must be a positive number"}
)

// PersistenceError reports a failed store write or delete. Key names the
// row that failed; for balance writes it is the account identifier.
type PersistenceError struct {
	Table string
	Key   string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s %s: %v", e.Table, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AuthError reports a mutation attempted without an active session.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "auth: " + e.Reason
}

// ErrNoSession is returned when an operation runs without an owner identity.
var ErrNoSession = &AuthError{Reason: "no active session"}
