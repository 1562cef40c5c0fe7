package ledger

import "errors"

// ErrNoDonations signals that an owner has not recorded any donation yet.
// This is a normal outcome, not a fault; the API layer maps it to 204.
var ErrNoDonations = errors.New("no donations recorded")

// ValidationError reports a malformed or out-of-range input field.
// Validation failures never touch the store and are never logged as
// system faults.
type ValidationError struct {
	Field  string // Name of the offending field
	Reason string // Human-readable reason
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
