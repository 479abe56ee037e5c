package types

import "errors"

// Store-level sentinel errors. Both store backends return these (wrapped
// with context values) so that callers can classify rejection reasons with
// errors.Is without depending on a concrete backend.
var (
	// ErrRecordNotFound means no record exists under the key
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordExpired means the record exists but its TTL has elapsed.
	// Callers treat this the same as absence; the record just has not been
	// physically evicted yet.
	ErrRecordExpired = errors.New("record expired")

	// ErrOwnerMismatch means a conditional transition required a different owner
	ErrOwnerMismatch = errors.New("record owner mismatch")

	// ErrStatusConflict means a conditional transition found the record in a
	// status other than the required one. A losing concurrent claimer or a
	// duplicate confirm observes this.
	ErrStatusConflict = errors.New("record status conflict")
)
