// Package sentinel defines the storage facts stores report. Services map them
// onto domain errors; stores never return domain errors themselves.
package sentinel

import "errors"

var (
	// ErrNotFound: no row for the key.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a unique key (payment reference, one confirmed
	// contribution per user and pool) rejected the write.
	ErrConflict = errors.New("conflict")
	// ErrCapacityExceeded: a guarded increment of slots_filled would pass
	// the pool's capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidState: the row is not in the state the transition requires.
	ErrInvalidState = errors.New("invalid state")
)
