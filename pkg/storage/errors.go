package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInvalidState is returned when an operation is attempted against a record
// whose current status does not allow it, e.g. retracting past the deadline or
// sending a contract that is not a draft.
var ErrInvalidState = errors.New("record not in a valid state for this operation")

// ErrVersionConflict is returned when a version commit loses the race against a
// concurrent amendment acceptance. The caller may re-read and retry.
var ErrVersionConflict = errors.New("contract version conflict")

// ErrAlreadyFinalized is returned when finalization finds the contract already
// signed. Callers treat it as a successful no-op.
var ErrAlreadyFinalized = errors.New("contract already finalized")
