// Package errs defines the error kinds shared by the catalog clients,
// controllers, and store. Callers classify failures with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the source confirmed the entity does not exist.
	// It is terminal and never retried.
	ErrNotFound = errors.New("not found")

	// ErrUpstream means the primary catalog source failed after all
	// retry attempts were exhausted.
	ErrUpstream = errors.New("upstream source failed")

	// ErrRateLimited is an HTTP 429 from a catalog source. It follows the
	// same retry policy as ErrUpstream but carries a distinct user message.
	ErrRateLimited = errors.New("rate limited by source")

	// ErrAuthRequired means a write was attempted without an
	// authenticated user.
	ErrAuthRequired = errors.New("authentication required")

	// ErrValidation is a client- or store-enforced constraint violation.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence is any other failure from the store.
	ErrPersistence = errors.New("persistence failed")
)

// Validationf builds an ErrValidation with a human-readable reason.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// Persistence wraps a store failure, preserving the original error text.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
