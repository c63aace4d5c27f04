package accesscode

import (
	"errors"
	"fmt"
)

// ErrNotFound is the single outward signal for a failed redemption.
// Both ErrMalformedCode and ErrCodeNotFound wrap it so callers can answer
// every failure the same way.
var ErrNotFound = errors.New("not found")

var (
	ErrMalformedCode = fmt.Errorf("malformed access code: %w", ErrNotFound)
	ErrCodeNotFound  = fmt.Errorf("access code not found: %w", ErrNotFound)
)

var (
	// ErrCodeTaken is returned by an insert when the store already holds the code.
	ErrCodeTaken = errors.New("access code already taken")

	// ErrUniquenessExhausted means every issuance attempt collided.
	// Question creation must be aborted.
	ErrUniquenessExhausted = errors.New("access code issuance exhausted all attempts")
)
