/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Collaborators (API layer, stores) wrap these with additional context.

ERROR CATEGORIES:
  1. Input errors      - ValidationError, ErrInvalidDate (caller fixes input)
  2. Access errors     - ErrNotFound, ErrForbidden, ErrUnauthenticated
  3. Concurrency       - ErrConflict (caller should refetch and retry)
  4. Availability      - ErrTimeout (caller may retry with backoff)

USAGE:
  if errors.Is(err, ledger.ErrNotFound) { ... }

  var verr *ledger.ValidationError
  if errors.As(err, &verr) { ... iterate verr.Fields ... }
*/
package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the base error wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a transaction does not exist.
	ErrNotFound = errors.New("transaction not found")

	// ErrForbidden is returned on a cross-principal access attempt.
	// Surfaced and logged as a security-relevant event.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when a concurrent write loses a race.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrInvalidDate is returned when a reference date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrTimeout is returned when the store does not answer within its bound.
	ErrTimeout = errors.New("store timeout")

	// ErrUnauthenticated is returned by the identity collaborator when a
	// credential is missing or invalid. The engine itself never produces it.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrPrincipalMismatch is returned by the report aggregator when a supplied
	// transaction does not belong to the requesting principal. Defensive; it
	// should never trigger when the store is queried correctly.
	ErrPrincipalMismatch = errors.New("principal mismatch")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldViolation names a single rejected input field.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every violated field of a create/update submission.
type ValidationError struct {
	Fields []FieldViolation
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldViolation{Field: field, Reason: reason})
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// PrincipalMismatchError reports which transaction broke the ownership
// invariant during aggregation.
type PrincipalMismatchError struct {
	Requesting PrincipalID
	Owner      PrincipalID
	TxID       TransactionID
}

func (e *PrincipalMismatchError) Error() string {
	return fmt.Sprintf("principal mismatch: transaction %s owned by %s, requested by %s",
		e.TxID, e.Owner, e.Requesting)
}

func (e *PrincipalMismatchError) Unwrap() error { return ErrPrincipalMismatch }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
// Retries are the caller's responsibility, with explicit backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrTimeout)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden)
}

// IsNotFound returns true if the error indicates a missing transaction.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
