// Package econ holds the ledger data model: chain state, accounts, and the
// engine-facing error taxonomy.
package econ

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures. Every rejected operation carries exactly
// one kind; callers map kinds to stable RPC error codes.
type Kind string

const (
	// KindValidation covers malformed input: non-positive amounts, unknown
	// IDs, config that fails its own checks. Rejected before any mutation.
	KindValidation Kind = "validation"

	// KindInsufficientFunds covers balance, pool, or liquidity shortfalls.
	KindInsufficientFunds Kind = "insufficient_funds"

	// KindCapacity covers hit limits: supply cap, sold-out limited items,
	// exhausted daily exchange allowance.
	KindCapacity Kind = "capacity"

	// KindInternal marks invariant violations that should be unreachable
	// from the public contract. These are logged loudly, never coerced.
	KindInternal Kind = "internal"
)

// Error is the engine failure type. Operations reject with an *Error before
// touching shared state, so a non-nil error always means no mutation.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Reason
}

// Validationf builds a KindValidation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

// InsufficientFundsf builds a KindInsufficientFunds error.
func InsufficientFundsf(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientFunds, Reason: fmt.Sprintf(format, args...)}
}

// Capacityf builds a KindCapacity error.
func Capacityf(format string, args ...any) *Error {
	return &Error{Kind: KindCapacity, Reason: fmt.Sprintf(format, args...)}
}

// Internalf builds a KindInternal error.
func Internalf(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Reason: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind from an error chain. Errors that did not
// originate in an engine operation report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
