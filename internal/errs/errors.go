// Package errs defines the error taxonomy shared by the storage layer.
//
// Every failure that crosses a package boundary is an *Error carrying a
// Code. Callers branch on the code with the IsXxx helpers, which see
// through fmt.Errorf("%w") wrapping. The underlying driver error, if any,
// stays reachable through errors.Unwrap.
package errs

import (
	"errors"
	"fmt"
)

// Code categorizes storage layer errors.
type Code string

const (
	// CodeValidation marks input rejected before any I/O.
	CodeValidation Code = "VALIDATION"

	// CodeNotFound marks a lookup with no matching row.
	CodeNotFound Code = "NOT_FOUND"

	// CodeStorage marks connectivity or query execution failures.
	CodeStorage Code = "STORAGE"

	// CodeConfiguration marks invalid setup: duplicate schema
	// registration, missing route for a domain that must be routed.
	CodeConfiguration Code = "CONFIGURATION"

	// CodeRoutingConflict marks a migration that targets a database under
	// a domain label pinned elsewhere.
	CodeRoutingConflict Code = "ROUTING_CONFLICT"
)

// Error is the single error type of the storage layer.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Op names the operation that failed, e.g. "get profile".
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause (optional).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a CodeValidation error.
func Validation(op, format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a CodeNotFound error.
func NotFound(op, format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a driver or connectivity failure.
func Storage(op string, err error) *Error {
	return &Error{Code: CodeStorage, Op: op, Message: "storage failure", Err: err}
}

// Configuration creates a CodeConfiguration error.
func Configuration(op, format string, args ...any) *Error {
	return &Error{Code: CodeConfiguration, Op: op, Message: fmt.Sprintf(format, args...)}
}

// RoutingConflict reports a migration of domain into database that the
// routers refuse.
func RoutingConflict(database, domain string) *Error {
	return &Error{
		Code:    CodeRoutingConflict,
		Op:      "migrate",
		Message: fmt.Sprintf("domain %q may not be migrated into database %q", domain, database),
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsStorage reports whether err is a storage error.
func IsStorage(err error) bool { return CodeOf(err) == CodeStorage }

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return CodeOf(err) == CodeConfiguration }

// IsRoutingConflict reports whether err is a routing conflict.
func IsRoutingConflict(err error) bool { return CodeOf(err) == CodeRoutingConflict }
