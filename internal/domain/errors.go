package domain

import (
	"errors"
	"fmt"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

// ErrValidation rejects a command whose content fails a rule
// precondition. Never retried; no state is mutated.
func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

// ErrConflict signals that a compare-and-replace lost to a concurrent
// writer. Callers may resubmit; the engine never auto-retries.
func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

// ErrNoRule signals that no registered rule matches a (role, command)
// pair. A configuration fault, not a user-actionable rejection.
func ErrNoRule(role RoleTag, cmd CommandTag) *AppError {
	return &AppError{
		Code:    "NO_RULE",
		Message: fmt.Sprintf("no rule registered for (%s, %s)", role, cmd),
		Status:  500,
	}
}

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

// ErrInternal wraps collaborator I/O failures. Propagated unchanged;
// retry policy, if any, belongs to the caller.
func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

// IsValidation reports whether err is a command rejection.
func IsValidation(err error) bool { return hasCode(err, "VALIDATION_ERROR") }

// IsConflict reports whether err is an optimistic-concurrency loss.
func IsConflict(err error) bool { return hasCode(err, "CONFLICT") }

// IsNotFound reports whether err is a missing-entity error.
func IsNotFound(err error) bool { return hasCode(err, "NOT_FOUND") }

func hasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
