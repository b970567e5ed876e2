package apperror

import (
	"errors"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// Kind is the stable error category surfaced to callers.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindConflict   Kind = "CONFLICT"
	KindNotFound   Kind = "NOT_FOUND"
	KindForbidden  Kind = "FORBIDDEN"
	KindInternal   Kind = "INTERNAL"
)

// Error is a business-rule failure with a human readable reason.
// Domain packages declare these as sentinels and compare with errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func Conflict(message string) *Error   { return New(KindConflict, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func Forbidden(message string) *Error  { return New(KindForbidden, message) }

// KindOf classifies any error. Field validation failures are VALIDATION,
// anything unrecognised (storage, transaction) is INTERNAL.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return KindValidation
	}

	return KindInternal
}

// Message returns the reason attached to err, or a generic text for
// internal failures so storage details never reach the caller.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return "Validation failed"
	}

	return "An unexpected error occurred"
}
