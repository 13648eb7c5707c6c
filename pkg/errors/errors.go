package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the result variants every public
// operation can return.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindAlreadyExists     Kind = "ALREADY_EXISTS"
	KindValidation        Kind = "VALIDATION"
	KindInvalidOperation  Kind = "INVALID_OPERATION"
	KindPermissionDenied  Kind = "PERMISSION_DENIED"
	KindInvalidConfidence Kind = "INVALID_CONFIDENCE"
	KindSystem            Kind = "SYSTEM"
)

// Validation error codes produced by the kernel.
const (
	CodeDeprecatedType       = "DEPRECATED_TYPE"
	CodeIrreflexiveViolation = "IRREFLEXIVE_VIOLATION"
	CodeRequiredMetadata     = "REQUIRED_METADATA_MISSING"
	CodeSelfReference        = "SELF_REFERENCE"
	CodeUniqueTarget         = "UNIQUE_TARGET_VIOLATION"
	CodeFractionOutOfRange   = "FRACTION_OUT_OF_RANGE"
)

// AppError is the single error type crossing package boundaries. It carries
// the kind, an optional machine-readable code, structured details, and the
// HTTP status the REST layer should map it to.
type AppError struct {
	Kind       Kind                   `json:"kind"`
	Code       string                 `json:"code,omitempty"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode sets a machine-readable code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails attaches structured details.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Constructor functions for the error kinds.

// NewNotFoundError reports a missing concept, relationship, or type.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Kind:       KindNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewAlreadyExistsError reports a uniqueness violation.
func NewAlreadyExistsError(message string) *AppError {
	return &AppError{
		Kind:       KindAlreadyExists,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewValidationError reports a rule or law failure with its code.
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Kind:       KindValidation,
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewFieldValidationError reports a validation failure tied to a single field.
func NewFieldValidationError(code, message, field, constraint string, value interface{}) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
		Details: map[string]interface{}{
			"field":      field,
			"constraint": constraint,
			"value":      value,
		},
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidOperationError reports an operation that is well-formed but not
// permitted in the current state, e.g. an update that changes nothing.
func NewInvalidOperationError(message string) *AppError {
	return &AppError{
		Kind:       KindInvalidOperation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewPermissionDeniedError reports a mutation attempted by a non-creator.
func NewPermissionDeniedError(operation, resource, reason string) *AppError {
	return &AppError{
		Kind:    KindPermissionDenied,
		Message: fmt.Sprintf("permission denied: cannot %s %s", operation, resource),
		Details: map[string]interface{}{
			"operation": operation,
			"resource":  resource,
			"reason":    reason,
		},
		HTTPStatus: http.StatusForbidden,
	}
}

// NewInvalidConfidenceError reports a confidence value outside [0,1]. Kept
// distinct from probability validation.
func NewInvalidConfidenceError(value, reason string) *AppError {
	return &AppError{
		Kind:    KindInvalidConfidence,
		Message: fmt.Sprintf("invalid confidence %s: %s", value, reason),
		Details: map[string]interface{}{
			"value":  value,
			"reason": reason,
		},
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewSystemError reports a host-runtime failure propagated upward.
func NewSystemError(message string, err error) *AppError {
	return &AppError{
		Kind:       KindSystem,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Helper functions.

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind checks whether an error carries a specific kind.
func IsKind(err error, kind Kind) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Kind == kind
}

// IsNotFound checks for a not found error.
func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

// IsAlreadyExists checks for a uniqueness violation.
func IsAlreadyExists(err error) bool {
	return IsKind(err, KindAlreadyExists)
}

// IsValidation checks for a validation error.
func IsValidation(err error) bool {
	return IsKind(err, KindValidation)
}

// IsInvalidOperation checks for an invalid operation error.
func IsInvalidOperation(err error) bool {
	return IsKind(err, KindInvalidOperation)
}

// IsPermissionDenied checks for a permission error.
func IsPermissionDenied(err error) bool {
	return IsKind(err, KindPermissionDenied)
}

// IsInvalidConfidence checks for a confidence validation error.
func IsInvalidConfidence(err error) bool {
	return IsKind(err, KindInvalidConfidence)
}

// HasCode checks whether an error carries a specific code.
func HasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// Wrap adds context to an error, preserving its kind when it is already an
// AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}
	return NewSystemError(message, err)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
