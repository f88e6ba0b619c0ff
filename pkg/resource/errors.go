package resource

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrNotFound indicates the identifier does not resolve to an existing
	// resource, or resolves to the wrong kind given its trailing-slash shape.
	ErrNotFound ErrorCode = iota + 1

	// ErrConflict indicates a kind mismatch, a duplicate containment edge,
	// client-authored containment triples, or a delete of a non-empty container.
	ErrConflict

	// ErrUnsupportedMediaType indicates the representation's encoding is
	// incompatible with the backend.
	ErrUnsupportedMediaType

	// ErrUnsupportedKind indicates the declared resource kind disagrees with
	// the identifier's trailing-slash shape.
	ErrUnsupportedKind

	// ErrMethodNotAllowed indicates the operation is never valid on the target,
	// such as deleting the root container or creating under a non-container.
	ErrMethodNotAllowed

	// ErrNotImplemented indicates the backend does not implement the operation.
	ErrNotImplemented

	// ErrBadRequest indicates the request body could not be parsed.
	ErrBadRequest
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrNotFound:
		return "NotFound"
	case ErrConflict:
		return "Conflict"
	case ErrUnsupportedMediaType:
		return "UnsupportedMediaType"
	case ErrUnsupportedKind:
		return "UnsupportedKind"
	case ErrMethodNotAllowed:
		return "MethodNotAllowed"
	case ErrNotImplemented:
		return "NotImplemented"
	case ErrBadRequest:
		return "BadRequest"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// StoreError represents a resource store error with an error code.
type StoreError struct {
	Code    ErrorCode
	Message string
	Path    string
	Cause   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path: %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped backend-native error, if any.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewNotFoundError creates a NotFound error.
func NewNotFoundError(path string) *StoreError {
	return &StoreError{
		Code:    ErrNotFound,
		Message: "resource not found",
		Path:    path,
	}
}

// NewConflictError creates a Conflict error.
func NewConflictError(path, message string) *StoreError {
	return &StoreError{
		Code:    ErrConflict,
		Message: message,
		Path:    path,
	}
}

// NewUnsupportedMediaTypeError creates an UnsupportedMediaType error.
func NewUnsupportedMediaTypeError(message string) *StoreError {
	return &StoreError{
		Code:    ErrUnsupportedMediaType,
		Message: message,
	}
}

// NewUnsupportedKindError creates an UnsupportedKind error.
func NewUnsupportedKindError(path, message string) *StoreError {
	return &StoreError{
		Code:    ErrUnsupportedKind,
		Message: message,
		Path:    path,
	}
}

// NewMethodNotAllowedError creates a MethodNotAllowed error.
func NewMethodNotAllowedError(path, message string) *StoreError {
	return &StoreError{
		Code:    ErrMethodNotAllowed,
		Message: message,
		Path:    path,
	}
}

// NewNotImplementedError creates a NotImplemented error.
func NewNotImplementedError(operation string) *StoreError {
	return &StoreError{
		Code:    ErrNotImplemented,
		Message: fmt.Sprintf("operation not implemented: %s", operation),
	}
}

// NewBadRequestError creates a BadRequest error wrapping a parse failure.
func NewBadRequestError(message string, cause error) *StoreError {
	return &StoreError{
		Code:    ErrBadRequest,
		Message: message,
		Cause:   cause,
	}
}

// codeOf extracts the error code from an error chain, or 0 if the error is
// not a StoreError.
func codeOf(err error) ErrorCode {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code
	}
	return 0
}

// IsNotFoundError returns true if the error is a NotFound error.
func IsNotFoundError(err error) bool {
	return codeOf(err) == ErrNotFound
}

// IsConflictError returns true if the error is a Conflict error.
func IsConflictError(err error) bool {
	return codeOf(err) == ErrConflict
}

// IsUnsupportedMediaTypeError returns true if the error is an
// UnsupportedMediaType error.
func IsUnsupportedMediaTypeError(err error) bool {
	return codeOf(err) == ErrUnsupportedMediaType
}

// IsMethodNotAllowedError returns true if the error is a MethodNotAllowed error.
func IsMethodNotAllowedError(err error) bool {
	return codeOf(err) == ErrMethodNotAllowed
}

// IsNotImplementedError returns true if the error is a NotImplemented error.
func IsNotImplementedError(err error) bool {
	return codeOf(err) == ErrNotImplemented
}
