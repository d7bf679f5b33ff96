// Package apperror defines a centralized system for application-specific errors.
// Every layer of the application returns *AppError values (possibly wrapping an
// underlying error), and the HTTP layer maps them to status codes and response
// bodies in one place. This keeps the error taxonomy of the access-control and
// relationship-graph core explicit: an unauthenticated request, a forbidden
// request, a validation failure, a missing record and a self-follow attempt
// are all distinct, recoverable conditions.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the type of application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors.
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the database.
	DatabaseError
	// ConfigError represents an error related to application configuration.
	ConfigError
	// UnauthenticatedError means no identity was presented where one is required.
	UnauthenticatedError
	// ForbiddenError means an identity was presented but lacks the rights.
	ForbiddenError
	// NotFoundError represents a resource not found error.
	NotFoundError
	// ValidationError represents an input validation error, optionally with
	// per-field detail.
	ValidationError
	// InvalidEdgeError represents a rejected relationship, e.g. a self-follow.
	InvalidEdgeError
	// BadRequestError represents a generic malformed request.
	BadRequestError
	// ConflictError represents a conflict, e.g. an email that already exists.
	ConflictError
	// InternalError represents a generic internal server error.
	InternalError
)

// AppError is the custom error type for the application. It wraps an optional
// underlying error for debugging while exposing only Message (and Fields, for
// validation failures) to API clients.
type AppError struct {
	Type    ErrorType
	Message string
	// Fields carries per-field validation messages for ValidationError.
	Fields map[string]string
	Err    error
}

// Error satisfies the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error so errors.Is/errors.As can walk the chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case DatabaseError, ConfigError, InternalError:
		return http.StatusInternalServerError
	case UnauthenticatedError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case InvalidEdgeError:
		return http.StatusUnprocessableEntity
	case ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new AppError. Generic factory used by the typed
// constructors below.
func NewAppError(errType ErrorType, message string, underlying error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlying,
	}
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(message string, underlying error) *AppError {
	return NewAppError(DatabaseError, message, underlying)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, underlying error) *AppError {
	return NewAppError(ConfigError, message, underlying)
}

// NewUnauthenticatedError creates an error for requests with no identity.
func NewUnauthenticatedError(message string, underlying error) *AppError {
	return NewAppError(UnauthenticatedError, message, underlying)
}

// NewForbiddenError creates an error for identities lacking rights.
func NewForbiddenError(message string, underlying error) *AppError {
	return NewAppError(ForbiddenError, message, underlying)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(message string, underlying error) *AppError {
	return NewAppError(NotFoundError, message, underlying)
}

// NewValidationError creates a new ValidationError without field detail.
func NewValidationError(message string, underlying error) *AppError {
	return NewAppError(ValidationError, message, underlying)
}

// NewFieldValidationError creates a ValidationError carrying per-field messages.
func NewFieldValidationError(message string, fields map[string]string) *AppError {
	return &AppError{
		Type:    ValidationError,
		Message: message,
		Fields:  fields,
	}
}

// NewInvalidEdgeError creates an error for a rejected relationship edge.
func NewInvalidEdgeError(message string) *AppError {
	return NewAppError(InvalidEdgeError, message, nil)
}

// NewBadRequestError creates a new BadRequestError.
func NewBadRequestError(message string, underlying error) *AppError {
	return NewAppError(BadRequestError, message, underlying)
}

// NewConflictError creates a new ConflictError.
func NewConflictError(message string, underlying error) *AppError {
	return NewAppError(ConflictError, message, underlying)
}

// NewInternalError creates a new InternalError.
func NewInternalError(message string, underlying error) *AppError {
	return NewAppError(InternalError, message, underlying)
}

// ErrorResponse represents the error response payload sent to API clients.
type ErrorResponse struct {
	Error string `json:"error" example:"A description of the error"`
	// Fields is present only for validation failures.
	Fields map[string]string `json:"fields,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse. Only the user-facing
// Message and Fields are included, never the underlying error.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Fields: e.Fields}
}

// FromError attempts to convert a generic error to an *AppError.
// It returns the *AppError and true if successful, otherwise nil and false.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isType(err, NotFoundError) }

// IsUnauthenticated checks if an error is an Unauthenticated error.
func IsUnauthenticated(err error) bool { return isType(err, UnauthenticatedError) }

// IsForbidden checks if an error is a Forbidden error.
func IsForbidden(err error) bool { return isType(err, ForbiddenError) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isType(err, ValidationError) }

// IsInvalidEdge checks if an error is an InvalidEdge error.
func IsInvalidEdge(err error) bool { return isType(err, InvalidEdgeError) }

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool { return isType(err, ConflictError) }
