package errors

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeNetwork    ErrorType = "network"
)

// Error codes for extraction failures
const (
	CodeMissingCompanyID     = "MISSING_COMPANY_ID"
	CodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
)

// APIError represents a structured API error
type APIError struct {
	Type        ErrorType `json:"type"`
	Code        string    `json:"code"`
	Message     string    `json:"message"`
	Details     string    `json:"details,omitempty"`
	HTTPStatus  int       `json:"-"`
	InternalErr error     `json:"-"`

	// AvailableFields carries the payload's field names on extraction
	// failures so malformed upstream payloads can be debugged.
	AvailableFields []string `json:"available_fields,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Message, e.Details, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap returns the underlying error
func (e *APIError) Unwrap() error {
	return e.InternalErr
}

// NewAPIError creates a new API error
func NewAPIError(errorType ErrorType, code, message string, httpStatus int) *APIError {
	return &APIError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// ValidationError creates a validation error
func ValidationError(code, message string) *APIError {
	return NewAPIError(ErrorTypeValidation, code, message, http.StatusBadRequest)
}

// MissingIdentifierError creates the 400 returned when no company
// identifier can be resolved from a webhook payload. The field names
// actually present are echoed back to the caller.
func MissingIdentifierError(availableFields []string) *APIError {
	err := ValidationError(CodeMissingCompanyID, "No company ID found in webhook data")
	err.AvailableFields = availableFields
	return err
}

// MissingRequiredFieldError creates the 400 returned when the user or
// membership id cannot be resolved.
func MissingRequiredFieldError(field string) *APIError {
	err := ValidationError(CodeMissingRequiredField, fmt.Sprintf("Missing %s", field))
	err.Details = field
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resource string) *APIError {
	return NewAPIError(ErrorTypeNotFound, "RESOURCE_NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// InternalError creates an internal server error
func InternalError(message string) *APIError {
	return NewAPIError(ErrorTypeInternal, "INTERNAL_ERROR", message, http.StatusInternalServerError)
}

// DatabaseError creates a database error with its underlying cause
func DatabaseError(operation string, cause error) *APIError {
	return &APIError{
		Type:        ErrorTypeDatabase,
		Code:        "DATABASE_ERROR",
		Message:     fmt.Sprintf("Database operation failed: %s", operation),
		HTTPStatus:  http.StatusInternalServerError,
		InternalErr: cause,
	}
}

// NetworkError creates a network error. Enrichment lookups use this type;
// it is logged and swallowed, never surfaced to callers.
func NetworkError(operation string, cause error) *APIError {
	return &APIError{
		Type:        ErrorTypeNetwork,
		Code:        "NETWORK_ERROR",
		Message:     fmt.Sprintf("Network operation failed: %s", operation),
		HTTPStatus:  http.StatusServiceUnavailable,
		InternalErr: cause,
	}
}

// GetAPIError extracts an APIError from an error chain
func GetAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// HandleDatabaseError maps datastore errors to API errors. Record-not-found
// becomes a 404; everything else is a 500.
func HandleDatabaseError(err error, operation string) *APIError {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError("resource")
	}
	return DatabaseError(operation, err)
}
