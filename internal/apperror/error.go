// Package apperror provides the error taxonomy shared by services and handlers.
// Services return *AppError; handlers turn it into a status code and JSON body.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Authentication / authorization (401, 403)
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Validation family (400, 409, 422)
	CodeValidation        = "VALIDATION_ERROR"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeBusinessRule      = "BUSINESS_RULE_VIOLATION"
	CodeDuplicate         = "DUPLICATE_ENTRY"

	// Unexpected store failures (500)
	CodeIntegrity = "INTEGRITY_ERROR"
)

// AppError is the standard error type returned by services.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

func NewUnauthenticated(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthenticated,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInsufficientStock creates a stock shortage error
func NewInsufficientStock(productID string, requested, available int) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

func NewBusinessRule(message string) *AppError {
	return &AppError{
		Code:       CodeBusinessRule,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewIntegrity wraps an unexpected store failure; the cause is hidden from clients
func NewIntegrity(err error) *AppError {
	return &AppError{
		Code:       CodeIntegrity,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Wrap returns err unchanged when it already is an AppError and an integrity error otherwise
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAppError(err); ok {
		return err
	}
	return NewIntegrity(err)
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func hasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

func IsUnauthenticated(err error) bool   { return hasCode(err, CodeUnauthenticated) }
func IsForbidden(err error) bool         { return hasCode(err, CodeForbidden) }
func IsNotFound(err error) bool          { return hasCode(err, CodeNotFound) }
func IsInsufficientStock(err error) bool { return hasCode(err, CodeInsufficientStock) }
func IsIntegrity(err error) bool         { return hasCode(err, CodeIntegrity) }

// IsValidation matches the whole validation family
func IsValidation(err error) bool {
	appErr, ok := AsAppError(err)
	if !ok {
		return false
	}
	switch appErr.Code {
	case CodeValidation, CodeInsufficientStock, CodeBusinessRule, CodeDuplicate:
		return true
	}
	return false
}
