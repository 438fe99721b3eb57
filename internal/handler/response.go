package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/dafibh/fortuna/loan-ledger/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Code     string            `json:"code"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation         = "https://loan-ledger.app/errors/validation"
	ErrorTypeInvalidPayment     = "https://loan-ledger.app/errors/invalid-payment"
	ErrorTypeFutureDate         = "https://loan-ledger.app/errors/future-date"
	ErrorTypeImmutableField     = "https://loan-ledger.app/errors/immutable-field"
	ErrorTypeNotFound           = "https://loan-ledger.app/errors/not-found"
	ErrorTypeOutstandingBalance = "https://loan-ledger.app/errors/outstanding-balance"
	ErrorTypeLoanClosed         = "https://loan-ledger.app/errors/loan-closed"
	ErrorTypeConflict           = "https://loan-ledger.app/errors/conflict"
	ErrorTypeExceedsOutstanding = "https://loan-ledger.app/errors/exceeds-outstanding"
	ErrorTypeUnavailable        = "https://loan-ledger.app/errors/unavailable"
	ErrorTypeInternal           = "https://loan-ledger.app/errors/internal"
)

// Error codes
const (
	CodeValidation         = "validation"
	CodeInvalidPayment     = "invalid_payment"
	CodeFutureDate         = "future_date"
	CodeImmutableField     = "immutable_field"
	CodeNotFound           = "not_found"
	CodeOutstandingBalance = "outstanding_balance"
	CodeLoanClosed         = "loan_closed"
	CodeConflict           = "conflict"
	CodeExceedsOutstanding = "exceeds_outstanding"
	CodeUnavailable        = "unavailable"
	CodeInternal           = "internal"
)

func problem(c echo.Context, status int, typ, title, code, detail string, errs []ValidationError) error {
	return c.JSON(status, ProblemDetails{
		Type:     typ,
		Title:    title,
		Status:   status,
		Code:     code,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errs,
	})
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return problem(c, http.StatusBadRequest, ErrorTypeValidation, "Validation Error", CodeValidation, detail, errors)
}

// NewImmutableFieldError creates a response for attempts to change locked loan terms
func NewImmutableFieldError(c echo.Context, detail string, errors []ValidationError) error {
	return problem(c, http.StatusBadRequest, ErrorTypeImmutableField, "Immutable Field", CodeImmutableField, detail, errors)
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", CodeNotFound, detail, nil)
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return problem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", CodeConflict, detail, nil)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", CodeInternal, detail, nil)
}

// HandleServiceError maps ledger errors to problem responses. Unknown errors are
// logged and reported as 500 without leaking their text.
func HandleServiceError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidPayment):
		return problem(c, http.StatusBadRequest, ErrorTypeInvalidPayment, "Invalid Payment", CodeInvalidPayment, err.Error(), nil)
	case errors.Is(err, domain.ErrFutureDate):
		return problem(c, http.StatusBadRequest, ErrorTypeFutureDate, "Future Date", CodeFutureDate, err.Error(), nil)
	case errors.Is(err, domain.ErrImmutableField):
		return NewImmutableFieldError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrOutstandingBalance):
		return problem(c, http.StatusConflict, ErrorTypeOutstandingBalance, "Outstanding Balance", CodeOutstandingBalance, err.Error(), nil)
	case errors.Is(err, domain.ErrLoanClosed):
		return problem(c, http.StatusConflict, ErrorTypeLoanClosed, "Loan Closed", CodeLoanClosed, err.Error(), nil)
	case errors.Is(err, domain.ErrConcurrentModification):
		return NewConflictError(c, "loan was modified concurrently, retry the request")
	case errors.Is(err, domain.ErrExceedsOutstanding):
		return problem(c, http.StatusUnprocessableEntity, ErrorTypeExceedsOutstanding, "Exceeds Outstanding", CodeExceedsOutstanding, err.Error(), nil)
	case errors.Is(err, service.ErrAttachmentStorageNotConfigured):
		return problem(c, http.StatusServiceUnavailable, ErrorTypeUnavailable, "Service Unavailable", CodeUnavailable, err.Error(), nil)
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Failed to " + action)
		return NewInternalError(c, "Failed to "+action)
	}
}
