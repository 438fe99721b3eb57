package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInternalError = errors.New("internal error")
)

// Ledger error kinds. Field-level errors wrap one of these so callers can
// match either the precise cause or the kind with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidPayment     = errors.New("payment must include a principal amount or interest periods")
	ErrExceedsOutstanding = errors.New("payment exceeds outstanding balance")
	ErrFutureDate         = errors.New("payment date is in the future")
	ErrOutstandingBalance = errors.New("loan has outstanding principal or accrued interest")
	ErrImmutableField     = errors.New("field cannot be changed after creation")
	ErrLoanClosed         = errors.New("loan is closed")
)

// Validation constants
const (
	MaxCounterpartyNameLength = 200
	MaxNoteLength             = 1000
	MoneyScale                = 2
	RateScale                 = 6
)
