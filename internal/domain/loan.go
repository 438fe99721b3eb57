package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrLoanNotFound             = fmt.Errorf("%w: loan not found", ErrNotFound)
	ErrLoanDirectionInvalid     = fmt.Errorf("%w: direction must be 'borrow' or 'lend'", ErrValidation)
	ErrCounterpartyNameEmpty    = fmt.Errorf("%w: counterparty name is required", ErrValidation)
	ErrCounterpartyNameTooLong  = fmt.Errorf("%w: counterparty name must be 200 characters or less", ErrValidation)
	ErrLoanPrincipalInvalid     = fmt.Errorf("%w: principal must be positive", ErrValidation)
	ErrLoanAccountRequired      = fmt.Errorf("%w: account is required", ErrValidation)
	ErrInterestTypeInvalid      = fmt.Errorf("%w: interest type must be 'fixed' or 'percentage'", ErrValidation)
	ErrInterestRateInvalid      = fmt.Errorf("%w: interest rate must not be negative", ErrValidation)
	ErrInterestPeriodInvalid    = fmt.Errorf("%w: interest period must be 'weekly' or 'monthly'", ErrValidation)
	ErrInterestStartDateMissing = fmt.Errorf("%w: interest start date is required", ErrValidation)
	ErrDueDateBeforeStart       = fmt.Errorf("%w: due date must be after the interest start date", ErrValidation)
	ErrLoanNoteTooLong          = fmt.Errorf("%w: note must be 1000 characters or less", ErrValidation)
	ErrAmountPrecision          = fmt.Errorf("%w: amounts allow at most 2 decimal places and 15 integer digits", ErrValidation)
	ErrInterestRatePrecision    = fmt.Errorf("%w: interest rate has too many digits", ErrValidation)
)

// Storage holds amounts as NUMERIC(19, 4) and rates as NUMERIC(19, 6)
var (
	maxAmount = decimal.New(1, 15)
	maxRate   = decimal.New(1, 13)
)

func fitsScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Truncate(scale))
}

// ValidateAmount checks that d is a whole number of cents within the storable range
func ValidateAmount(d decimal.Decimal) error {
	if !fitsScale(d, MoneyScale) || d.Abs().GreaterThanOrEqual(maxAmount) {
		return ErrAmountPrecision
	}
	return nil
}

// ValidateInterestRate checks the rate's sign and precision. Fixed rates are amounts
// and carry cents; percentages allow six decimal places.
func ValidateInterestRate(interestType InterestType, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return ErrInterestRateInvalid
	}
	scale := int32(RateScale)
	if interestType == InterestTypeFixed {
		scale = MoneyScale
	}
	if !fitsScale(rate, scale) || rate.GreaterThanOrEqual(maxRate) {
		return ErrInterestRatePrecision
	}
	return nil
}

// LoanDirection tells whether the user owes the counterparty or is owed
type LoanDirection string

const (
	LoanDirectionBorrow LoanDirection = "borrow"
	LoanDirectionLend   LoanDirection = "lend"
)

// IsValid reports whether d is a known direction
func (d LoanDirection) IsValid() bool {
	return d == LoanDirectionBorrow || d == LoanDirectionLend
}

// LoanStatus is the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "active"
	LoanStatusClosed LoanStatus = "closed"
)

// InterestType selects how InterestRate is interpreted
type InterestType string

const (
	InterestTypeFixed      InterestType = "fixed"
	InterestTypePercentage InterestType = "percentage"
)

// IsValid reports whether t is a known interest type
func (t InterestType) IsValid() bool {
	return t == InterestTypeFixed || t == InterestTypePercentage
}

// InterestPeriod is the accrual cadence
type InterestPeriod string

const (
	InterestPeriodWeekly  InterestPeriod = "weekly"
	InterestPeriodMonthly InterestPeriod = "monthly"
)

// IsValid reports whether p is a known cadence
func (p InterestPeriod) IsValid() bool {
	return p == InterestPeriodWeekly || p == InterestPeriodMonthly
}

// Loan is the stored aggregate. Outstanding principal and interest are never
// stored here; they are derived from the event history by DeriveState.
type Loan struct {
	ID                uuid.UUID       `json:"id"`
	Direction         LoanDirection   `json:"direction"`
	CounterpartyName  string          `json:"counterpartyName"`
	Principal         decimal.Decimal `json:"principal"`
	InterestType      InterestType    `json:"interestType"`
	InterestRate      decimal.Decimal `json:"interestRate"`
	InterestPeriod    InterestPeriod  `json:"interestPeriod"`
	InterestStartDate time.Time       `json:"interestStartDate"`
	DueDate           *time.Time      `json:"dueDate,omitempty"`
	Status            LoanStatus      `json:"status"`
	AccountID         string          `json:"accountId"`
	Note              *string         `json:"note,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Validate checks the origination rules
func (l *Loan) Validate() error {
	if !l.Direction.IsValid() {
		return ErrLoanDirectionInvalid
	}
	if err := ValidateCounterpartyName(l.CounterpartyName); err != nil {
		return err
	}
	if l.Principal.LessThanOrEqual(decimal.Zero) {
		return ErrLoanPrincipalInvalid
	}
	if err := ValidateAmount(l.Principal); err != nil {
		return err
	}
	if strings.TrimSpace(l.AccountID) == "" {
		return ErrLoanAccountRequired
	}
	if !l.InterestType.IsValid() {
		return ErrInterestTypeInvalid
	}
	if err := ValidateInterestRate(l.InterestType, l.InterestRate); err != nil {
		return err
	}
	if !l.InterestPeriod.IsValid() {
		return ErrInterestPeriodInvalid
	}
	if l.InterestStartDate.IsZero() {
		return ErrInterestStartDateMissing
	}
	if err := l.ValidateDueDate(l.DueDate); err != nil {
		return err
	}
	if l.Note != nil && len(*l.Note) > MaxNoteLength {
		return ErrLoanNoteTooLong
	}
	return nil
}

// ValidateDueDate requires a due date, when present, to fall strictly after the interest start date
func (l *Loan) ValidateDueDate(dueDate *time.Time) error {
	if dueDate != nil && !dueDate.After(l.InterestStartDate) {
		return ErrDueDateBeforeStart
	}
	return nil
}

// ValidateCounterpartyName checks a (trimmed) counterparty name
func ValidateCounterpartyName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrCounterpartyNameEmpty
	}
	if len(name) > MaxCounterpartyNameLength {
		return ErrCounterpartyNameTooLong
	}
	return nil
}

// IsClosed returns true once the loan reached its terminal state
func (l *Loan) IsClosed() bool {
	return l.Status == LoanStatusClosed
}

// LoanFilter narrows loan listings
type LoanFilter struct {
	Direction  *LoanDirection // nil = all directions
	ShowClosed bool
}

// Matches reports whether the loan passes the filter
func (f LoanFilter) Matches(l *Loan) bool {
	if f.Direction != nil && l.Direction != *f.Direction {
		return false
	}
	if !f.ShowClosed && l.IsClosed() {
		return false
	}
	return true
}

// ErrConcurrentModification is returned by repositories when the event log
// changed between read and append.
var ErrConcurrentModification = errors.New("loan was modified concurrently")

// LoanRepository persists loans together with their event logs
type LoanRepository interface {
	// Create stores a new loan and its initial events atomically
	Create(ctx context.Context, loan *Loan, events []*LoanEvent) (*Loan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	List(ctx context.Context, filter LoanFilter) ([]*Loan, error)
	// Save persists the mutable fields (counterparty, due date, note, status)
	Save(ctx context.Context, loan *Loan) (*Loan, error)
	// Delete removes the loan and its events
	Delete(ctx context.Context, id uuid.UUID) error
	ListEvents(ctx context.Context, loanID uuid.UUID) ([]*LoanEvent, error)
	// AppendEvents appends events and saves the loan in one atomic step.
	// The first event's sequence must follow the last stored one, otherwise
	// ErrConcurrentModification is returned and nothing is written.
	AppendEvents(ctx context.Context, loan *Loan, events []*LoanEvent) error
	// ListEventsByLoans returns the event logs of several loans keyed by loan ID
	ListEventsByLoans(ctx context.Context, loanIDs []uuid.UUID) (map[uuid.UUID][]*LoanEvent, error)
}
