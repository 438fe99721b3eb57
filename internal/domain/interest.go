package domain

import (
	"time"

	"github.com/dafibh/fortuna/loan-ledger/internal/util"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DueSoonDays is how close a due date must be to count as due soon
const DueSoonDays = 7

// InterestPerPeriod converts loan terms into the interest owed for one period.
// A fixed rate is already a currency amount; a percentage applies to the principal
// and rounds half away from zero to cents.
func InterestPerPeriod(principal decimal.Decimal, interestType InterestType, rate decimal.Decimal) decimal.Decimal {
	if interestType == InterestTypePercentage {
		return principal.Mul(rate).Div(hundred).Round(MoneyScale)
	}
	return rate
}

// InterestAccrued is the interest owed for the unpaid periods
func InterestAccrued(perPeriod decimal.Decimal, periodsUnpaid int) decimal.Decimal {
	return perPeriod.Mul(decimal.NewFromInt(int64(periodsUnpaid)))
}

// Cadence maps the loan's interest period onto the period calculator
func (p InterestPeriod) Cadence() util.Cadence {
	if p == InterestPeriodWeekly {
		return util.CadenceWeekly
	}
	return util.CadenceMonthly
}

// LoanState is the derived interest and balance view of a loan at one instant.
// It is computed from the stored loan and its events and never persisted.
type LoanState struct {
	EvaluatedAt          time.Time       `json:"evaluatedAt"`
	OutstandingPrincipal decimal.Decimal `json:"outstandingPrincipal"`
	TotalPrincipalPaid   decimal.Decimal `json:"totalPrincipalPaid"`
	PeriodsStarted       int             `json:"periodsStarted"`
	PeriodsPaid          int             `json:"periodsPaid"`
	PeriodsUnpaid        int             `json:"periodsUnpaid"`
	InterestPerPeriod    decimal.Decimal `json:"interestPerPeriod"`
	InterestAccrued      decimal.Decimal `json:"interestAccrued"`
	TotalInterestPaid    decimal.Decimal `json:"totalInterestPaid"`
	NextPeriodStartsAt   *time.Time      `json:"nextPeriodStartsAt,omitempty"`
	DaysUntilDue         *int            `json:"daysUntilDue,omitempty"`
	IsOverdue            bool            `json:"isOverdue"`
	IsDueSoon            bool            `json:"isDueSoon"`
	CanClose             bool            `json:"canClose"`
}

// DeriveState is a pure projection of the loan's event history at now.
// Closed loans stop accruing: their period count is frozen at the close event.
func DeriveState(loan *Loan, events []*LoanEvent, now time.Time, policy util.MonthlyPolicy) LoanState {
	state := LoanState{
		EvaluatedAt:        now,
		TotalPrincipalPaid: decimal.Zero,
		TotalInterestPaid:  decimal.Zero,
		InterestPerPeriod:  InterestPerPeriod(loan.Principal, loan.InterestType, loan.InterestRate),
	}

	evaluateAt := now
	for _, e := range events {
		switch e.Type {
		case LoanEventPrincipalPayment:
			state.TotalPrincipalPaid = state.TotalPrincipalPaid.Add(e.Amount)
		case LoanEventInterestPayment:
			state.PeriodsPaid += e.Periods()
			state.TotalInterestPaid = state.TotalInterestPaid.Add(e.Amount)
		case LoanEventClose:
			if e.CreatedAt.Before(evaluateAt) {
				evaluateAt = e.CreatedAt
			}
		}
	}

	state.OutstandingPrincipal = loan.Principal.Sub(state.TotalPrincipalPaid)
	if state.OutstandingPrincipal.IsNegative() {
		state.OutstandingPrincipal = decimal.Zero
	}

	start := loan.InterestStartDate
	cadence := loan.InterestPeriod.Cadence()
	state.PeriodsStarted = util.PeriodsBetween(start, evaluateAt, cadence, policy)

	state.PeriodsUnpaid = state.PeriodsStarted - state.PeriodsPaid
	if state.PeriodsUnpaid < 0 {
		state.PeriodsUnpaid = 0
	}
	state.InterestAccrued = InterestAccrued(state.InterestPerPeriod, state.PeriodsUnpaid)

	if !loan.IsClosed() {
		next := util.NextPeriodStart(start, now, cadence, policy)
		state.NextPeriodStartsAt = &next
		state.CanClose = state.OutstandingPrincipal.IsZero() && state.InterestAccrued.IsZero()
	}

	if loan.DueDate != nil && !loan.IsClosed() {
		today := util.StartOfDay(now)
		due := util.StartOfDay(loan.DueDate.In(now.Location()))
		days := int(due.Sub(today).Round(24*time.Hour) / (24 * time.Hour))
		state.DaysUntilDue = &days
		state.IsOverdue = days < 0
		state.IsDueSoon = days >= 0 && days <= DueSoonDays
	}

	return state
}
