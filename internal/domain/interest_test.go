package domain

import (
	"testing"
	"time"

	"github.com/dafibh/fortuna/loan-ledger/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInterestPerPeriod(t *testing.T) {
	principal := decimal.NewFromInt(50000)

	fixed := InterestPerPeriod(principal, InterestTypeFixed, decimal.NewFromInt(100))
	assert.True(t, fixed.Equal(decimal.NewFromInt(100)))

	// 5% of 50000
	pct := InterestPerPeriod(principal, InterestTypePercentage, decimal.NewFromInt(5))
	assert.True(t, pct.Equal(decimal.NewFromInt(2500)))

	// 1.5% of 1000 = 15
	frac := InterestPerPeriod(decimal.NewFromInt(1000), InterestTypePercentage, decimal.NewFromFloat(1.5))
	assert.Equal(t, "15.00", frac.StringFixed(2))
}

func TestInterestPerPeriod_RoundsPercentageToCents(t *testing.T) {
	tests := []struct {
		principal string
		rate      string
		want      string
	}{
		{"1000.01", "1.5", "15"},       // 15.00015
		{"333.33", "1.5", "5"},         // 4.99995
		{"1234.56", "0.125", "1.54"},   // 1.5432
		{"10000", "0.333333", "33.33"}, // 33.3333
	}

	for _, tt := range tests {
		t.Run(tt.principal+"@"+tt.rate, func(t *testing.T) {
			got := InterestPerPeriod(decimal.RequireFromString(tt.principal), InterestTypePercentage, decimal.RequireFromString(tt.rate))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
			assert.LessOrEqual(t, -got.Exponent(), int32(MoneyScale))
		})
	}

	// accrued interest over many periods stays on whole cents
	perPeriod := InterestPerPeriod(decimal.RequireFromString("333.33"), InterestTypePercentage, decimal.RequireFromString("1.5"))
	assert.Equal(t, "60.00", InterestAccrued(perPeriod, 12).StringFixed(2))
}

func TestInterestAccrued(t *testing.T) {
	got := InterestAccrued(decimal.NewFromInt(100), 3)
	assert.True(t, got.Equal(decimal.NewFromInt(300)))
	assert.True(t, InterestAccrued(decimal.NewFromInt(100), 0).IsZero())
}

func stateLoan(start time.Time) *Loan {
	loan := validLoan()
	loan.ID = uuid.New()
	loan.InterestStartDate = start
	return loan
}

func periods(n int32) *int32 { return &n }

func TestDeriveState_NoPayments(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	loan := stateLoan(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	events := []*LoanEvent{
		{Type: LoanEventDisburse, Amount: loan.Principal, Sequence: 1},
	}

	state := DeriveState(loan, events, now, util.MonthlyPolicyCalendar)

	assert.Equal(t, 2, state.PeriodsStarted)
	assert.Equal(t, 0, state.PeriodsPaid)
	assert.Equal(t, 2, state.PeriodsUnpaid)
	assert.Equal(t, "200.00", state.InterestAccrued.StringFixed(2))
	assert.True(t, state.OutstandingPrincipal.Equal(loan.Principal))
	assert.False(t, state.CanClose)
	if assert.NotNil(t, state.NextPeriodStartsAt) {
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *state.NextPeriodStartsAt)
	}
}

func TestDeriveState_WithPayments(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	loan := stateLoan(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	events := []*LoanEvent{
		{Type: LoanEventDisburse, Amount: loan.Principal, Sequence: 1},
		{Type: LoanEventPrincipalPayment, Amount: decimal.NewFromInt(2500), Sequence: 2},
		{Type: LoanEventInterestPayment, Amount: decimal.NewFromInt(100), PeriodsCount: periods(1), Sequence: 3},
		{Type: LoanEventAdjustment, Amount: decimal.Zero, Sequence: 4},
	}

	state := DeriveState(loan, events, now, util.MonthlyPolicyCalendar)

	assert.Equal(t, "7500.00", state.OutstandingPrincipal.StringFixed(2))
	assert.Equal(t, "2500.00", state.TotalPrincipalPaid.StringFixed(2))
	assert.Equal(t, 1, state.PeriodsPaid)
	assert.Equal(t, 1, state.PeriodsUnpaid)
	assert.Equal(t, state.PeriodsStarted, state.PeriodsPaid+state.PeriodsUnpaid)
	assert.Equal(t, "100.00", state.InterestAccrued.StringFixed(2))
	assert.Equal(t, "100.00", state.TotalInterestPaid.StringFixed(2))
}

func TestDeriveState_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	loan := stateLoan(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	events := []*LoanEvent{
		{Type: LoanEventDisburse, Amount: loan.Principal, Sequence: 1},
		{Type: LoanEventInterestPayment, Amount: decimal.NewFromInt(100), PeriodsCount: periods(1), Sequence: 2},
	}

	first := DeriveState(loan, events, now, util.MonthlyPolicyCalendar)
	second := DeriveState(loan, events, now, util.MonthlyPolicyCalendar)
	assert.Equal(t, first, second)
}

func TestDeriveState_UnpaidFlooredAtZero(t *testing.T) {
	now := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	loan := stateLoan(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	events := []*LoanEvent{
		{Type: LoanEventInterestPayment, Amount: decimal.NewFromInt(100), PeriodsCount: periods(1), Sequence: 2},
	}

	state := DeriveState(loan, events, now, util.MonthlyPolicyCalendar)
	assert.Equal(t, 0, state.PeriodsStarted)
	assert.Equal(t, 0, state.PeriodsUnpaid)
	assert.True(t, state.InterestAccrued.IsZero())
}

func TestDeriveState_ClosedLoanStopsAccruing(t *testing.T) {
	closedAt := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	loan := stateLoan(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	loan.Status = LoanStatusClosed
	events := []*LoanEvent{
		{Type: LoanEventDisburse, Amount: loan.Principal, Sequence: 1},
		{Type: LoanEventPrincipalPayment, Amount: loan.Principal, Sequence: 2},
		{Type: LoanEventInterestPayment, Amount: decimal.NewFromInt(100), PeriodsCount: periods(1), Sequence: 3},
		{Type: LoanEventClose, Amount: decimal.Zero, Sequence: 4, CreatedAt: closedAt},
	}

	state := DeriveState(loan, events, now, util.MonthlyPolicyCalendar)
	assert.Equal(t, 1, state.PeriodsStarted)
	assert.True(t, state.InterestAccrued.IsZero())
	assert.True(t, state.OutstandingPrincipal.IsZero())
	assert.Nil(t, state.NextPeriodStartsAt)
	assert.False(t, state.CanClose)
}

func TestDeriveState_DueDateStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	loan := stateLoan(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))

	soon := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	loan.DueDate = &soon
	state := DeriveState(loan, nil, now, util.MonthlyPolicyCalendar)
	if assert.NotNil(t, state.DaysUntilDue) {
		assert.Equal(t, 5, *state.DaysUntilDue)
	}
	assert.True(t, state.IsDueSoon)
	assert.False(t, state.IsOverdue)

	past := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	loan.DueDate = &past
	state = DeriveState(loan, nil, now, util.MonthlyPolicyCalendar)
	assert.Equal(t, -2, *state.DaysUntilDue)
	assert.True(t, state.IsOverdue)
	assert.False(t, state.IsDueSoon)
}

func TestDeriveState_Weekly(t *testing.T) {
	now := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	loan := stateLoan(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	loan.InterestPeriod = InterestPeriodWeekly
	loan.InterestType = InterestTypePercentage
	loan.InterestRate = decimal.NewFromInt(1)

	state := DeriveState(loan, nil, now, util.MonthlyPolicyCalendar)
	assert.Equal(t, 1, state.PeriodsStarted)
	assert.Equal(t, "100.00", state.InterestAccrued.StringFixed(2))
}
