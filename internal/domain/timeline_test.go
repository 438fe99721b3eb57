package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuildTimeline_Empty(t *testing.T) {
	entries := BuildTimeline(nil)
	assert.NotNil(t, entries)
	assert.Len(t, entries, 0)
}

func TestBuildTimeline_NewestFirst(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)

	events := []*LoanEvent{
		{Sequence: 1, Type: LoanEventDisburse, Amount: decimal.NewFromInt(1000), CreatedAt: t0},
		{Sequence: 2, Type: LoanEventPrincipalPayment, Amount: decimal.NewFromInt(200), CreatedAt: t1},
		{Sequence: 3, Type: LoanEventInterestPayment, Amount: decimal.NewFromInt(50), PeriodsCount: periods(2), CreatedAt: t1},
	}

	entries := BuildTimeline(events)

	if assert.Len(t, entries, 3) {
		assert.Equal(t, LoanEventInterestPayment, entries[0].Type)
		assert.Equal(t, LoanEventPrincipalPayment, entries[1].Type)
		assert.Equal(t, LoanEventDisburse, entries[2].Type)

		assert.Equal(t, "Interest Payment", entries[0].Label)
		assert.Equal(t, "-50.00", entries[0].DisplayAmount)
		assert.Equal(t, int32(2), *entries[0].PeriodsCount)
		assert.Equal(t, "+1000.00", entries[2].DisplayAmount)
	}

	// input untouched
	assert.Equal(t, int32(1), events[0].Sequence)
}

func TestDisplayAmount_Neutral(t *testing.T) {
	assert.Equal(t, "0.00", DisplayAmount(LoanEventClose, decimal.Zero))
	assert.Equal(t, "0.00", DisplayAmount(LoanEventAdjustment, decimal.Zero))
}
