package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanEventType is the kind of ledger entry
type LoanEventType string

const (
	LoanEventDisburse         LoanEventType = "disburse"
	LoanEventPrincipalPayment LoanEventType = "principal_payment"
	LoanEventInterestPayment  LoanEventType = "interest_payment"
	LoanEventAdjustment       LoanEventType = "adjustment"
	LoanEventClose            LoanEventType = "close"
)

// LoanEventLabels are the human readable names of event types
var LoanEventLabels = map[LoanEventType]string{
	LoanEventDisburse:         "Disbursed",
	LoanEventPrincipalPayment: "Principal Payment",
	LoanEventInterestPayment:  "Interest Payment",
	LoanEventAdjustment:       "Adjustment",
	LoanEventClose:            "Closed",
}

// Label returns the display name of the event type
func (t LoanEventType) Label() string {
	if label, ok := LoanEventLabels[t]; ok {
		return label
	}
	return string(t)
}

// LoanEvent is an immutable, append-only ledger entry.
// Sequence is 1-based and strictly increasing within a loan.
type LoanEvent struct {
	ID            uuid.UUID       `json:"id"`
	LoanID        uuid.UUID       `json:"loanId"`
	Sequence      int32           `json:"sequence"`
	Type          LoanEventType   `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	PeriodsCount  *int32          `json:"periodsCount,omitempty"`
	Note          *string         `json:"note,omitempty"`
	AccountID     *string         `json:"accountId,omitempty"`
	TransactionID *string         `json:"transactionId,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// NewLoanEvent builds an event of the given type with a fresh ID
func NewLoanEvent(loanID uuid.UUID, sequence int32, eventType LoanEventType, amount decimal.Decimal, occurredAt, createdAt time.Time) *LoanEvent {
	return &LoanEvent{
		ID:         uuid.New(),
		LoanID:     loanID,
		Sequence:   sequence,
		Type:       eventType,
		Amount:     amount,
		OccurredAt: occurredAt,
		CreatedAt:  createdAt,
	}
}

// Periods returns the number of interest periods covered, zero for non interest events
func (e *LoanEvent) Periods() int {
	if e.Type != LoanEventInterestPayment || e.PeriodsCount == nil {
		return 0
	}
	return int(*e.PeriodsCount)
}

// LastSequence returns the highest sequence in the log, 0 for an empty log
func LastSequence(events []*LoanEvent) int32 {
	var last int32
	for _, e := range events {
		if e.Sequence > last {
			last = e.Sequence
		}
	}
	return last
}
