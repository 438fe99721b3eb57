package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TimelineEntry is the display form of a ledger event
type TimelineEntry struct {
	ID            uuid.UUID
	Type          LoanEventType
	Label         string
	Amount        decimal.Decimal
	DisplayAmount string
	PeriodsCount  *int32
	Note          *string
	AccountID     *string
	TransactionID *string
	OccurredAt    time.Time
	CreatedAt     time.Time
}

// BuildTimeline projects events newest first. It never mutates its input and
// returns an empty (non-nil) slice for an empty log.
func BuildTimeline(events []*LoanEvent) []TimelineEntry {
	sorted := make([]*LoanEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].Sequence > sorted[j].Sequence
	})

	entries := make([]TimelineEntry, 0, len(sorted))
	for _, e := range sorted {
		entries = append(entries, TimelineEntry{
			ID:            e.ID,
			Type:          e.Type,
			Label:         e.Type.Label(),
			Amount:        e.Amount,
			DisplayAmount: DisplayAmount(e.Type, e.Amount),
			PeriodsCount:  e.PeriodsCount,
			Note:          e.Note,
			AccountID:     e.AccountID,
			TransactionID: e.TransactionID,
			OccurredAt:    e.OccurredAt,
			CreatedAt:     e.CreatedAt,
		})
	}
	return entries
}

// DisplayAmount formats an event amount signed by its effect on the balance:
// a disbursement opens it, payments reduce it, other events are neutral.
func DisplayAmount(eventType LoanEventType, amount decimal.Decimal) string {
	switch eventType {
	case LoanEventDisburse:
		return "+" + amount.StringFixed(2)
	case LoanEventPrincipalPayment, LoanEventInterestPayment:
		return "-" + amount.StringFixed(2)
	default:
		return amount.StringFixed(2)
	}
}
