package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/dafibh/fortuna/loan-ledger/internal/util"
	"github.com/dafibh/fortuna/loan-ledger/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Clock returns the current instant
type Clock func() time.Time

// SystemClock reads the wall clock
func SystemClock() time.Time {
	return time.Now()
}

// AttachmentPurger removes everything stored for a loan outside the ledger tables.
// LoanAttachments is read before the loan row is deleted; PurgeAttachments runs after.
type AttachmentPurger interface {
	LoanAttachments(ctx context.Context, loanID uuid.UUID) ([]*domain.Attachment, error)
	PurgeAttachments(ctx context.Context, loanID uuid.UUID, attachments []*domain.Attachment) error
}

// LoanServiceConfig holds the ledger settings
type LoanServiceConfig struct {
	Clock         Clock
	Location      *time.Location // business dates are read in this zone
	MonthlyPolicy util.MonthlyPolicy
}

// LoanService is the loan ledger: it validates commands against the derived
// state and appends events. Mutations hold a per-loan lock for the whole
// read-validate-append cycle.
type LoanService struct {
	loanRepo       domain.LoanRepository
	eventPublisher websocket.EventPublisher
	purger         AttachmentPurger
	clock          Clock
	location       *time.Location
	policy         util.MonthlyPolicy
	locks          *loanLocks
}

// NewLoanService creates a new LoanService
func NewLoanService(loanRepo domain.LoanRepository, cfg LoanServiceConfig) *LoanService {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MonthlyPolicy == "" {
		cfg.MonthlyPolicy = util.MonthlyPolicyCalendar
	}
	return &LoanService{
		loanRepo: loanRepo,
		clock:    cfg.Clock,
		location: cfg.Location,
		policy:   cfg.MonthlyPolicy,
		locks:    newLoanLocks(),
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *LoanService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetAttachmentPurger sets the hook that removes a loan's attachments on delete
func (s *LoanService) SetAttachmentPurger(purger AttachmentPurger) {
	s.purger = purger
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *LoanService) publishEvent(loanID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(loanID, event)
	}
}

// Location returns the zone business dates are read in
func (s *LoanService) Location() *time.Location {
	return s.location
}

// Now returns the service clock's current instant in the ledger zone
func (s *LoanService) Now() time.Time {
	return s.clock().In(s.location)
}

// LoanDetail is a loan with its derived state and event history
type LoanDetail struct {
	Loan     *domain.Loan
	State    domain.LoanState
	Events   []*domain.LoanEvent
	Timeline []domain.TimelineEntry
}

func (s *LoanService) detail(loan *domain.Loan, events []*domain.LoanEvent, now time.Time) *LoanDetail {
	return &LoanDetail{
		Loan:     loan,
		State:    domain.DeriveState(loan, events, now, s.policy),
		Events:   events,
		Timeline: domain.BuildTimeline(events),
	}
}

// businessDate reads t as a calendar date in the ledger zone
func (s *LoanService) businessDate(t time.Time) time.Time {
	return util.StartOfDay(t.In(s.location))
}

// inDate keeps the wall clock date of a stored business date and rebinds it to midnight in the ledger zone
func (s *LoanService) inDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.location)
}

func (s *LoanService) inLedgerZone(loan *domain.Loan) {
	loan.InterestStartDate = s.inDate(loan.InterestStartDate)
	if loan.DueDate != nil {
		due := s.inDate(*loan.DueDate)
		loan.DueDate = &due
	}
}

func (s *LoanService) eventsInLedgerZone(events []*domain.LoanEvent) {
	for _, e := range events {
		e.OccurredAt = e.OccurredAt.In(s.location)
	}
}

func (s *LoanService) loadLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	s.inLedgerZone(loan)
	return loan, nil
}

func (s *LoanService) loadEvents(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanEvent, error) {
	events, err := s.loanRepo.ListEvents(ctx, loanID)
	if err != nil {
		return nil, err
	}
	s.eventsInLedgerZone(events)
	return events, nil
}

// OriginateLoanInput contains input for creating a loan
type OriginateLoanInput struct {
	Direction         domain.LoanDirection
	CounterpartyName  string
	Principal         decimal.Decimal
	AccountID         string
	InterestType      domain.InterestType
	InterestRate      decimal.Decimal
	InterestPeriod    domain.InterestPeriod
	InterestStartDate time.Time
	DueDate           *time.Time
	Note              *string
}

// Originate creates an active loan together with its disbursement event
func (s *LoanService) Originate(ctx context.Context, input OriginateLoanInput) (*LoanDetail, error) {
	now := s.Now()

	loan := &domain.Loan{
		ID:               uuid.New(),
		Direction:        input.Direction,
		CounterpartyName: strings.TrimSpace(input.CounterpartyName),
		Principal:        input.Principal,
		InterestType:     input.InterestType,
		InterestRate:     input.InterestRate,
		InterestPeriod:   input.InterestPeriod,
		Status:           domain.LoanStatusActive,
		AccountID:        strings.TrimSpace(input.AccountID),
		Note:             input.Note,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if !input.InterestStartDate.IsZero() {
		loan.InterestStartDate = s.businessDate(input.InterestStartDate)
	}
	if input.DueDate != nil {
		due := s.businessDate(*input.DueDate)
		loan.DueDate = &due
	}

	if err := loan.Validate(); err != nil {
		return nil, err
	}

	disburse := domain.NewLoanEvent(loan.ID, 1, domain.LoanEventDisburse, loan.Principal, loan.InterestStartDate, now)
	disburse.AccountID = &loan.AccountID

	created, err := s.loanRepo.Create(ctx, loan, []*domain.LoanEvent{disburse})
	if err != nil {
		return nil, err
	}

	s.publishEvent(created.ID, websocket.LoanCreated(created))
	return s.detail(created, []*domain.LoanEvent{disburse}, now), nil
}

// Get returns the loan with its derived state evaluated now
func (s *LoanService) Get(ctx context.Context, loanID uuid.UUID) (*LoanDetail, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	events, err := s.loadEvents(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return s.detail(loan, events, s.Now()), nil
}

// LoanListItem is one row of the loan list
type LoanListItem struct {
	Loan  *domain.Loan
	State domain.LoanState
}

// List returns loans matching the filter, active loans first, newest first within each group
func (s *LoanService) List(ctx context.Context, filter domain.LoanFilter) ([]LoanListItem, error) {
	loans, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return []LoanListItem{}, nil
	}

	ids := make([]uuid.UUID, 0, len(loans))
	for _, l := range loans {
		s.inLedgerZone(l)
		ids = append(ids, l.ID)
	}
	eventsByLoan, err := s.loanRepo.ListEventsByLoans(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	items := make([]LoanListItem, 0, len(loans))
	for _, l := range loans {
		if !filter.Matches(l) {
			continue
		}
		events := eventsByLoan[l.ID]
		s.eventsInLedgerZone(events)
		items = append(items, LoanListItem{
			Loan:  l,
			State: domain.DeriveState(l, events, now, s.policy),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Loan, items[j].Loan
		if a.IsClosed() != b.IsClosed() {
			return !a.IsClosed()
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return items, nil
}

// LoansSummary totals the outstanding positions of active loans
type LoansSummary struct {
	Borrowed        decimal.Decimal // owed to counterparties
	Lent            decimal.Decimal // owed by counterparties
	InterestAccrued decimal.Decimal
	ActiveCount     int
}

// Summary aggregates outstanding principal per direction and accrued interest over active loans
func (s *LoanService) Summary(ctx context.Context) (*LoansSummary, error) {
	items, err := s.List(ctx, domain.LoanFilter{})
	if err != nil {
		return nil, err
	}

	summary := &LoansSummary{
		Borrowed:        decimal.Zero,
		Lent:            decimal.Zero,
		InterestAccrued: decimal.Zero,
	}
	for _, item := range items {
		summary.ActiveCount++
		summary.InterestAccrued = summary.InterestAccrued.Add(item.State.InterestAccrued)
		if item.Loan.Direction == domain.LoanDirectionBorrow {
			summary.Borrowed = summary.Borrowed.Add(item.State.OutstandingPrincipal)
		} else {
			summary.Lent = summary.Lent.Add(item.State.OutstandingPrincipal)
		}
	}
	return summary, nil
}

// RecordPaymentInput contains input for recording a payment
type RecordPaymentInput struct {
	PrincipalAmount *decimal.Decimal
	InterestPeriods *int
	PaymentDate     time.Time // zero means today
	AccountID       string    // empty means the loan's account
	TransactionID   *string
	Note            *string
}

// RecordPayment appends a principal payment and/or an interest payment as one atomic step
func (s *LoanService) RecordPayment(ctx context.Context, loanID uuid.UUID, input RecordPaymentInput) (*LoanDetail, error) {
	unlock := s.locks.Lock(loanID)
	defer unlock()

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.IsClosed() {
		return nil, domain.ErrLoanClosed
	}

	if input.PrincipalAmount != nil && input.PrincipalAmount.IsNegative() {
		return nil, fmt.Errorf("%w: principal amount must not be negative", domain.ErrValidation)
	}
	if input.PrincipalAmount != nil {
		if err := domain.ValidateAmount(*input.PrincipalAmount); err != nil {
			return nil, err
		}
	}
	if input.InterestPeriods != nil && *input.InterestPeriods < 0 {
		return nil, fmt.Errorf("%w: interest periods must not be negative", domain.ErrValidation)
	}
	hasPrincipal := input.PrincipalAmount != nil && input.PrincipalAmount.IsPositive()
	hasInterest := input.InterestPeriods != nil && *input.InterestPeriods > 0
	if !hasPrincipal && !hasInterest {
		return nil, domain.ErrInvalidPayment
	}
	if input.Note != nil && len(*input.Note) > domain.MaxNoteLength {
		return nil, domain.ErrLoanNoteTooLong
	}

	now := s.Now()
	paymentDate := util.StartOfDay(now)
	if !input.PaymentDate.IsZero() {
		paymentDate = s.businessDate(input.PaymentDate)
	}
	if paymentDate.After(util.StartOfDay(now)) {
		return nil, domain.ErrFutureDate
	}

	accountID := strings.TrimSpace(input.AccountID)
	if accountID == "" {
		accountID = loan.AccountID
	}

	events, err := s.loadEvents(ctx, loanID)
	if err != nil {
		return nil, err
	}
	state := domain.DeriveState(loan, events, now, s.policy)

	if hasPrincipal && input.PrincipalAmount.GreaterThan(state.OutstandingPrincipal) {
		return nil, fmt.Errorf("%w: principal %s exceeds outstanding %s",
			domain.ErrExceedsOutstanding, input.PrincipalAmount.StringFixed(2), state.OutstandingPrincipal.StringFixed(2))
	}
	if hasInterest && *input.InterestPeriods > state.PeriodsUnpaid {
		return nil, fmt.Errorf("%w: %d interest periods requested, %d unpaid",
			domain.ErrExceedsOutstanding, *input.InterestPeriods, state.PeriodsUnpaid)
	}

	seq := domain.LastSequence(events)
	var appended []*domain.LoanEvent
	if hasPrincipal {
		seq++
		e := domain.NewLoanEvent(loanID, seq, domain.LoanEventPrincipalPayment, *input.PrincipalAmount, paymentDate, now)
		e.AccountID = &accountID
		e.TransactionID = input.TransactionID
		e.Note = input.Note
		appended = append(appended, e)
	}
	if hasInterest {
		seq++
		periods := int32(*input.InterestPeriods)
		amount := domain.InterestAccrued(state.InterestPerPeriod, *input.InterestPeriods)
		e := domain.NewLoanEvent(loanID, seq, domain.LoanEventInterestPayment, amount, paymentDate, now)
		e.PeriodsCount = &periods
		e.AccountID = &accountID
		e.TransactionID = input.TransactionID
		e.Note = input.Note
		appended = append(appended, e)
	}

	loan.UpdatedAt = now
	if err := s.loanRepo.AppendEvents(ctx, loan, appended); err != nil {
		return nil, err
	}

	detail := s.detail(loan, append(events, appended...), now)
	s.publishEvent(loanID, websocket.LoanPaymentRecorded(map[string]interface{}{
		"loanId":               loanID,
		"events":               appended,
		"outstandingPrincipal": detail.State.OutstandingPrincipal.StringFixed(2),
		"interestAccrued":      detail.State.InterestAccrued.StringFixed(2),
	}))
	return detail, nil
}

// Close settles a fully repaid loan. Closed is terminal.
func (s *LoanService) Close(ctx context.Context, loanID uuid.UUID) (*LoanDetail, error) {
	unlock := s.locks.Lock(loanID)
	defer unlock()

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.IsClosed() {
		return nil, domain.ErrLoanClosed
	}

	events, err := s.loadEvents(ctx, loanID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	state := domain.DeriveState(loan, events, now, s.policy)
	if !state.OutstandingPrincipal.IsZero() || !state.InterestAccrued.IsZero() {
		return nil, fmt.Errorf("%w: principal %s, interest %s",
			domain.ErrOutstandingBalance, state.OutstandingPrincipal.StringFixed(2), state.InterestAccrued.StringFixed(2))
	}

	closeEvent := domain.NewLoanEvent(loanID, domain.LastSequence(events)+1, domain.LoanEventClose, decimal.Zero, now, now)
	closed := *loan
	closed.Status = domain.LoanStatusClosed
	closed.UpdatedAt = now
	if err := s.loanRepo.AppendEvents(ctx, &closed, []*domain.LoanEvent{closeEvent}); err != nil {
		return nil, err
	}

	s.publishEvent(loanID, websocket.LoanClosed(&closed))
	return s.detail(&closed, append(events, closeEvent), now), nil
}

// UpdateMetadataInput carries the editable fields. Nil leaves a field unchanged;
// the Clear flags remove optional fields.
type UpdateMetadataInput struct {
	CounterpartyName *string
	DueDate          *time.Time
	ClearDueDate     bool
	Note             *string
	ClearNote        bool
}

// UpdateMetadata edits the non-financial fields and records the change as an adjustment event
func (s *LoanService) UpdateMetadata(ctx context.Context, loanID uuid.UUID, input UpdateMetadataInput) (*LoanDetail, error) {
	unlock := s.locks.Lock(loanID)
	defer unlock()

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.IsClosed() {
		return nil, domain.ErrLoanClosed
	}

	updated := *loan
	var changed []string

	if input.CounterpartyName != nil {
		name := strings.TrimSpace(*input.CounterpartyName)
		if err := domain.ValidateCounterpartyName(name); err != nil {
			return nil, err
		}
		if name != loan.CounterpartyName {
			updated.CounterpartyName = name
			changed = append(changed, "counterpartyName")
		}
	}

	switch {
	case input.ClearDueDate:
		if loan.DueDate != nil {
			updated.DueDate = nil
			changed = append(changed, "dueDate")
		}
	case input.DueDate != nil:
		due := s.businessDate(*input.DueDate)
		if err := loan.ValidateDueDate(&due); err != nil {
			return nil, err
		}
		if loan.DueDate == nil || !loan.DueDate.Equal(due) {
			updated.DueDate = &due
			changed = append(changed, "dueDate")
		}
	}

	switch {
	case input.ClearNote:
		if loan.Note != nil {
			updated.Note = nil
			changed = append(changed, "note")
		}
	case input.Note != nil:
		if len(*input.Note) > domain.MaxNoteLength {
			return nil, domain.ErrLoanNoteTooLong
		}
		if loan.Note == nil || *loan.Note != *input.Note {
			note := *input.Note
			updated.Note = &note
			changed = append(changed, "note")
		}
	}

	events, err := s.loadEvents(ctx, loanID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	if len(changed) == 0 {
		return s.detail(loan, events, now), nil
	}

	note := "updated " + strings.Join(changed, ", ")
	adjustment := domain.NewLoanEvent(loanID, domain.LastSequence(events)+1, domain.LoanEventAdjustment, decimal.Zero, now, now)
	adjustment.Note = &note

	updated.UpdatedAt = now
	if err := s.loanRepo.AppendEvents(ctx, &updated, []*domain.LoanEvent{adjustment}); err != nil {
		return nil, err
	}

	s.publishEvent(loanID, websocket.LoanUpdated(&updated))
	return s.detail(&updated, append(events, adjustment), now), nil
}

// Delete removes a loan, its events and its attachments irreversibly.
// Active loans with an outstanding balance may be deleted; the balance is logged.
func (s *LoanService) Delete(ctx context.Context, loanID uuid.UUID) error {
	unlock := s.locks.Lock(loanID)
	defer unlock()

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return err
	}

	if !loan.IsClosed() {
		events, err := s.loadEvents(ctx, loanID)
		if err != nil {
			return err
		}
		state := domain.DeriveState(loan, events, s.Now(), s.policy)
		if !state.OutstandingPrincipal.IsZero() || !state.InterestAccrued.IsZero() {
			log.Warn().
				Str("loan_id", loanID.String()).
				Str("outstanding_principal", state.OutstandingPrincipal.StringFixed(2)).
				Str("interest_accrued", state.InterestAccrued.StringFixed(2)).
				Msg("Deleting active loan with outstanding balance")
		}
	}

	var attachments []*domain.Attachment
	if s.purger != nil {
		if attachments, err = s.purger.LoanAttachments(ctx, loanID); err != nil {
			return fmt.Errorf("failed to list attachments: %w", err)
		}
	}

	if err := s.loanRepo.Delete(ctx, loanID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrLoanNotFound
		}
		return err
	}

	// the loan is gone; leftover objects are orphans and only worth a warning
	if len(attachments) > 0 {
		if err := s.purger.PurgeAttachments(ctx, loanID, attachments); err != nil {
			log.Warn().
				Err(err).
				Str("loan_id", loanID.String()).
				Msg("Failed to purge attachments of deleted loan")
		}
	}

	s.publishEvent(loanID, websocket.LoanDeleted(map[string]interface{}{"id": loanID}))
	return nil
}
