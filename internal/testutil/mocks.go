package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/dafibh/fortuna/loan-ledger/internal/repository/storage"
	"github.com/dafibh/fortuna/loan-ledger/internal/websocket"
	"github.com/google/uuid"
)

// FixedClock returns a clock that always reads t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// MockLoanRepository is an in-memory implementation of domain.LoanRepository.
// It stores copies so callers cannot mutate state without going through it.
type MockLoanRepository struct {
	mu     sync.Mutex
	Loans  map[uuid.UUID]*domain.Loan
	Events map[uuid.UUID][]*domain.LoanEvent

	CreateFn       func(loan *domain.Loan, events []*domain.LoanEvent) (*domain.Loan, error)
	GetByIDFn      func(id uuid.UUID) (*domain.Loan, error)
	ListFn         func(filter domain.LoanFilter) ([]*domain.Loan, error)
	DeleteFn       func(id uuid.UUID) error
	ListEventsFn   func(loanID uuid.UUID) ([]*domain.LoanEvent, error)
	AppendEventsFn func(loan *domain.Loan, events []*domain.LoanEvent) error
}

// NewMockLoanRepository creates a new MockLoanRepository
func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		Loans:  make(map[uuid.UUID]*domain.Loan),
		Events: make(map[uuid.UUID][]*domain.LoanEvent),
	}
}

func copyLoan(l *domain.Loan) *domain.Loan {
	c := *l
	return &c
}

func copyEvents(events []*domain.LoanEvent) []*domain.LoanEvent {
	out := make([]*domain.LoanEvent, 0, len(events))
	for _, e := range events {
		c := *e
		out = append(out, &c)
	}
	return out
}

// AddLoan seeds a loan and its events directly
func (m *MockLoanRepository) AddLoan(loan *domain.Loan, events ...*domain.LoanEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loans[loan.ID] = copyLoan(loan)
	m.Events[loan.ID] = copyEvents(events)
}

// EventCount returns the number of stored events of a loan
func (m *MockLoanRepository) EventCount(loanID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events[loanID])
}

// Create stores a loan with its initial events
func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan, events []*domain.LoanEvent) (*domain.Loan, error) {
	if m.CreateFn != nil {
		return m.CreateFn(loan, events)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	m.Loans[loan.ID] = copyLoan(loan)
	m.Events[loan.ID] = copyEvents(events)
	return copyLoan(loan), nil
}

// GetByID retrieves a loan by ID
func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.Loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	return copyLoan(loan), nil
}

// List returns loans passing the filter, oldest first
func (m *MockLoanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	loans := make([]*domain.Loan, 0, len(m.Loans))
	for _, l := range m.Loans {
		if filter.Matches(l) {
			loans = append(loans, copyLoan(l))
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].CreatedAt.Before(loans[j].CreatedAt) })
	return loans, nil
}

// Save overwrites the stored loan
func (m *MockLoanRepository) Save(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Loans[loan.ID]; !ok {
		return nil, domain.ErrLoanNotFound
	}
	m.Loans[loan.ID] = copyLoan(loan)
	return copyLoan(loan), nil
}

// Delete removes a loan and its events
func (m *MockLoanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Loans[id]; !ok {
		return domain.ErrLoanNotFound
	}
	delete(m.Loans, id)
	delete(m.Events, id)
	return nil
}

// ListEvents returns a loan's events in sequence order
func (m *MockLoanRepository) ListEvents(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanEvent, error) {
	if m.ListEventsFn != nil {
		return m.ListEventsFn(loanID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyEvents(m.Events[loanID]), nil
}

// AppendEvents appends events and saves the loan, enforcing sequence continuity
func (m *MockLoanRepository) AppendEvents(ctx context.Context, loan *domain.Loan, events []*domain.LoanEvent) error {
	if m.AppendEventsFn != nil {
		return m.AppendEventsFn(loan, events)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Loans[loan.ID]; !ok {
		return domain.ErrLoanNotFound
	}
	next := domain.LastSequence(m.Events[loan.ID]) + 1
	for _, e := range events {
		if e.Sequence != next {
			return domain.ErrConcurrentModification
		}
		next++
	}
	m.Events[loan.ID] = append(m.Events[loan.ID], copyEvents(events)...)
	m.Loans[loan.ID] = copyLoan(loan)
	return nil
}

// ListEventsByLoans returns event logs keyed by loan ID
func (m *MockLoanRepository) ListEventsByLoans(ctx context.Context, loanIDs []uuid.UUID) (map[uuid.UUID][]*domain.LoanEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[uuid.UUID][]*domain.LoanEvent, len(loanIDs))
	for _, id := range loanIDs {
		result[id] = copyEvents(m.Events[id])
	}
	return result, nil
}

// MockAttachmentRepository is an in-memory implementation of domain.AttachmentRepository
type MockAttachmentRepository struct {
	mu          sync.Mutex
	Attachments map[uuid.UUID]*domain.Attachment
	CreateFn    func(attachment *domain.Attachment) (*domain.Attachment, error)
}

// NewMockAttachmentRepository creates a new MockAttachmentRepository
func NewMockAttachmentRepository() *MockAttachmentRepository {
	return &MockAttachmentRepository{Attachments: make(map[uuid.UUID]*domain.Attachment)}
}

// Create stores an attachment
func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) (*domain.Attachment, error) {
	if m.CreateFn != nil {
		return m.CreateFn(attachment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if attachment.ID == uuid.Nil {
		attachment.ID = uuid.New()
	}
	c := *attachment
	m.Attachments[attachment.ID] = &c
	return attachment, nil
}

// GetByID retrieves an attachment of a loan
func (m *MockAttachmentRepository) GetByID(ctx context.Context, loanID, id uuid.UUID) (*domain.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Attachments[id]
	if !ok || a.LoanID != loanID {
		return nil, domain.ErrAttachmentNotFound
	}
	c := *a
	return &c, nil
}

// ListByLoan returns a loan's attachments, oldest first
func (m *MockAttachmentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*domain.Attachment{}
	for _, a := range m.Attachments {
		if a.LoanID == loanID {
			c := *a
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// Delete removes an attachment of a loan
func (m *MockAttachmentRepository) Delete(ctx context.Context, loanID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Attachments[id]
	if !ok || a.LoanID != loanID {
		return domain.ErrAttachmentNotFound
	}
	delete(m.Attachments, id)
	return nil
}

// MockObjectStorage keeps uploaded objects in memory
type MockObjectStorage struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	Meta     map[string]storage.Object
	PutFn    func(objectPath string) error
	DeleteFn func(objectPath string) error
}

// NewMockObjectStorage creates a new MockObjectStorage
func NewMockObjectStorage() *MockObjectStorage {
	return &MockObjectStorage{
		Objects: make(map[string][]byte),
		Meta:    make(map[string]storage.Object),
	}
}

// Put stores the object body and remembers its attributes
func (m *MockObjectStorage) Put(ctx context.Context, obj storage.Object) error {
	if m.PutFn != nil {
		if err := m.PutFn(obj.Path); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj.Body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[obj.Path] = buf.Bytes()
	obj.Body = nil
	m.Meta[obj.Path] = obj
	return nil
}

// Delete removes the objects, skipping any DeleteFn rejects
func (m *MockObjectStorage) Delete(ctx context.Context, paths ...string) error {
	var errs []error
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		if m.DeleteFn != nil {
			if err := m.DeleteFn(p); err != nil {
				errs = append(errs, fmt.Errorf("failed to delete %s: %w", p, err))
				continue
			}
		}
		delete(m.Objects, p)
		delete(m.Meta, p)
	}
	return errors.Join(errs...)
}

// DeletePrefix removes every object whose path starts with prefix
func (m *MockObjectStorage) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	m.mu.Lock()
	var keys []string
	for p := range m.Objects {
		if strings.HasPrefix(p, prefix) {
			keys = append(keys, p)
		}
	}
	m.mu.Unlock()
	if err := m.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// PresignGet returns a fake URL embedding the path
func (m *MockObjectStorage) PresignGet(ctx context.Context, path, filename string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://objects.test/%s?expires=%d", path, int(expiry.Seconds())), nil
}

// Count returns the number of stored objects
func (m *MockObjectStorage) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}

// PublishedEvent is one captured Publish call
type PublishedEvent struct {
	LoanID uuid.UUID
	Event  websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(loanID uuid.UUID, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{LoanID: loanID, Event: event})
}

// Types returns the published event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.Event.Type)
	}
	return types
}
