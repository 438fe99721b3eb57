package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const loanColumns = `id, direction, counterparty_name, principal, interest_type, interest_rate,
	interest_period, interest_start_date, due_date, status, account_id, note, created_at, updated_at`

const eventColumns = `id, loan_id, sequence, type, amount, periods_count, note, account_id,
	transaction_id, occurred_at, created_at`

// LoanRepository implements domain.LoanRepository using PostgreSQL
type LoanRepository struct {
	pool     *pgxpool.Pool
	location *time.Location
}

// NewLoanRepository creates a new LoanRepository. Business dates are read back
// as midnight in location; nil means UTC.
func NewLoanRepository(pool *pgxpool.Pool, location *time.Location) *LoanRepository {
	if location == nil {
		location = time.UTC
	}
	return &LoanRepository{pool: pool, location: location}
}

var _ domain.LoanRepository = (*LoanRepository)(nil)

// Create inserts the loan and its initial events in one transaction
func (r *LoanRepository) Create(ctx context.Context, loan *domain.Loan, events []*domain.LoanEvent) (*domain.Loan, error) {
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}

	principal, err := decimalToPgNumeric(loan.Principal)
	if err != nil {
		return nil, err
	}
	rate, err := decimalToPgNumeric(loan.InterestRate)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO loans (`+loanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+loanColumns,
		uuidToPg(loan.ID),
		string(loan.Direction),
		loan.CounterpartyName,
		principal,
		string(loan.InterestType),
		rate,
		string(loan.InterestPeriod),
		dateToPg(loan.InterestStartDate),
		datePtrToPg(loan.DueDate),
		string(loan.Status),
		loan.AccountID,
		stringPtrToPgText(loan.Note),
		timeToPgTimestamptz(loan.CreatedAt),
		timeToPgTimestamptz(loan.UpdatedAt),
	)
	created, err := scanLoan(row, r.location)
	if err != nil {
		return nil, fmt.Errorf("failed to insert loan: %w", err)
	}

	if err := insertEvents(ctx, tx, events); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a loan by its ID
func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, uuidToPg(id))
	loan, err := scanLoan(row, r.location)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// List returns the loans passing the filter, oldest first
func (r *LoanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error) {
	var where []string
	var args []interface{}
	if filter.Direction != nil {
		args = append(args, string(*filter.Direction))
		where = append(where, fmt.Sprintf("direction = $%d", len(args)))
	}
	if !filter.ShowClosed {
		args = append(args, string(domain.LoanStatusActive))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + loanColumns + ` FROM loans`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Loan{}
	for rows.Next() {
		loan, err := scanLoan(rows, r.location)
		if err != nil {
			return nil, err
		}
		result = append(result, loan)
	}
	return result, rows.Err()
}

// Save persists the mutable fields of a loan
func (r *LoanRepository) Save(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE loans
		SET counterparty_name = $2, due_date = $3, note = $4, status = $5, updated_at = $6
		WHERE id = $1
		RETURNING `+loanColumns,
		uuidToPg(loan.ID),
		loan.CounterpartyName,
		datePtrToPg(loan.DueDate),
		stringPtrToPgText(loan.Note),
		string(loan.Status),
		timeToPgTimestamptz(loan.UpdatedAt),
	)
	saved, err := scanLoan(row, r.location)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return saved, nil
}

// Delete removes a loan; events and attachment rows cascade
func (r *LoanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loans WHERE id = $1`, uuidToPg(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// ListEvents returns a loan's events in sequence order
func (r *LoanRepository) ListEvents(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanEvent, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM loan_events WHERE loan_id = $1 ORDER BY sequence`, uuidToPg(loanID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*domain.LoanEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListEventsByLoans returns the event logs of several loans keyed by loan ID
func (r *LoanRepository) ListEventsByLoans(ctx context.Context, loanIDs []uuid.UUID) (map[uuid.UUID][]*domain.LoanEvent, error) {
	result := make(map[uuid.UUID][]*domain.LoanEvent, len(loanIDs))
	if len(loanIDs) == 0 {
		return result, nil
	}

	ids := make([]string, len(loanIDs))
	for i, id := range loanIDs {
		ids[i] = id.String()
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM loan_events WHERE loan_id = ANY($1::uuid[]) ORDER BY loan_id, sequence`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result[e.LoanID] = append(result[e.LoanID], e)
	}
	return result, rows.Err()
}

// AppendEvents locks the loan row, checks the sequence continues the stored log,
// inserts the events and saves the loan, all in one transaction
func (r *LoanRepository) AppendEvents(ctx context.Context, loan *domain.Loan, events []*domain.LoanEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var locked pgtype.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM loans WHERE id = $1 FOR UPDATE`, uuidToPg(loan.ID)).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrLoanNotFound
		}
		return err
	}

	var last int32
	err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(sequence), 0)::int FROM loan_events WHERE loan_id = $1`, uuidToPg(loan.ID)).Scan(&last)
	if err != nil {
		return err
	}
	if events[0].Sequence != last+1 {
		return domain.ErrConcurrentModification
	}

	if err := insertEvents(ctx, tx, events); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE loans
		SET counterparty_name = $2, due_date = $3, note = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		uuidToPg(loan.ID),
		loan.CounterpartyName,
		datePtrToPg(loan.DueDate),
		stringPtrToPgText(loan.Note),
		string(loan.Status),
		timeToPgTimestamptz(loan.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}

	return tx.Commit(ctx)
}

// insertEvents sends all event inserts as one batch on the transaction
func insertEvents(ctx context.Context, tx pgx.Tx, events []*domain.LoanEvent) error {
	batch := &pgx.Batch{}
	for _, e := range events {
		amount, err := decimalToPgNumeric(e.Amount)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO loan_events (`+eventColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			uuidToPg(e.ID),
			uuidToPg(e.LoanID),
			e.Sequence,
			string(e.Type),
			amount,
			int32PtrToPg(e.PeriodsCount),
			stringPtrToPgText(e.Note),
			stringPtrToPgText(e.AccountID),
			stringPtrToPgText(e.TransactionID),
			timeToPgTimestamptz(e.OccurredAt),
			timeToPgTimestamptz(e.CreatedAt),
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range events {
		if _, err := results.Exec(); err != nil {
			results.Close()
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return domain.ErrConcurrentModification
			}
			return fmt.Errorf("failed to insert loan event: %w", err)
		}
	}
	return results.Close()
}

func scanLoan(row pgx.Row, loc *time.Location) (*domain.Loan, error) {
	var (
		id                                      pgtype.UUID
		direction, interestType, period, status string
		principal, rate                         pgtype.Numeric
		startDate, dueDate                      pgtype.Date
		createdAt, updatedAt                    pgtype.Timestamptz
		counterparty, accountID                 string
		note                                    pgtype.Text
	)
	err := row.Scan(&id, &direction, &counterparty, &principal, &interestType, &rate,
		&period, &startDate, &dueDate, &status, &accountID, &note, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	return &domain.Loan{
		ID:                uuid.UUID(id.Bytes),
		Direction:         domain.LoanDirection(direction),
		CounterpartyName:  counterparty,
		Principal:         pgNumericToDecimal(principal),
		InterestType:      domain.InterestType(interestType),
		InterestRate:      pgNumericToDecimal(rate),
		InterestPeriod:    domain.InterestPeriod(period),
		InterestStartDate: pgDateIn(startDate, loc),
		DueDate:           pgDatePtrIn(dueDate, loc),
		Status:            domain.LoanStatus(status),
		AccountID:         accountID,
		Note:              pgTextToStringPtr(note),
		CreatedAt:         createdAt.Time,
		UpdatedAt:         updatedAt.Time,
	}, nil
}

func scanEvent(row pgx.Row) (*domain.LoanEvent, error) {
	var (
		id, loanID                     pgtype.UUID
		sequence                       int32
		eventType                      string
		amount                         pgtype.Numeric
		periods                        pgtype.Int4
		note, accountID, transactionID pgtype.Text
		occurredAt, createdAt          pgtype.Timestamptz
	)
	err := row.Scan(&id, &loanID, &sequence, &eventType, &amount, &periods, &note, &accountID,
		&transactionID, &occurredAt, &createdAt)
	if err != nil {
		return nil, err
	}

	return &domain.LoanEvent{
		ID:            uuid.UUID(id.Bytes),
		LoanID:        uuid.UUID(loanID.Bytes),
		Sequence:      sequence,
		Type:          domain.LoanEventType(eventType),
		Amount:        pgNumericToDecimal(amount),
		PeriodsCount:  pgInt4ToPtr(periods),
		Note:          pgTextToStringPtr(note),
		AccountID:     pgTextToStringPtr(accountID),
		TransactionID: pgTextToStringPtr(transactionID),
		OccurredAt:    occurredAt.Time,
		CreatedAt:     createdAt.Time,
	}, nil
}
