package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const attachmentColumns = `id, loan_id, event_id, filename, content_type, object_path, thumbnail_path, size_bytes, created_at`

// AttachmentRepository implements domain.AttachmentRepository using PostgreSQL
type AttachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(pool *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{pool: pool}
}

var _ domain.AttachmentRepository = (*AttachmentRepository)(nil)

// Create inserts attachment metadata
func (r *AttachmentRepository) Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO loan_attachments (`+attachmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+attachmentColumns,
		uuidToPg(a.ID),
		uuidToPg(a.LoanID),
		uuidPtrToPg(a.EventID),
		a.Filename,
		a.ContentType,
		a.ObjectPath,
		a.ThumbnailPath,
		a.SizeBytes,
		timeToPgTimestamptz(a.CreatedAt),
	)
	return scanAttachment(row)
}

// GetByID retrieves an attachment of a loan
func (r *AttachmentRepository) GetByID(ctx context.Context, loanID, id uuid.UUID) (*domain.Attachment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+attachmentColumns+` FROM loan_attachments WHERE id = $1 AND loan_id = $2`,
		uuidToPg(id), uuidToPg(loanID))
	a, err := scanAttachment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAttachmentNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListByLoan returns a loan's attachments, oldest first
func (r *AttachmentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Attachment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attachmentColumns+` FROM loan_attachments WHERE loan_id = $1 ORDER BY created_at, id`,
		uuidToPg(loanID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// Delete removes an attachment of a loan
func (r *AttachmentRepository) Delete(ctx context.Context, loanID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loan_attachments WHERE id = $1 AND loan_id = $2`,
		uuidToPg(id), uuidToPg(loanID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAttachmentNotFound
	}
	return nil
}

func scanAttachment(row pgx.Row) (*domain.Attachment, error) {
	var (
		id, loanID, eventID pgtype.UUID
		createdAt           pgtype.Timestamptz
		a                   domain.Attachment
	)
	err := row.Scan(&id, &loanID, &eventID, &a.Filename, &a.ContentType, &a.ObjectPath,
		&a.ThumbnailPath, &a.SizeBytes, &createdAt)
	if err != nil {
		return nil, err
	}
	a.ID = uuid.UUID(id.Bytes)
	a.LoanID = uuid.UUID(loanID.Bytes)
	a.EventID = pgUUIDToPtr(eventID)
	a.CreatedAt = createdAt.Time
	return &a, nil
}
