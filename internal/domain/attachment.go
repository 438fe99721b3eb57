package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAttachmentNotFound     = fmt.Errorf("%w: attachment not found", ErrNotFound)
	ErrAttachmentEventInvalid = fmt.Errorf("%w: event does not belong to this loan", ErrValidation)
)

// Attachment is a receipt or agreement image stored against a loan, optionally
// pinned to one of its ledger events
type Attachment struct {
	ID            uuid.UUID  `json:"id"`
	LoanID        uuid.UUID  `json:"loanId"`
	EventID       *uuid.UUID `json:"eventId,omitempty"`
	Filename      string     `json:"filename"`
	ContentType   string     `json:"contentType"`
	ObjectPath    string     `json:"objectPath"`
	ThumbnailPath string     `json:"thumbnailPath"`
	SizeBytes     int64      `json:"sizeBytes"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// AttachmentRepository persists attachment metadata; the bytes live in object storage
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *Attachment) (*Attachment, error)
	GetByID(ctx context.Context, loanID, id uuid.UUID) (*Attachment, error)
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*Attachment, error)
	Delete(ctx context.Context, loanID, id uuid.UUID) error
}
