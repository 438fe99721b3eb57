package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/dafibh/fortuna/loan-ledger/internal/repository/storage"
	"github.com/dafibh/fortuna/loan-ledger/internal/websocket"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxAttachmentSize     = 5 * 1024 * 1024 // 5MB
	MinImageWidth         = 50
	MinImageHeight        = 50
	ThumbnailWidth        = 200
	JPEGQuality           = 85
	AttachmentURLLifetime = 15 * time.Minute
)

var (
	ErrImageTooLarge                  = fmt.Errorf("%w: file too large, maximum size is 5MB", domain.ErrValidation)
	ErrInvalidFormat                  = fmt.Errorf("%w: invalid format, supported: JPEG, PNG", domain.ErrValidation)
	ErrImageTooSmall                  = fmt.Errorf("%w: image too small, minimum 50x50 pixels", domain.ErrValidation)
	ErrInvalidImageData               = fmt.Errorf("%w: invalid image data", domain.ErrValidation)
	ErrAttachmentStorageNotConfigured = errors.New("attachment storage not configured")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// AttachmentView is an attachment with short-lived download URLs
type AttachmentView struct {
	*domain.Attachment
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// AttachmentService stores receipt images for loans
type AttachmentService struct {
	attachmentRepo domain.AttachmentRepository
	loanRepo       domain.LoanRepository
	storage        storage.ObjectStorage
	eventPublisher websocket.EventPublisher
	clock          Clock
}

// NewAttachmentService creates a new AttachmentService. A nil storage disables uploads.
func NewAttachmentService(attachmentRepo domain.AttachmentRepository, loanRepo domain.LoanRepository, objectStorage storage.ObjectStorage) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		loanRepo:       loanRepo,
		storage:        objectStorage,
		clock:          SystemClock,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *AttachmentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the clock used for creation timestamps
func (s *AttachmentService) SetClock(clock Clock) {
	s.clock = clock
}

// IsEnabled indicates whether uploads are supported (storage configured)
func (s *AttachmentService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

func (s *AttachmentService) publishEvent(loanID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(loanID, event)
	}
}

// ValidateImage validates image format, size and dimensions
func ValidateImage(data []byte, filename string) error {
	_, _, err := validateAndDecode(data, filename)
	return err
}

func validateAndDecode(data []byte, filename string) (image.Image, string, error) {
	if len(data) > MaxAttachmentSize {
		return nil, "", ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := AllowedExtensions[ext]
	if !ok {
		return nil, "", ErrInvalidFormat
	}

	// Receipts are usually phone photos, so honour the EXIF orientation
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, "", ErrImageTooSmall
	}

	return img, contentType, nil
}

func attachmentObjectPath(loanID, attachmentID uuid.UUID, variant, ext string) string {
	return fmt.Sprintf("%s%s_%s%s", storage.LoanPrefix(loanID), attachmentID, variant, ext)
}

// UploadAttachmentInput contains input for storing an attachment
type UploadAttachmentInput struct {
	LoanID   uuid.UUID
	EventID  *uuid.UUID
	Filename string
	Data     []byte
}

// Upload validates the image, stores the original and a JPEG thumbnail, and records the attachment
func (s *AttachmentService) Upload(ctx context.Context, input UploadAttachmentInput) (*AttachmentView, error) {
	if !s.IsEnabled() {
		return nil, ErrAttachmentStorageNotConfigured
	}

	if _, err := s.loanRepo.GetByID(ctx, input.LoanID); err != nil {
		return nil, err
	}
	if input.EventID != nil {
		if err := s.checkEvent(ctx, input.LoanID, *input.EventID); err != nil {
			return nil, err
		}
	}

	img, contentType, err := validateAndDecode(input.Data, input.Filename)
	if err != nil {
		return nil, err
	}

	attachmentID := uuid.New()
	ext := strings.ToLower(filepath.Ext(input.Filename))

	thumb := img
	if img.Bounds().Dx() > ThumbnailWidth {
		thumb = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}
	var thumbBuf bytes.Buffer
	if err := jpeg.Encode(&thumbBuf, thumb, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	originalPath := attachmentObjectPath(input.LoanID, attachmentID, "original", ext)
	thumbPath := attachmentObjectPath(input.LoanID, attachmentID, "thumb", ".jpg")

	filename := filepath.Base(input.Filename)
	original := storage.Object{
		Path:        originalPath,
		Body:        bytes.NewReader(input.Data),
		Size:        int64(len(input.Data)),
		ContentType: contentType,
		LoanID:      input.LoanID,
		Filename:    filename,
	}
	if err := s.storage.Put(ctx, original); err != nil {
		return nil, fmt.Errorf("failed to upload original: %w", err)
	}
	thumbnail := storage.Object{
		Path:        thumbPath,
		Body:        bytes.NewReader(thumbBuf.Bytes()),
		Size:        int64(thumbBuf.Len()),
		ContentType: "image/jpeg",
		LoanID:      input.LoanID,
	}
	if err := s.storage.Put(ctx, thumbnail); err != nil {
		s.cleanupObjects(ctx, originalPath)
		return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
	}

	attachment := &domain.Attachment{
		ID:            attachmentID,
		LoanID:        input.LoanID,
		EventID:       input.EventID,
		Filename:      filename,
		ContentType:   contentType,
		ObjectPath:    originalPath,
		ThumbnailPath: thumbPath,
		SizeBytes:     int64(len(input.Data)),
		CreatedAt:     s.clock().UTC(),
	}

	created, err := s.attachmentRepo.Create(ctx, attachment)
	if err != nil {
		s.cleanupObjects(ctx, originalPath, thumbPath)
		return nil, err
	}

	view, err := s.view(ctx, created)
	if err != nil {
		return nil, err
	}
	s.publishEvent(input.LoanID, websocket.AttachmentCreated(created))
	return view, nil
}

func (s *AttachmentService) checkEvent(ctx context.Context, loanID, eventID uuid.UUID) error {
	events, err := s.loanRepo.ListEvents(ctx, loanID)
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.ID == eventID {
			return nil
		}
	}
	return domain.ErrAttachmentEventInvalid
}

// cleanupObjects removes objects uploaded during a failed operation
func (s *AttachmentService) cleanupObjects(ctx context.Context, paths ...string) {
	if err := s.storage.Delete(ctx, paths...); err != nil {
		log.Warn().Err(err).Strs("object_paths", paths).Msg("Failed to clean up attachment objects")
	}
}

func (s *AttachmentService) view(ctx context.Context, a *domain.Attachment) (*AttachmentView, error) {
	view := &AttachmentView{Attachment: a}
	if !s.IsEnabled() {
		return view, nil
	}
	url, err := s.storage.PresignGet(ctx, a.ObjectPath, a.Filename, AttachmentURLLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to presign attachment: %w", err)
	}
	thumbURL, err := s.storage.PresignGet(ctx, a.ThumbnailPath, "", AttachmentURLLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to presign thumbnail: %w", err)
	}
	view.URL = url
	view.ThumbnailURL = thumbURL
	return view, nil
}

// List returns the loan's attachments, newest first, with presigned URLs
func (s *AttachmentService) List(ctx context.Context, loanID uuid.UUID) ([]*AttachmentView, error) {
	if _, err := s.loanRepo.GetByID(ctx, loanID); err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(attachments, func(i, j int) bool {
		return attachments[i].CreatedAt.After(attachments[j].CreatedAt)
	})

	views := make([]*AttachmentView, 0, len(attachments))
	for _, a := range attachments {
		v, err := s.view(ctx, a)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Delete removes one attachment and its stored objects
func (s *AttachmentService) Delete(ctx context.Context, loanID, attachmentID uuid.UUID) error {
	attachment, err := s.attachmentRepo.GetByID(ctx, loanID, attachmentID)
	if err != nil {
		return err
	}
	if err := s.attachmentRepo.Delete(ctx, loanID, attachmentID); err != nil {
		return err
	}
	if s.IsEnabled() {
		s.cleanupObjects(ctx, attachment.ObjectPath, attachment.ThumbnailPath)
	}

	s.publishEvent(loanID, websocket.AttachmentDeleted(map[string]interface{}{
		"id":     attachmentID,
		"loanId": loanID,
	}))
	return nil
}

// LoanAttachments lists every attachment of a loan, including ones the loan can no longer show
func (s *AttachmentService) LoanAttachments(ctx context.Context, loanID uuid.UUID) ([]*domain.Attachment, error) {
	return s.attachmentRepo.ListByLoan(ctx, loanID)
}

// PurgeAttachments removes the stored objects and rows of attachments whose loan has been deleted.
// Everything under the loan's prefix goes, including objects left behind by failed uploads.
func (s *AttachmentService) PurgeAttachments(ctx context.Context, loanID uuid.UUID, attachments []*domain.Attachment) error {
	var errs []error
	removed := 0
	if s.IsEnabled() {
		n, err := s.storage.DeletePrefix(ctx, storage.LoanPrefix(loanID))
		if err != nil {
			errs = append(errs, err)
		}
		removed = n
	}
	// rows normally go with the loan through ON DELETE CASCADE
	for _, a := range attachments {
		if err := s.attachmentRepo.Delete(ctx, loanID, a.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	log.Info().
		Str("loan_id", loanID.String()).
		Int("attachments", len(attachments)).
		Int("objects", removed).
		Msg("Purged loan attachments")
	return errors.Join(errs...)
}
