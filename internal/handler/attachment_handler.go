package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/dafibh/fortuna/loan-ledger/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AttachmentHandler handles loan attachment HTTP requests
type AttachmentHandler struct {
	attachmentService *service.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// AttachmentResponse represents an attachment in API responses
type AttachmentResponse struct {
	ID           string  `json:"id"`
	LoanID       string  `json:"loanId"`
	EventID      *string `json:"eventId,omitempty"`
	Filename     string  `json:"filename"`
	ContentType  string  `json:"contentType"`
	SizeBytes    int64   `json:"sizeBytes"`
	URL          string  `json:"url"`
	ThumbnailURL string  `json:"thumbnailUrl"`
	CreatedAt    string  `json:"createdAt"`
}

// AttachmentListResponse wraps a loan's attachments
type AttachmentListResponse struct {
	Attachments []AttachmentResponse `json:"attachments"`
}

// UploadAttachment godoc
// @Summary Upload attachment
// @Description Store a receipt or agreement image (JPEG or PNG, up to 5MB) against a loan
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Param file formData file true "Image file"
// @Param eventId formData string false "Ledger event to pin the image to"
// @Success 201 {object} AttachmentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /loans/{id}/attachments [post]
func (h *AttachmentHandler) UploadAttachment(c echo.Context) error {
	loanID, err := parseLoanID(c)
	if err != nil {
		return err
	}

	if h.attachmentService == nil || !h.attachmentService.IsEnabled() {
		return HandleServiceError(c, service.ErrAttachmentStorageNotConfigured, "upload attachment")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}
	if file.Size > service.MaxAttachmentSize {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "File too large. Maximum size is 5MB"},
		})
	}

	var eventID *uuid.UUID
	if raw := c.FormValue("eventId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return NewValidationError(c, "Invalid event ID", []ValidationError{
				{Field: "eventId", Message: "Must be a UUID"},
			})
		}
		eventID = &id
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	view, err := h.attachmentService.Upload(c.Request().Context(), service.UploadAttachmentInput{
		LoanID:   loanID,
		EventID:  eventID,
		Filename: file.Filename,
		Data:     data,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageTooLarge),
			errors.Is(err, service.ErrInvalidFormat),
			errors.Is(err, service.ErrImageTooSmall),
			errors.Is(err, service.ErrInvalidImageData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: err.Error()},
			})
		case errors.Is(err, domain.ErrAttachmentEventInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "eventId", Message: "Event does not belong to this loan"},
			})
		}
		return HandleServiceError(c, err, "upload attachment")
	}

	log.Info().
		Str("loan_id", loanID.String()).
		Str("attachment_id", view.ID.String()).
		Int64("size_bytes", view.SizeBytes).
		Msg("Attachment uploaded")

	return c.JSON(http.StatusCreated, toAttachmentResponse(view))
}

// GetAttachments godoc
// @Summary List attachments
// @Description Attachments of a loan, newest first, with short-lived download URLs
// @Tags attachments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} AttachmentListResponse
// @Failure 404 {object} ProblemDetails
// @Router /loans/{id}/attachments [get]
func (h *AttachmentHandler) GetAttachments(c echo.Context) error {
	loanID, err := parseLoanID(c)
	if err != nil {
		return err
	}

	views, err := h.attachmentService.List(c.Request().Context(), loanID)
	if err != nil {
		return HandleServiceError(c, err, "list attachments")
	}

	result := make([]AttachmentResponse, len(views))
	for i, v := range views {
		result[i] = toAttachmentResponse(v)
	}

	return c.JSON(http.StatusOK, AttachmentListResponse{Attachments: result})
}

// DeleteAttachment godoc
// @Summary Delete attachment
// @Tags attachments
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Param attachmentId path string true "Attachment ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /loans/{id}/attachments/{attachmentId} [delete]
func (h *AttachmentHandler) DeleteAttachment(c echo.Context) error {
	loanID, err := parseLoanID(c)
	if err != nil {
		return err
	}

	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		return NewValidationError(c, "Invalid attachment ID", []ValidationError{
			{Field: "attachmentId", Message: "Must be a UUID"},
		})
	}

	if err := h.attachmentService.Delete(c.Request().Context(), loanID, attachmentID); err != nil {
		return HandleServiceError(c, err, "delete attachment")
	}

	log.Info().
		Str("loan_id", loanID.String()).
		Str("attachment_id", attachmentID.String()).
		Msg("Attachment deleted")

	return c.NoContent(http.StatusNoContent)
}

func toAttachmentResponse(v *service.AttachmentView) AttachmentResponse {
	resp := AttachmentResponse{
		ID:           v.ID.String(),
		LoanID:       v.LoanID.String(),
		Filename:     v.Filename,
		ContentType:  v.ContentType,
		SizeBytes:    v.SizeBytes,
		URL:          v.URL,
		ThumbnailURL: v.ThumbnailURL,
		CreatedAt:    v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if v.EventID != nil {
		s := v.EventID.String()
		resp.EventID = &s
	}
	return resp
}
