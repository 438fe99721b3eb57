package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/dafibh/fortuna/loan-ledger/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// immutableLoanFields are the loan terms fixed at origination
var immutableLoanFields = map[string]bool{
	"principal":         true,
	"interestRate":      true,
	"interestType":      true,
	"interestPeriod":    true,
	"interestStartDate": true,
	"direction":         true,
	"accountId":         true,
	"status":            true,
}

// fieldErrors names the request field behind each validation error
var fieldErrors = []struct {
	err   error
	field string
}{
	{domain.ErrLoanDirectionInvalid, "direction"},
	{domain.ErrCounterpartyNameEmpty, "counterpartyName"},
	{domain.ErrCounterpartyNameTooLong, "counterpartyName"},
	{domain.ErrLoanPrincipalInvalid, "principal"},
	{domain.ErrAmountPrecision, "principal"},
	{domain.ErrLoanAccountRequired, "accountId"},
	{domain.ErrInterestTypeInvalid, "interestType"},
	{domain.ErrInterestRateInvalid, "interestRate"},
	{domain.ErrInterestRatePrecision, "interestRate"},
	{domain.ErrInterestPeriodInvalid, "interestPeriod"},
	{domain.ErrInterestStartDateMissing, "interestStartDate"},
	{domain.ErrDueDateBeforeStart, "dueDate"},
	{domain.ErrLoanNoteTooLong, "note"},
}

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService      *service.LoanService
	statementService *service.StatementService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService, statementService *service.StatementService) *LoanHandler {
	return &LoanHandler{loanService: loanService, statementService: statementService}
}

// CreateLoanRequest represents the create loan request body
type CreateLoanRequest struct {
	Direction         string  `json:"direction"`
	CounterpartyName  string  `json:"counterpartyName"`
	Principal         string  `json:"principal"`
	AccountID         string  `json:"accountId"`
	InterestType      string  `json:"interestType"`
	InterestRate      string  `json:"interestRate"`
	InterestPeriod    string  `json:"interestPeriod"`
	InterestStartDate string  `json:"interestStartDate"`
	DueDate           *string `json:"dueDate,omitempty"`
	Note              *string `json:"note,omitempty"`
}

// RecordPaymentRequest represents the record payment request body.
// At least one of principalAmount and interestPeriods must be positive.
type RecordPaymentRequest struct {
	PrincipalAmount *string `json:"principalAmount,omitempty"`
	InterestPeriods *int    `json:"interestPeriods,omitempty"`
	PaymentDate     *string `json:"paymentDate,omitempty"` // defaults to today
	AccountID       *string `json:"accountId,omitempty"`   // defaults to the loan's account
	TransactionID   *string `json:"transactionId,omitempty"`
	Note            *string `json:"note,omitempty"`
}

// UpdateLoanRequest documents the PATCH body. Sending null for dueDate or note clears it.
type UpdateLoanRequest struct {
	CounterpartyName *string `json:"counterpartyName,omitempty"`
	DueDate          *string `json:"dueDate,omitempty"`
	Note             *string `json:"note,omitempty"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID                string  `json:"id"`
	Direction         string  `json:"direction"`
	CounterpartyName  string  `json:"counterpartyName"`
	Principal         string  `json:"principal"`
	InterestType      string  `json:"interestType"`
	InterestRate      string  `json:"interestRate"`
	InterestPeriod    string  `json:"interestPeriod"`
	InterestStartDate string  `json:"interestStartDate"`
	DueDate           *string `json:"dueDate,omitempty"`
	Status            string  `json:"status"`
	AccountID         string  `json:"accountId"`
	Note              *string `json:"note,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// LoanStateResponse is the derived interest and balance view
type LoanStateResponse struct {
	EvaluatedAt          string  `json:"evaluatedAt"`
	OutstandingPrincipal string  `json:"outstandingPrincipal"`
	TotalPrincipalPaid   string  `json:"totalPrincipalPaid"`
	PeriodsStarted       int     `json:"periodsStarted"`
	PeriodsPaid          int     `json:"periodsPaid"`
	PeriodsUnpaid        int     `json:"periodsUnpaid"`
	InterestPerPeriod    string  `json:"interestPerPeriod"`
	InterestAccrued      string  `json:"interestAccrued"`
	TotalInterestPaid    string  `json:"totalInterestPaid"`
	NextPeriodStartsAt   *string `json:"nextPeriodStartsAt,omitempty"`
	DaysUntilDue         *int    `json:"daysUntilDue,omitempty"`
	IsOverdue            bool    `json:"isOverdue"`
	IsDueSoon            bool    `json:"isDueSoon"`
	CanClose             bool    `json:"canClose"`
}

// TimelineEntryResponse is one ledger event for display
type TimelineEntryResponse struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Label         string  `json:"label"`
	Amount        string  `json:"amount"`
	DisplayAmount string  `json:"displayAmount"`
	PeriodsCount  *int32  `json:"periodsCount,omitempty"`
	Note          *string `json:"note,omitempty"`
	AccountID     *string `json:"accountId,omitempty"`
	TransactionID *string `json:"transactionId,omitempty"`
	OccurredAt    string  `json:"occurredAt"`
	CreatedAt     string  `json:"createdAt"`
}

// LoanDetailResponse is a loan with its derived state and timeline
type LoanDetailResponse struct {
	Loan     LoanResponse            `json:"loan"`
	State    LoanStateResponse       `json:"state"`
	Timeline []TimelineEntryResponse `json:"timeline"`
}

// LoanListItemResponse is one row of the loan list
type LoanListItemResponse struct {
	LoanResponse
	OutstandingPrincipal string `json:"outstandingPrincipal"`
	InterestAccrued      string `json:"interestAccrued"`
	PeriodsUnpaid        int    `json:"periodsUnpaid"`
	IsOverdue            bool   `json:"isOverdue"`
	IsDueSoon            bool   `json:"isDueSoon"`
}

// LoanListResponse wraps the loan list
type LoanListResponse struct {
	Loans      []LoanListItemResponse `json:"loans"`
	TotalCount int                    `json:"totalCount"`
}

// LoansSummaryResponse totals the outstanding positions of active loans
type LoansSummaryResponse struct {
	Borrowed        string `json:"borrowed"`
	Lent            string `json:"lent"`
	InterestAccrued string `json:"interestAccrued"`
	ActiveCount     int    `json:"activeCount"`
}

// CreateLoan godoc
// @Summary Originate a loan
// @Description Create an active loan and its disbursement event
// @Tags loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateLoanRequest true "Loan terms"
// @Success 201 {object} LoanDetailResponse
// @Failure 400 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /loans [post]
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	principal, err := decimal.NewFromString(strings.TrimSpace(req.Principal))
	if err != nil {
		return NewValidationError(c, "Invalid principal", []ValidationError{
			{Field: "principal", Message: "Must be a valid decimal number"},
		})
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(req.InterestRate))
	if err != nil {
		return NewValidationError(c, "Invalid interest rate", []ValidationError{
			{Field: "interestRate", Message: "Must be a valid decimal number"},
		})
	}

	startDate, err := h.parseDate(req.InterestStartDate)
	if err != nil {
		return NewValidationError(c, "Invalid interest start date", []ValidationError{
			{Field: "interestStartDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		d, err := h.parseDate(*req.DueDate)
		if err != nil {
			return NewValidationError(c, "Invalid due date", []ValidationError{
				{Field: "dueDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		dueDate = &d
	}

	detail, err := h.loanService.Originate(c.Request().Context(), service.OriginateLoanInput{
		Direction:         domain.LoanDirection(req.Direction),
		CounterpartyName:  req.CounterpartyName,
		Principal:         principal,
		AccountID:         req.AccountID,
		InterestType:      domain.InterestType(req.InterestType),
		InterestRate:      rate,
		InterestPeriod:    domain.InterestPeriod(req.InterestPeriod),
		InterestStartDate: startDate,
		DueDate:           dueDate,
		Note:              req.Note,
	})
	if err != nil {
		return handleLoanError(c, err, "create loan")
	}

	log.Info().
		Str("loan_id", detail.Loan.ID.String()).
		Str("direction", string(detail.Loan.Direction)).
		Str("principal", detail.Loan.Principal.StringFixed(2)).
		Msg("Loan originated")

	return c.JSON(http.StatusCreated, toLoanDetailResponse(detail))
}

// GetLoans godoc
// @Summary List loans
// @Description Active loans first, newest first within each group
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param direction query string false "borrow, lend or all" default(all)
// @Param showClosed query bool false "Include closed loans" default(false)
// @Success 200 {object} LoanListResponse
// @Failure 400 {object} ProblemDetails
// @Router /loans [get]
func (h *LoanHandler) GetLoans(c echo.Context) error {
	var filter domain.LoanFilter

	switch dir := c.QueryParam("direction"); dir {
	case "", "all":
	case string(domain.LoanDirectionBorrow), string(domain.LoanDirectionLend):
		d := domain.LoanDirection(dir)
		filter.Direction = &d
	default:
		return NewValidationError(c, "Invalid direction filter", []ValidationError{
			{Field: "direction", Message: "Must be borrow, lend or all"},
		})
	}

	if raw := c.QueryParam("showClosed"); raw != "" {
		showClosed, err := strconv.ParseBool(raw)
		if err != nil {
			return NewValidationError(c, "Invalid showClosed filter", []ValidationError{
				{Field: "showClosed", Message: "Must be true or false"},
			})
		}
		filter.ShowClosed = showClosed
	}

	items, err := h.loanService.List(c.Request().Context(), filter)
	if err != nil {
		return handleLoanError(c, err, "list loans")
	}

	loans := make([]LoanListItemResponse, len(items))
	for i, item := range items {
		loans[i] = LoanListItemResponse{
			LoanResponse:         toLoanResponse(item.Loan),
			OutstandingPrincipal: item.State.OutstandingPrincipal.StringFixed(2),
			InterestAccrued:      item.State.InterestAccrued.StringFixed(2),
			PeriodsUnpaid:        item.State.PeriodsUnpaid,
			IsOverdue:            item.State.IsOverdue,
			IsDueSoon:            item.State.IsDueSoon,
		}
	}

	return c.JSON(http.StatusOK, LoanListResponse{Loans: loans, TotalCount: len(loans)})
}

// GetSummary godoc
// @Summary Loans summary
// @Description Outstanding principal per direction and accrued interest over active loans
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} LoansSummaryResponse
// @Router /loans/summary [get]
func (h *LoanHandler) GetSummary(c echo.Context) error {
	summary, err := h.loanService.Summary(c.Request().Context())
	if err != nil {
		return handleLoanError(c, err, "summarise loans")
	}

	return c.JSON(http.StatusOK, LoansSummaryResponse{
		Borrowed:        summary.Borrowed.StringFixed(2),
		Lent:            summary.Lent.StringFixed(2),
		InterestAccrued: summary.InterestAccrued.StringFixed(2),
		ActiveCount:     summary.ActiveCount,
	})
}

// GetLoan godoc
// @Summary Get loan
// @Description Loan with derived state evaluated now and its timeline, newest first
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} LoanDetailResponse
// @Failure 404 {object} ProblemDetails
// @Router /loans/{id} [get]
func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return err
	}

	detail, err := h.loanService.Get(c.Request().Context(), id)
	if err != nil {
		return handleLoanError(c, err, "get loan")
	}

	return c.JSON(http.StatusOK, toLoanDetailResponse(detail))
}

// UpdateLoan godoc
// @Summary Update loan metadata
// @Description Edit counterpartyName, dueDate and note. Loan terms are immutable.
// @Tags loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Param request body UpdateLoanRequest true "Fields to change"
// @Success 200 {object} LoanDetailResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /loans/{id} [patch]
func (h *LoanHandler) UpdateLoan(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var locked []ValidationError
	for key := range raw {
		if immutableLoanFields[key] {
			locked = append(locked, ValidationError{Field: key, Message: "Cannot be changed after creation"})
		}
	}
	if len(locked) > 0 {
		sort.Slice(locked, func(i, j int) bool { return locked[i].Field < locked[j].Field })
		return NewImmutableFieldError(c, domain.ErrImmutableField.Error(), locked)
	}

	var input service.UpdateMetadataInput

	if v, ok := raw["counterpartyName"]; ok {
		var name string
		if err := json.Unmarshal(v, &name); err != nil {
			return NewValidationError(c, "Invalid counterparty name", []ValidationError{
				{Field: "counterpartyName", Message: "Must be a string"},
			})
		}
		input.CounterpartyName = &name
	}

	if v, ok := raw["dueDate"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return NewValidationError(c, "Invalid due date", []ValidationError{
				{Field: "dueDate", Message: "Must be a YYYY-MM-DD string or null"},
			})
		}
		if s == nil || *s == "" {
			input.ClearDueDate = true
		} else {
			d, err := h.parseDate(*s)
			if err != nil {
				return NewValidationError(c, "Invalid due date", []ValidationError{
					{Field: "dueDate", Message: "Must be in YYYY-MM-DD format"},
				})
			}
			input.DueDate = &d
		}
	}

	if v, ok := raw["note"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return NewValidationError(c, "Invalid note", []ValidationError{
				{Field: "note", Message: "Must be a string or null"},
			})
		}
		if s == nil {
			input.ClearNote = true
		} else {
			input.Note = s
		}
	}

	detail, err := h.loanService.UpdateMetadata(c.Request().Context(), id, input)
	if err != nil {
		return handleLoanError(c, err, "update loan")
	}

	log.Info().Str("loan_id", id.String()).Msg("Loan metadata updated")

	return c.JSON(http.StatusOK, toLoanDetailResponse(detail))
}

// RecordPayment godoc
// @Summary Record a payment
// @Description Record a principal payment and/or payment of whole interest periods atomically
// @Tags loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Param request body RecordPaymentRequest true "Payment"
// @Success 201 {object} LoanDetailResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Router /loans/{id}/payments [post]
func (h *LoanHandler) RecordPayment(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return err
	}

	var req RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.RecordPaymentInput{
		InterestPeriods: req.InterestPeriods,
		TransactionID:   req.TransactionID,
		Note:            req.Note,
	}

	if req.PrincipalAmount != nil && strings.TrimSpace(*req.PrincipalAmount) != "" {
		amount, err := decimal.NewFromString(strings.TrimSpace(*req.PrincipalAmount))
		if err != nil {
			return NewValidationError(c, "Invalid principal amount", []ValidationError{
				{Field: "principalAmount", Message: "Must be a valid decimal number"},
			})
		}
		input.PrincipalAmount = &amount
	}

	if req.PaymentDate != nil && *req.PaymentDate != "" {
		d, err := h.parseDate(*req.PaymentDate)
		if err != nil {
			return NewValidationError(c, "Invalid payment date", []ValidationError{
				{Field: "paymentDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		input.PaymentDate = d
	}

	if req.AccountID != nil {
		input.AccountID = *req.AccountID
	}

	detail, err := h.loanService.RecordPayment(c.Request().Context(), id, input)
	if err != nil {
		return handleLoanError(c, err, "record payment")
	}

	logEvent := log.Info().Str("loan_id", id.String())
	if input.PrincipalAmount != nil {
		logEvent = logEvent.Str("principal", input.PrincipalAmount.StringFixed(2))
	}
	if input.InterestPeriods != nil {
		logEvent = logEvent.Int("interest_periods", *input.InterestPeriods)
	}
	logEvent.Msg("Loan payment recorded")

	return c.JSON(http.StatusCreated, toLoanDetailResponse(detail))
}

// CloseLoan godoc
// @Summary Close a loan
// @Description Settle a loan whose principal and accrued interest are fully paid
// @Tags loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} LoanDetailResponse
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /loans/{id}/close [post]
func (h *LoanHandler) CloseLoan(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return err
	}

	detail, err := h.loanService.Close(c.Request().Context(), id)
	if err != nil {
		return handleLoanError(c, err, "close loan")
	}

	log.Info().Str("loan_id", id.String()).Msg("Loan closed")

	return c.JSON(http.StatusOK, toLoanDetailResponse(detail))
}

// DeleteLoan godoc
// @Summary Delete a loan
// @Description Irreversibly remove a loan, its events and attachments
// @Tags loans
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /loans/{id} [delete]
func (h *LoanHandler) DeleteLoan(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return err
	}

	if err := h.loanService.Delete(c.Request().Context(), id); err != nil {
		return handleLoanError(c, err, "delete loan")
	}

	log.Info().Str("loan_id", id.String()).Msg("Loan deleted")

	return c.NoContent(http.StatusNoContent)
}

// ExportStatement godoc
// @Summary Export loan statement
// @Description Download the loan summary and ledger as an xlsx workbook
// @Tags loans
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {file} binary
// @Failure 404 {object} ProblemDetails
// @Router /loans/{id}/statement.xlsx [get]
func (h *LoanHandler) ExportStatement(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return err
	}

	data, filename, err := h.statementService.Export(c.Request().Context(), id)
	if err != nil {
		return handleLoanError(c, err, "export statement")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *LoanHandler) parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), h.loanService.Location())
}

// parseLoanID reads the :id path parameter; on failure the 400 response is already written
func parseLoanID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, NewValidationError(c, "Invalid loan ID", []ValidationError{
			{Field: "id", Message: "Must be a UUID"},
		})
	}
	return id, nil
}

// handleLoanError adds the offending field to validation problems before the generic mapping
func handleLoanError(c echo.Context, err error, action string) error {
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: fe.field, Message: strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")},
			})
		}
	}
	return HandleServiceError(c, err, action)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func toLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		ID:                l.ID.String(),
		Direction:         string(l.Direction),
		CounterpartyName:  l.CounterpartyName,
		Principal:         l.Principal.StringFixed(2),
		InterestType:      string(l.InterestType),
		InterestRate:      l.InterestRate.String(),
		InterestPeriod:    string(l.InterestPeriod),
		InterestStartDate: formatDate(l.InterestStartDate),
		DueDate:           formatDatePtr(l.DueDate),
		Status:            string(l.Status),
		AccountID:         l.AccountID,
		Note:              l.Note,
		CreatedAt:         l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         l.UpdatedAt.Format(time.RFC3339),
	}
}

func toLoanStateResponse(s domain.LoanState) LoanStateResponse {
	resp := LoanStateResponse{
		EvaluatedAt:          s.EvaluatedAt.Format(time.RFC3339),
		OutstandingPrincipal: s.OutstandingPrincipal.StringFixed(2),
		TotalPrincipalPaid:   s.TotalPrincipalPaid.StringFixed(2),
		PeriodsStarted:       s.PeriodsStarted,
		PeriodsPaid:          s.PeriodsPaid,
		PeriodsUnpaid:        s.PeriodsUnpaid,
		InterestPerPeriod:    s.InterestPerPeriod.StringFixed(2),
		InterestAccrued:      s.InterestAccrued.StringFixed(2),
		TotalInterestPaid:    s.TotalInterestPaid.StringFixed(2),
		DaysUntilDue:         s.DaysUntilDue,
		IsOverdue:            s.IsOverdue,
		IsDueSoon:            s.IsDueSoon,
		CanClose:             s.CanClose,
	}
	if s.NextPeriodStartsAt != nil {
		next := s.NextPeriodStartsAt.Format(time.RFC3339)
		resp.NextPeriodStartsAt = &next
	}
	return resp
}

func toTimelineResponse(entries []domain.TimelineEntry) []TimelineEntryResponse {
	result := make([]TimelineEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = TimelineEntryResponse{
			ID:            e.ID.String(),
			Type:          string(e.Type),
			Label:         e.Label,
			Amount:        e.Amount.StringFixed(2),
			DisplayAmount: e.DisplayAmount,
			PeriodsCount:  e.PeriodsCount,
			Note:          e.Note,
			AccountID:     e.AccountID,
			TransactionID: e.TransactionID,
			OccurredAt:    formatDate(e.OccurredAt),
			CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		}
	}
	return result
}

func toLoanDetailResponse(d *service.LoanDetail) LoanDetailResponse {
	return LoanDetailResponse{
		Loan:     toLoanResponse(d.Loan),
		State:    toLoanStateResponse(d.State),
		Timeline: toTimelineResponse(d.Timeline),
	}
}
