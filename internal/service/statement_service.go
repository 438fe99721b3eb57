package service

import (
	"context"
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	StatementSummarySheet = "Summary"
	StatementLedgerSheet  = "Ledger"
	dateLayout            = "2006-01-02"
)

// StatementService renders a loan's ledger as an xlsx workbook
type StatementService struct {
	loanService *LoanService
}

// NewStatementService creates a new StatementService
func NewStatementService(loanService *LoanService) *StatementService {
	return &StatementService{loanService: loanService}
}

// Export builds the statement of one loan and returns the workbook bytes and a file name
func (s *StatementService) Export(ctx context.Context, loanID uuid.UUID) ([]byte, string, error) {
	detail, err := s.loanService.Get(ctx, loanID)
	if err != nil {
		return nil, "", err
	}
	data, err := StatementXLSX(detail)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render statement: %w", err)
	}
	return data, StatementFilename(detail.Loan, detail.State.EvaluatedAt.Format(dateLayout)), nil
}

// StatementFilename returns a download name such as "loan-john-doe-2026-03-10.xlsx"
func StatementFilename(loan *domain.Loan, date string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, loan.CounterpartyName)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = loan.ID.String()[:8]
	}
	return fmt.Sprintf("loan-%s-%s.xlsx", slug, date)
}

// StatementXLSX renders a summary sheet and a chronological ledger sheet with a running balance
func StatementXLSX(detail *LoanDetail) ([]byte, error) {
	xlsx := excelize.NewFile()
	defer xlsx.Close()

	_ = xlsx.SetAppProps(&excelize.AppProperties{
		Application: "loan-ledger",
		DocSecurity: 2,
	})

	first := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	if err := xlsx.SetSheetName(first, StatementSummarySheet); err != nil {
		return nil, err
	}
	if _, err := xlsx.NewSheet(StatementLedgerSheet); err != nil {
		return nil, err
	}

	_ = xlsx.SetColWidth(StatementSummarySheet, "A", "A", 28)
	_ = xlsx.SetColWidth(StatementSummarySheet, "B", "B", 30)
	writeSummarySheet(xlsx, StatementSummarySheet, detail)

	_ = xlsx.SetColWidth(StatementLedgerSheet, "A", "A", 6)
	_ = xlsx.SetColWidth(StatementLedgerSheet, "B", "B", 12)
	_ = xlsx.SetColWidth(StatementLedgerSheet, "C", "C", 20)
	_ = xlsx.SetColWidth(StatementLedgerSheet, "D", "F", 15)
	_ = xlsx.SetColWidth(StatementLedgerSheet, "G", "G", 40)
	writeLedgerSheet(xlsx, StatementLedgerSheet, detail)

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(xlsx *excelize.File, sheet string, detail *LoanDetail) {
	loan, state := detail.Loan, detail.State

	dueDate := ""
	if loan.DueDate != nil {
		dueDate = loan.DueDate.Format(dateLayout)
	}
	note := ""
	if loan.Note != nil {
		note = *loan.Note
	}

	text := [][2]string{
		{"Counterparty", loan.CounterpartyName},
		{"Direction", string(loan.Direction)},
		{"Status", string(loan.Status)},
		{"Account", loan.AccountID},
		{"Interest", fmt.Sprintf("%s %s per %s", loan.InterestRate.String(), loan.InterestType, strings.TrimSuffix(string(loan.InterestPeriod), "ly"))},
		{"Interest start date", loan.InterestStartDate.Format(dateLayout)},
		{"Due date", dueDate},
		{"Note", note},
		{"Statement date", state.EvaluatedAt.Format(dateLayout)},
	}
	money := [][2]interface{}{
		{"Principal", loan.Principal},
		{"Principal repaid", state.TotalPrincipalPaid},
		{"Outstanding principal", state.OutstandingPrincipal},
		{"Interest per period", state.InterestPerPeriod},
		{"Interest paid", state.TotalInterestPaid},
		{"Interest accrued", state.InterestAccrued},
	}

	row := 1
	_ = xlsx.SetCellValue(sheet, cell('A', row), "Loan statement")
	style, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), thickBorder("bottom")))
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('B', row), style)
	row += 2

	labelStyle, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold()))
	for _, kv := range text {
		_ = xlsx.SetCellValue(sheet, cell('A', row), kv[0])
		_ = xlsx.SetCellValue(sheet, cell('B', row), kv[1])
		_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A', row), labelStyle)
		row++
	}
	row++

	moneyStyle, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), moneyFormat()))
	for _, kv := range money {
		_ = xlsx.SetCellValue(sheet, cell('A', row), kv[0])
		_ = xlsx.SetCellValue(sheet, cell('B', row), kv[1].(decimal.Decimal).InexactFloat64())
		_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A', row), labelStyle)
		_ = xlsx.SetCellStyle(sheet, cell('B', row), cell('B', row), moneyStyle)
		row++
	}
	row++

	periods := [][2]interface{}{
		{"Periods started", state.PeriodsStarted},
		{"Periods paid", state.PeriodsPaid},
		{"Periods unpaid", state.PeriodsUnpaid},
	}
	for _, kv := range periods {
		_ = xlsx.SetCellValue(sheet, cell('A', row), kv[0])
		_ = xlsx.SetCellValue(sheet, cell('B', row), kv[1])
		_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A', row), labelStyle)
		row++
	}
}

func writeLedgerSheet(xlsx *excelize.File, sheet string, detail *LoanDetail) {
	row := 1
	headers := []string{"#", "Date", "Type", "Amount", "Periods", "Outstanding", "Note"}
	for i, h := range headers {
		_ = xlsx.SetCellValue(sheet, cell(rune('A'+i), row), h)
	}
	style, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), thinBorder("bottom")))
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('G', row), style)
	style, _ = xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), thinBorder("bottom"), textAlignment("right")))
	_ = xlsx.SetCellStyle(sheet, cell('D', row), cell('F', row), style)
	_ = xlsx.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	row++

	moneyStyle, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), moneyFormat()))
	outstanding := decimal.Zero
	for _, e := range detail.Events {
		switch e.Type {
		case domain.LoanEventDisburse:
			outstanding = outstanding.Add(e.Amount)
		case domain.LoanEventPrincipalPayment:
			outstanding = outstanding.Sub(e.Amount)
		}

		_ = xlsx.SetCellInt(sheet, cell('A', row), int(e.Sequence))
		_ = xlsx.SetCellValue(sheet, cell('B', row), e.OccurredAt.Format(dateLayout))
		_ = xlsx.SetCellValue(sheet, cell('C', row), e.Type.Label())
		_ = xlsx.SetCellValue(sheet, cell('D', row), e.Amount.InexactFloat64())
		if n := e.Periods(); n > 0 {
			_ = xlsx.SetCellInt(sheet, cell('E', row), n)
		}
		_ = xlsx.SetCellValue(sheet, cell('F', row), outstanding.InexactFloat64())
		if e.Note != nil {
			_ = xlsx.SetCellValue(sheet, cell('G', row), *e.Note)
		}
		_ = xlsx.SetCellStyle(sheet, cell('D', row), cell('D', row), moneyStyle)
		_ = xlsx.SetCellStyle(sheet, cell('F', row), cell('F', row), moneyStyle)
		row++
	}

	_ = xlsx.SetCellValue(sheet, cell('C', row), "Interest accrued")
	_ = xlsx.SetCellValue(sheet, cell('D', row), detail.State.InterestAccrued.InexactFloat64())
	_ = xlsx.SetCellValue(sheet, cell('E', row), detail.State.PeriodsUnpaid)
	style, _ = xlsx.NewStyle(mergeStyles(defaultStyle(), fontItalic(), moneyFormat(), thickBorder("top")))
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('G', row), style)
}

func cell(col rune, row int) string {
	return fmt.Sprintf("%c%d", col, row)
}

func defaultStyle() *excelize.Style {
	return &excelize.Style{
		// solid white
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FFFFFF"},
			Pattern: 1,
		},
	}
}

func moneyFormat() *excelize.Style {
	format := "#,##0.00"
	return &excelize.Style{
		CustomNumFmt: &format,
	}
}

func fontBold() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	}
}

func fontItalic() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Italic: true,
		},
	}
}

func textAlignment(a string) *excelize.Style {
	return &excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: a,
		},
	}
}

func thinBorder(where ...string) *excelize.Style {
	return border(1, where...)
}

func thickBorder(where ...string) *excelize.Style {
	return border(2, where...)
}

func border(weight int, where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{
			Type:  w,
			Color: "#000000",
			Style: weight,
		})
	}
	return s
}

// mergeStyles folds later styles into the first one, later values winning
func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}
