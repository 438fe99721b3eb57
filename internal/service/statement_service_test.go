package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/dafibh/fortuna/loan-ledger/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestStatementExport(t *testing.T) {
	repo := testutil.NewMockLoanRepository()
	loanSvc := NewLoanService(repo, LoanServiceConfig{Clock: testutil.FixedClock(testNow)})
	loan := originateBorrowFixed(t, loanSvc)
	ctx := context.Background()

	_, err := loanSvc.RecordPayment(ctx, loan.Loan.ID, RecordPaymentInput{
		PrincipalAmount: dec(2500),
		InterestPeriods: intPtr(1),
		Note:            strPtr("first instalment"),
	})
	require.NoError(t, err)

	svc := NewStatementService(loanSvc)
	data, filename, err := svc.Export(ctx, loan.Loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "loan-john-doe-2026-03-10.xlsx", filename)

	xlsx, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer xlsx.Close()

	assert.Equal(t, []string{StatementSummarySheet, StatementLedgerSheet}, xlsx.GetSheetList())

	v, err := xlsx.GetCellValue(StatementSummarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", v)

	rows, err := xlsx.GetRows(StatementLedgerSheet)
	require.NoError(t, err)
	// header, three events, accrued footer
	require.Len(t, rows, 5)
	assert.Equal(t, "Disbursed", rows[1][2])
	assert.Equal(t, "Principal Payment", rows[2][2])
	assert.Equal(t, "Interest Payment", rows[3][2])
	assert.Equal(t, "1", rows[3][4])
	assert.Equal(t, "first instalment", rows[3][6])

	raw, err := xlsx.GetCellValue(StatementLedgerSheet, "F3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "7500", raw)

	raw, err = xlsx.GetCellValue(StatementLedgerSheet, "D5", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "100", raw)
}

func TestStatementExport_NotFound(t *testing.T) {
	svc := NewStatementService(NewLoanService(testutil.NewMockLoanRepository(), LoanServiceConfig{}))

	_, _, err := svc.Export(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatementFilename(t *testing.T) {
	id := uuid.MustParse("0b9f3c2a-1111-2222-3333-444455556666")

	tests := []struct {
		name         string
		counterparty string
		want         string
	}{
		{"simple", "Jane", "loan-jane-2026-01-02.xlsx"},
		{"punctuation", "Bob & Co.", "loan-bob---co-2026-01-02.xlsx"},
		{"non ascii only", "Łódź", "loan-d-2026-01-02.xlsx"},
		{"fallback to id", "日本", "loan-0b9f3c2a-2026-01-02.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatementFilename(&domain.Loan{ID: id, CounterpartyName: tt.counterparty}, "2026-01-02")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeStyles(t *testing.T) {
	merged := mergeStyles(defaultStyle(), fontBold(), thinBorder("bottom"))

	require.NotNil(t, merged.Font)
	assert.True(t, merged.Font.Bold)
	assert.Equal(t, "pattern", merged.Fill.Type)
	require.Len(t, merged.Border, 1)
	assert.Equal(t, "bottom", merged.Border[0].Type)

	assert.Nil(t, mergeStyles())
}
