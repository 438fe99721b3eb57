package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalNumericRoundTrip(t *testing.T) {
	values := []string{"0", "10000.00", "123.4567", "0.01", "99999999.9999"}

	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			d := decimal.RequireFromString(v)
			num, err := decimalToPgNumeric(d)
			require.NoError(t, err)
			assert.True(t, num.Valid)
			assert.True(t, d.Equal(pgNumericToDecimal(num)), "got %s", pgNumericToDecimal(num))
		})
	}
}

func TestPgNumericToDecimal_Invalid(t *testing.T) {
	assert.True(t, pgNumericToDecimal(pgtype.Numeric{}).IsZero())
	assert.True(t, pgNumericToDecimal(pgtype.Numeric{Valid: true}).IsZero())
}

func TestUUIDConversions(t *testing.T) {
	id := uuid.New()

	pg := uuidToPg(id)
	assert.True(t, pg.Valid)
	assert.Equal(t, id, uuid.UUID(pg.Bytes))

	assert.False(t, uuidPtrToPg(nil).Valid)
	assert.Nil(t, pgUUIDToPtr(pgtype.UUID{}))
	assert.Equal(t, id, *pgUUIDToPtr(uuidPtrToPg(&id)))
}

func TestNullableConversions(t *testing.T) {
	note := "hello"
	assert.Equal(t, &note, pgTextToStringPtr(stringPtrToPgText(&note)))
	assert.Nil(t, pgTextToStringPtr(stringPtrToPgText(nil)))

	var periods int32 = 3
	assert.Equal(t, int32(3), *pgInt4ToPtr(int32PtrToPg(&periods)))
	assert.Nil(t, pgInt4ToPtr(int32PtrToPg(nil)))

	assert.False(t, datePtrToPg(nil).Valid)
	assert.Nil(t, pgDatePtrIn(pgtype.Date{}, time.UTC))
}

func TestPgDateIn_RebuildsLocalMidnight(t *testing.T) {
	ict := time.FixedZone("ICT", 7*3600)
	// pgx decodes a DATE column as midnight UTC
	stored := pgtype.Date{Time: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Valid: true}

	got := pgDateIn(stored, ict)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, ict), got)
	assert.Equal(t, "2026-08-01", got.Format("2006-01-02"))

	due := pgDatePtrIn(stored, ict)
	require.NotNil(t, due)
	assert.True(t, due.Equal(got))
}

func TestDateToPg_KeepsWallClockDate(t *testing.T) {
	ict := time.FixedZone("ICT", 7*3600)
	localMidnight := time.Date(2026, 8, 1, 0, 0, 0, 0, ict)

	d := dateToPg(localMidnight)
	assert.True(t, d.Valid)
	// the wall clock date survives even though the instant is 2026-07-31 in UTC
	y, m, day := d.Time.Date()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.August, m)
	assert.Equal(t, 1, day)
}

func TestSchemaStoresBusinessDatesAsDate(t *testing.T) {
	schema := Schema()
	assert.Contains(t, schema, "interest_start_date DATE NOT NULL")
	assert.Contains(t, schema, "due_date            DATE,")
}

func TestSchemaDefinesLedgerTables(t *testing.T) {
	schema := Schema()

	for _, table := range []string{"loans", "loan_events", "loan_attachments"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, schema, "UNIQUE (loan_id, sequence)")
	assert.Equal(t, 2, strings.Count(schema, "ON DELETE CASCADE"))
}
