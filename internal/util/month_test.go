package util

import (
	"testing"
	"time"
)

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same month", date(2026, 3, 1), date(2026, 3, 31), 0},
		{"next month ignores day", date(2026, 3, 30), date(2026, 4, 1), 1},
		{"year boundary", date(2025, 11, 15), date(2026, 2, 1), 3},
		{"end before start", date(2026, 5, 1), date(2026, 3, 1), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthsBetween(tt.start, tt.end); got != tt.want {
				t.Errorf("MonthsBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateActualDate(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		targetDay int
		expected  time.Time
	}{
		{"day 31 in February", 2026, time.February, 31, date(2026, 2, 28)},
		{"day 31 in leap February", 2024, time.February, 31, date(2024, 2, 29)},
		{"day fits month", 2026, time.March, 15, date(2026, 3, 15)},
		{"month overflow wraps year", 2025, time.Month(14), 31, date(2026, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateActualDate(tt.year, tt.month, tt.targetDay, time.UTC)
			if !got.Equal(tt.expected) {
				t.Errorf("CalculateActualDate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(time.Date(2026, 3, 15, 17, 45, 12, 99, time.UTC))
	if !got.Equal(date(2026, 3, 15)) {
		t.Errorf("StartOfDay() = %v", got)
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
