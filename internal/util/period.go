package util

import (
	"fmt"
	"time"
)

// Cadence is the length of one interest period
type Cadence int

const (
	CadenceWeekly Cadence = iota
	CadenceMonthly
)

const daysPerWeek = 7

// MonthlyPolicy decides when a monthly period counts as started.
//
// Weekly periods are always day-exact (complete 7-day calendar intervals in the
// start's zone, so a daylight saving shift never moves a boundary). Monthly
// periods default to calendar counting, where crossing a month boundary counts
// a full period regardless of the start's day-of-month: a loan started on the
// 30th accrues its first monthly period on the 1st of the next month. The
// anniversary policy waits for the start's day-of-month instead (clamped to
// the month length).
type MonthlyPolicy string

const (
	MonthlyPolicyCalendar    MonthlyPolicy = "calendar"
	MonthlyPolicyAnniversary MonthlyPolicy = "anniversary"
)

// ParseMonthlyPolicy parses a policy name; empty means calendar
func ParseMonthlyPolicy(s string) (MonthlyPolicy, error) {
	switch MonthlyPolicy(s) {
	case "", MonthlyPolicyCalendar:
		return MonthlyPolicyCalendar, nil
	case MonthlyPolicyAnniversary:
		return MonthlyPolicyAnniversary, nil
	default:
		return "", fmt.Errorf("unknown monthly period policy %q", s)
	}
}

// PeriodsBetween returns the number of whole periods elapsed between start and
// end. It never returns a negative count.
func PeriodsBetween(start, end time.Time, cadence Cadence, policy MonthlyPolicy) int {
	if end.Before(start) {
		return 0
	}

	switch cadence {
	case CadenceWeekly:
		return DaysBetween(start, end) / daysPerWeek
	case CadenceMonthly:
		months := MonthsBetween(start, end)
		if policy == MonthlyPolicyAnniversary && months > 0 {
			anniversary := anniversaryAfter(start, months)
			if end.Before(anniversary) {
				months--
			}
		}
		return months
	default:
		return 0
	}
}

// NextPeriodStart returns the instant at which the period count next increases
func NextPeriodStart(start, now time.Time, cadence Cadence, policy MonthlyPolicy) time.Time {
	n := PeriodsBetween(start, now, cadence, policy)

	switch cadence {
	case CadenceWeekly:
		return start.AddDate(0, 0, (n+1)*daysPerWeek)
	case CadenceMonthly:
		if policy == MonthlyPolicyAnniversary {
			return anniversaryAfter(start, n+1)
		}
		return time.Date(start.Year(), start.Month()+time.Month(n+1), 1, 0, 0, 0, 0, start.Location())
	default:
		return start
	}
}

// DaysBetween counts the whole calendar days from start to end, read in start's zone.
// The last day counts once end reaches start's wall clock time.
func DaysBetween(start, end time.Time) int {
	end = end.In(start.Location())
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	days := int(time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC).Sub(time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)) / (24 * time.Hour))
	if wallClock(end) < wallClock(start) {
		days--
	}
	return days
}

func wallClock(t time.Time) time.Duration {
	h, m, sec := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second + time.Duration(t.Nanosecond())
}

// anniversaryAfter returns start shifted by the given number of months, with
// the day clamped to the target month length
func anniversaryAfter(start time.Time, months int) time.Time {
	day := CalculateActualDate(start.Year(), start.Month()+time.Month(months), start.Day(), start.Location())
	return day.Add(start.Sub(StartOfDay(start)))
}
