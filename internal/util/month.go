package util

import "time"

// MonthsBetween returns the calendar-month difference between two instants,
// ignoring day-of-month. end is read in start's location.
func MonthsBetween(start, end time.Time) int {
	end = end.In(start.Location())
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

// CalculateActualDate returns the actual date for a target day in a given month,
// handling months with fewer days (e.g., day 31 in February returns Feb 28/29).
// month may overflow past December; it is normalised like time.Date does.
func CalculateActualDate(year int, month time.Month, targetDay int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)

	// Get last day of month by going to day 0 of next month
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, loc).Day()

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(first.Year(), first.Month(), actualDay, 0, 0, 0, 0, loc)
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
