package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is how often a recurring template produces a transaction.
type Frequency int8

const (
	FrequencyDaily Frequency = iota
	FrequencyWeekly
	FrequencyMonthly
	FrequencyYearly
)

// ParseFrequency parses a frequency name as accepted by the API layer.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(s) {
	case "daily":
		return FrequencyDaily, nil
	case "weekly":
		return FrequencyWeekly, nil
	case "monthly":
		return FrequencyMonthly, nil
	case "yearly":
		return FrequencyYearly, nil
	}
	return 0, fmt.Errorf("unknown frequency %q", s)
}

func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyWeekly:
		return "weekly"
	case FrequencyMonthly:
		return "monthly"
	case FrequencyYearly:
		return "yearly"
	}
	return fmt.Sprintf("frequency(%d)", int8(f))
}

// Valid reports whether f is one of the defined frequencies.
func (f Frequency) Valid() bool {
	return f >= FrequencyDaily && f <= FrequencyYearly
}

// DateOnly strips the time-of-day component, normalizing to midnight UTC.
// All due-date arithmetic operates on these normalized calendar dates.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDueDate returns the due date one period after from. It is a pure
// function: no clock reads, identical inputs always yield identical outputs.
//
// Monthly and yearly steps preserve the day-of-month, clamping to the last
// day of shorter target months (Jan 31 -> Feb 28). The clamped result is the
// new anchor, so the day does not recover later (Feb 28 -> Mar 28).
func NextDueDate(from time.Time, f Frequency) time.Time {
	from = DateOnly(from)
	switch f {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return addMonthsClamped(from, 1)
	case FrequencyYearly:
		return addMonthsClamped(from, 12)
	}
	// Unreachable for templates that passed validation.
	return from
}

// addMonthsClamped advances by whole calendar months. time.AddDate is not
// usable here: it normalizes overflow (Jan 31 + 1 month = Mar 2/3) instead
// of clamping to the end of the target month.
func addMonthsClamped(from time.Time, months int) time.Time {
	y, m, d := from.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := daysInMonth(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// daysInMonth returns the number of days in the given month. Day zero of the
// following month is the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
