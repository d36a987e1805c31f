package recurring

import (
	"fmt"
	"time"
)

// NextRunDate maps a charge date and cadence to the next calendar due date.
// Month-based cadences clamp to the last valid day of the target month, so a
// plan anchored on Jan 31 runs on Feb 28 (or 29) rather than sliding into
// March.
func NextRunDate(from time.Time, freq Frequency) (time.Time, error) {
	switch freq {
	case FreqWeekly:
		return from.AddDate(0, 0, 7), nil
	case FreqBiweekly:
		return from.AddDate(0, 0, 14), nil
	case FreqMonthly:
		return addMonthsClamped(from, 1), nil
	case FreqQuarterly:
		return addMonthsClamped(from, 3), nil
	default:
		return time.Time{}, fmt.Errorf("unknown frequency %q", freq)
	}
}

// addMonthsClamped advances by whole months without time.AddDate's overflow
// behaviour (Jan 31 + 1 month must not become Mar 3).
func addMonthsClamped(from time.Time, months int) time.Time {
	year, month, day := from.Date()
	hour, min, sec := from.Clock()
	target := time.Date(year, month+time.Month(months), 1, hour, min, sec, from.Nanosecond(), from.Location())
	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, hour, min, sec, from.Nanosecond(), from.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
