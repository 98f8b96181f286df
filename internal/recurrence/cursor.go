// Package recurrence implements the projection and materialization
// engine for recurring transactions: pure date arithmetic, occurrence
// generation, termination policies, catch-up materialization and
// read-only window projections. The package does no I/O and holds no
// state; callers supply the rule set, the existing transactions and
// "today", and persist whatever comes back.
package recurrence

import (
	"time"

	"bilancio/internal/core"
)

// Advance returns the date one cadence period after d.
//
// Month and year steps clamp to the last valid day of the target month
// (Jan 31 + 1 month is the last day of February, never March 2; a
// Feb 29 anchor lands on Feb 28 in non-leap years). Steps never roll
// over into the following month.
func Advance(d core.Date, cadence core.Cadence, interval int) core.Date {
	if interval < 1 {
		interval = 1
	}

	switch cadence {
	case core.Daily:
		return d.AddDays(interval)
	case core.Weekly:
		return d.AddDays(7 * interval)
	case core.Monthly:
		return addMonthsClamped(d, interval)
	case core.Yearly:
		return addMonthsClamped(d, 12*interval)
	}

	return core.Date{}
}

func addMonthsClamped(d core.Date, months int) core.Date {
	total := d.Year()*12 + (d.Month() - 1) + months
	year, month := total/12, total%12+1

	day := d.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}

	return core.NewDate(year, month, day)
}

// daysInMonth uses the day-zero-of-next-month trick to get the month length.
func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// weekStart returns the Sunday beginning the week containing d.
func weekStart(d core.Date) core.Date {
	return d.AddDays(-int(d.Weekday()))
}

// weeksBetween counts whole weeks from the week containing a to the
// week containing b. Negative when b's week precedes a's.
func weeksBetween(a, b core.Date) int {
	days := int(weekStart(b).Sub(weekStart(a).Time).Hours() / 24)
	return days / 7
}
