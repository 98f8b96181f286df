// This file implements the per-cadence occurrence steppers. Each
// cadence has its own strategy computing the next due date strictly
// after a reference date, given the rule's anchor.

package recurrence

import (
	"time"

	"bilancio/internal/core"
)

// Stepper is the strategy interface for computing the next occurrence
// of a rule after a reference date. Implementations are stateless.
type Stepper interface {
	// Next returns the earliest occurrence date strictly after from.
	Next(rule core.RecurrenceRule, from core.Date) core.Date
}

// DailyStepper steps by rule.Interval days.
type DailyStepper struct{}

func (DailyStepper) Next(rule core.RecurrenceRule, from core.Date) core.Date {
	return Advance(from, core.Daily, rule.Interval)
}

// WeeklyStepper steps by rule.Interval weeks. With a non-empty weekday
// set it returns the earliest later date whose weekday is in the set
// and whose week is a whole multiple of the interval away from the
// anchor's week; with an empty set it keeps the anchor's weekday.
type WeeklyStepper struct{}

func (WeeklyStepper) Next(rule core.RecurrenceRule, from core.Date) core.Date {
	if rule.Weekdays.IsEmpty() {
		return Advance(from, core.Weekly, rule.Interval)
	}

	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	anchor := rule.AnchorDate
	d := from.AddDays(1)
	// A matching week is at most interval weeks away, so this always
	// terminates within 7*(interval+1) days.
	for i := 0; i < 7*(interval+1); i++ {
		if rule.Weekdays.Contains(d.Weekday()) {
			weeks := weeksBetween(anchor, d)
			if ((weeks%interval)+interval)%interval == 0 {
				return d
			}
		}
		d = d.AddDays(1)
	}

	return core.Date{}
}

// MonthlyStepper steps by rule.Interval months, re-anchoring each
// occurrence to the rule's anchor date rather than the previous
// occurrence. This keeps a day-31 series on the 31st after passing
// through a short month (Jan 31, Feb 29, Mar 31) and keeps a
// weekday-ordinal series on its Nth weekday.
type MonthlyStepper struct{}

func (MonthlyStepper) Next(rule core.RecurrenceRule, from core.Date) core.Date {
	target := addMonthsClamped(from, rule.Interval)
	year, month := target.Year(), target.Month()

	if rule.MonthAnchor == core.WeekdayOrdinal {
		weekday := rule.AnchorDate.Weekday()
		ordinal := (rule.AnchorDate.Day()-1)/7 + 1
		return nthWeekdayOfMonth(year, month, weekday, ordinal)
	}

	day := rule.AnchorDate.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return core.NewDate(year, month, day)
}

// YearlyStepper steps by rule.Interval years, re-anchoring to the
// anchor's month and day so a Feb 29 series returns to Feb 29 on leap
// years after clamping to Feb 28 in between.
type YearlyStepper struct{}

func (YearlyStepper) Next(rule core.RecurrenceRule, from core.Date) core.Date {
	year := from.Year() + rule.Interval
	month := rule.AnchorDate.Month()

	day := rule.AnchorDate.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return core.NewDate(year, month, day)
}

// nthWeekdayOfMonth returns the nth occurrence of weekday w in the
// given month, or the last occurrence when the month has no nth one
// (a "5th Monday" clamps to the last Monday).
func nthWeekdayOfMonth(year, month int, w time.Weekday, n int) core.Date {
	first := core.NewDate(year, month, 1)
	offset := (int(w) - int(first.Weekday()) + 7) % 7

	day := 1 + offset + (n-1)*7
	for day > daysInMonth(year, month) {
		day -= 7
	}
	return core.NewDate(year, month, day)
}

// steppers maps cadences to their occurrence strategies.
var steppers = map[core.Cadence]Stepper{
	core.Daily:   DailyStepper{},
	core.Weekly:  WeeklyStepper{},
	core.Monthly: MonthlyStepper{},
	core.Yearly:  YearlyStepper{},
}

// NextOccurrence returns the rule's earliest occurrence strictly after
// from, or the zero Date when the rule's cadence is not recognized.
func NextOccurrence(rule core.RecurrenceRule, from core.Date) core.Date {
	stepper, ok := steppers[rule.Cadence]
	if !ok {
		return core.Date{}
	}
	return stepper.Next(rule, from)
}
