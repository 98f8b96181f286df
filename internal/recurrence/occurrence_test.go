package recurrence

import (
	"testing"
	"time"

	"bilancio/internal/core"
)

func TestNextOccurrence_Daily(t *testing.T) {
	rule := core.RecurrenceRule{
		Cadence:    core.Daily,
		Interval:   3,
		AnchorDate: core.NewDate(2024, 1, 1),
	}

	got := NextOccurrence(rule, core.NewDate(2024, 1, 1))
	want := core.NewDate(2024, 1, 4)
	if !got.Equal(want.Time) {
		t.Errorf("NextOccurrence daily = %s, want %s", got, want)
	}
}

func TestNextOccurrence_WeeklyPlain(t *testing.T) {
	// Empty weekday set: same weekday as the anchor, every interval weeks.
	rule := core.RecurrenceRule{
		Cadence:    core.Weekly,
		Interval:   2,
		AnchorDate: core.NewDate(2024, 1, 1), // Monday
	}

	got := NextOccurrence(rule, core.NewDate(2024, 1, 1))
	want := core.NewDate(2024, 1, 15)
	if !got.Equal(want.Time) {
		t.Errorf("NextOccurrence weekly = %s, want %s", got, want)
	}
}

func TestNextOccurrence_WeeklyWithWeekdaySet(t *testing.T) {
	// Monday + Wednesday, every 2 weeks, anchored on Monday 2024-01-01.
	rule := core.RecurrenceRule{
		Cadence:    core.Weekly,
		Interval:   2,
		Weekdays:   core.NewWeekdaySet(time.Monday, time.Wednesday),
		AnchorDate: core.NewDate(2024, 1, 1),
	}

	tests := []struct {
		name string
		from core.Date
		want core.Date
	}{
		{
			name: "monday to wednesday same week",
			from: core.NewDate(2024, 1, 1),
			want: core.NewDate(2024, 1, 3),
		},
		{
			name: "wednesday skips the off week",
			from: core.NewDate(2024, 1, 3),
			want: core.NewDate(2024, 1, 15),
		},
		{
			name: "mid off-week lands on next on-week monday",
			from: core.NewDate(2024, 1, 9),
			want: core.NewDate(2024, 1, 15),
		},
		{
			name: "second on-week monday to wednesday",
			from: core.NewDate(2024, 1, 15),
			want: core.NewDate(2024, 1, 17),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(rule, tt.from)
			if !got.Equal(tt.want.Time) {
				t.Errorf("NextOccurrence(from %s) = %s, want %s", tt.from, got, tt.want)
			}
		})
	}
}

func TestNextOccurrence_MonthlyDayOfMonth(t *testing.T) {
	rule := core.RecurrenceRule{
		Cadence:     core.Monthly,
		Interval:    1,
		MonthAnchor: core.DayOfMonth,
		AnchorDate:  core.NewDate(2024, 1, 31),
	}

	tests := []struct {
		name string
		from core.Date
		want core.Date
	}{
		{
			name: "jan 31 clamps to feb 29",
			from: core.NewDate(2024, 1, 31),
			want: core.NewDate(2024, 2, 29),
		},
		{
			name: "feb 29 re-anchors to mar 31",
			from: core.NewDate(2024, 2, 29),
			want: core.NewDate(2024, 3, 31),
		},
		{
			name: "mar 31 clamps to apr 30",
			from: core.NewDate(2024, 3, 31),
			want: core.NewDate(2024, 4, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(rule, tt.from)
			if !got.Equal(tt.want.Time) {
				t.Errorf("NextOccurrence(from %s) = %s, want %s", tt.from, got, tt.want)
			}
		})
	}
}

func TestNextOccurrence_MonthlyWeekdayOrdinal(t *testing.T) {
	// 2024-01-18 is the 3rd Thursday of January 2024.
	rule := core.RecurrenceRule{
		Cadence:     core.Monthly,
		Interval:    1,
		MonthAnchor: core.WeekdayOrdinal,
		AnchorDate:  core.NewDate(2024, 1, 18),
	}

	got := NextOccurrence(rule, core.NewDate(2024, 1, 18))
	want := core.NewDate(2024, 2, 15) // 3rd Thursday of February 2024
	if !got.Equal(want.Time) {
		t.Errorf("NextOccurrence ordinal = %s, want %s", got, want)
	}
}

func TestNextOccurrence_MonthlyFifthWeekdayClampsToLast(t *testing.T) {
	// 2024-01-29 is the 5th Monday of January 2024; February 2024 has
	// only four Mondays, so the series clamps to the last one.
	rule := core.RecurrenceRule{
		Cadence:     core.Monthly,
		Interval:    1,
		MonthAnchor: core.WeekdayOrdinal,
		AnchorDate:  core.NewDate(2024, 1, 29),
	}

	got := NextOccurrence(rule, core.NewDate(2024, 1, 29))
	want := core.NewDate(2024, 2, 26) // 4th and last Monday of February
	if !got.Equal(want.Time) {
		t.Errorf("NextOccurrence 5th-weekday clamp = %s, want %s", got, want)
	}
}

func TestNextOccurrence_YearlyLeapDay(t *testing.T) {
	rule := core.RecurrenceRule{
		Cadence:    core.Yearly,
		Interval:   1,
		AnchorDate: core.NewDate(2024, 2, 29),
	}

	tests := []struct {
		name string
		from core.Date
		want core.Date
	}{
		{
			name: "leap day clamps to feb 28",
			from: core.NewDate(2024, 2, 29),
			want: core.NewDate(2025, 2, 28),
		},
		{
			name: "clamped series returns to feb 29 on leap year",
			from: core.NewDate(2027, 2, 28),
			want: core.NewDate(2028, 2, 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(rule, tt.from)
			if !got.Equal(tt.want.Time) {
				t.Errorf("NextOccurrence(from %s) = %s, want %s", tt.from, got, tt.want)
			}
		})
	}
}

func TestNextOccurrence_UnknownCadence(t *testing.T) {
	rule := core.RecurrenceRule{
		Cadence:    core.Cadence("hourly"),
		Interval:   1,
		AnchorDate: core.NewDate(2024, 1, 1),
	}

	if got := NextOccurrence(rule, core.NewDate(2024, 1, 1)); !got.IsZero() {
		t.Errorf("NextOccurrence with unknown cadence = %s, want zero date", got)
	}
}

func TestNthWeekdayOfMonth(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   int
		weekday time.Weekday
		n       int
		want    core.Date
	}{
		{
			name:    "first monday of january 2024",
			year:    2024,
			month:   1,
			weekday: time.Monday,
			n:       1,
			want:    core.NewDate(2024, 1, 1),
		},
		{
			name:    "third thursday of february 2024",
			year:    2024,
			month:   2,
			weekday: time.Thursday,
			n:       3,
			want:    core.NewDate(2024, 2, 15),
		},
		{
			name:    "fifth friday of march 2024",
			year:    2024,
			month:   3,
			weekday: time.Friday,
			n:       5,
			want:    core.NewDate(2024, 3, 29),
		},
		{
			name:    "missing fifth sunday clamps to fourth",
			year:    2024,
			month:   2,
			weekday: time.Sunday,
			n:       5,
			want:    core.NewDate(2024, 2, 25),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nthWeekdayOfMonth(tt.year, tt.month, tt.weekday, tt.n)
			if !got.Equal(tt.want.Time) {
				t.Errorf("nthWeekdayOfMonth(%d, %d, %s, %d) = %s, want %s",
					tt.year, tt.month, tt.weekday, tt.n, got, tt.want)
			}
		})
	}
}
