package recurrence

import (
	"testing"

	"bilancio/internal/core"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name     string
		date     core.Date
		cadence  core.Cadence
		interval int
		want     core.Date
	}{
		{
			name:     "daily single step",
			date:     core.NewDate(2024, 1, 30),
			cadence:  core.Daily,
			interval: 1,
			want:     core.NewDate(2024, 1, 31),
		},
		{
			name:     "daily crosses month boundary",
			date:     core.NewDate(2024, 1, 31),
			cadence:  core.Daily,
			interval: 1,
			want:     core.NewDate(2024, 2, 1),
		},
		{
			name:     "daily multi-day interval",
			date:     core.NewDate(2024, 3, 1),
			cadence:  core.Daily,
			interval: 10,
			want:     core.NewDate(2024, 3, 11),
		},
		{
			name:     "weekly keeps weekday",
			date:     core.NewDate(2024, 1, 1), // Monday
			cadence:  core.Weekly,
			interval: 1,
			want:     core.NewDate(2024, 1, 8),
		},
		{
			name:     "weekly two-week interval",
			date:     core.NewDate(2024, 1, 1),
			cadence:  core.Weekly,
			interval: 2,
			want:     core.NewDate(2024, 1, 15),
		},
		{
			name:     "monthly plain step",
			date:     core.NewDate(2024, 3, 15),
			cadence:  core.Monthly,
			interval: 1,
			want:     core.NewDate(2024, 4, 15),
		},
		{
			name:     "monthly jan 31 clamps to leap feb 29",
			date:     core.NewDate(2024, 1, 31),
			cadence:  core.Monthly,
			interval: 1,
			want:     core.NewDate(2024, 2, 29),
		},
		{
			name:     "monthly jan 31 clamps to feb 28 in non-leap year",
			date:     core.NewDate(2023, 1, 31),
			cadence:  core.Monthly,
			interval: 1,
			want:     core.NewDate(2023, 2, 28),
		},
		{
			name:     "monthly crosses year boundary",
			date:     core.NewDate(2023, 11, 30),
			cadence:  core.Monthly,
			interval: 3,
			want:     core.NewDate(2024, 2, 29),
		},
		{
			name:     "monthly multi-month interval",
			date:     core.NewDate(2024, 1, 31),
			cadence:  core.Monthly,
			interval: 2,
			want:     core.NewDate(2024, 3, 31),
		},
		{
			name:     "yearly plain step",
			date:     core.NewDate(2024, 7, 4),
			cadence:  core.Yearly,
			interval: 1,
			want:     core.NewDate(2025, 7, 4),
		},
		{
			name:     "yearly feb 29 clamps to feb 28",
			date:     core.NewDate(2024, 2, 29),
			cadence:  core.Yearly,
			interval: 1,
			want:     core.NewDate(2025, 2, 28),
		},
		{
			name:     "yearly feb 29 kept on leap target",
			date:     core.NewDate(2024, 2, 29),
			cadence:  core.Yearly,
			interval: 4,
			want:     core.NewDate(2028, 2, 29),
		},
		{
			name:     "zero interval treated as one",
			date:     core.NewDate(2024, 1, 1),
			cadence:  core.Daily,
			interval: 0,
			want:     core.NewDate(2024, 1, 2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(tt.date, tt.cadence, tt.interval)
			if !got.Equal(tt.want.Time) {
				t.Errorf("Advance(%s, %s, %d) = %s, want %s",
					tt.date, tt.cadence, tt.interval, got, tt.want)
			}
		})
	}
}

func TestAdvance_UnknownCadence(t *testing.T) {
	got := Advance(core.NewDate(2024, 1, 1), core.Cadence("fortnightly"), 1)
	if !got.IsZero() {
		t.Errorf("Advance with unknown cadence = %s, want zero date", got)
	}
}

func TestWeeksBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b core.Date
		want int
	}{
		{
			name: "same week",
			a:    core.NewDate(2024, 1, 1), // Monday
			b:    core.NewDate(2024, 1, 3), // Wednesday
			want: 0,
		},
		{
			name: "adjacent weeks",
			a:    core.NewDate(2024, 1, 3),
			b:    core.NewDate(2024, 1, 8),
			want: 1,
		},
		{
			name: "two weeks apart",
			a:    core.NewDate(2024, 1, 1),
			b:    core.NewDate(2024, 1, 15),
			want: 2,
		},
		{
			name: "reversed order is negative",
			a:    core.NewDate(2024, 1, 15),
			b:    core.NewDate(2024, 1, 1),
			want: -2,
		},
		{
			name: "saturday and next sunday are adjacent weeks",
			a:    core.NewDate(2024, 1, 6), // Saturday
			b:    core.NewDate(2024, 1, 7), // Sunday
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weeksBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("weeksBetween(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
