package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Daily   Cadence = "daily"
	Weekly  Cadence = "weekly"
	Monthly Cadence = "monthly"
	Yearly  Cadence = "yearly"
)

const (
	// DayOfMonth repeats the same calendar day number every period.
	DayOfMonth MonthAnchor = "day_of_month"
	// WeekdayOrdinal repeats the same "Nth weekday of the month"
	// (e.g. 3rd Thursday), derived from the rule's anchor date.
	WeekdayOrdinal MonthAnchor = "weekday_ordinal"
)

const (
	TerminateNever      TerminationKind = "never"
	TerminateOnDate     TerminationKind = "on_date"
	TerminateAfterCount TerminationKind = "after_count"
)

type (
	Cadence string

	MonthAnchor string

	TerminationKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// WeekdaySet is a bitmask over Sunday(0)..Saturday(6).
	WeekdaySet uint8

	// Termination describes when a recurring series stops producing
	// occurrences. EndDate is meaningful only for TerminateOnDate,
	// MaxOccurrences only for TerminateAfterCount.
	Termination struct {
		Kind           TerminationKind
		EndDate        Date
		MaxOccurrences int
	}

	// Transaction is a concrete ledger entry. SourceRuleID is empty for
	// one-off entries and carries the originating rule's ID for entries
	// materialized from a recurring template.
	Transaction struct {
		ID           string
		Date         Date
		Description  string
		Amount       Money
		Account      string
		Primary      string // Primary category
		Secondary    string // Secondary category
		SourceRuleID string
	}

	// RecurrenceRule is a recurring transaction template. The schedule
	// fields drive the materialization engine; the payload fields are
	// copied verbatim onto every materialized transaction.
	RecurrenceRule struct {
		ID          string
		Cadence     Cadence
		Interval    int
		Weekdays    WeekdaySet  // weekly cadence only
		MonthAnchor MonthAnchor // monthly cadence only
		AnchorDate  Date
		Termination Termination

		// LastMaterialized is the date of the most recently materialized
		// occurrence; the zero Date means none yet. Advanced only by the
		// catch-up materializer, never rewound.
		LastMaterialized Date

		Description string
		Amount      Money
		Account     string
		Primary     string
		Secondary   string
	}

	CategoryAmount struct {
		Name   string
		Amount Money
	}

	AccountBalance struct {
		Account string
		Total   Money
	}

	MonthOverview struct {
		Year       int
		Month      int
		Total      Money
		ByCategory []CategoryAmount
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyAccount     = errors.New("empty account")
	ErrEmptyPrimary     = errors.New("empty primary category")
	ErrEmptySecondary   = errors.New("empty secondary category")

	ErrInvalidCadence     = errors.New("invalid cadence")
	ErrInvalidInterval    = errors.New("interval must be at least 1")
	ErrInvalidMonthAnchor = errors.New("invalid month anchor")
	ErrInvalidTermination = errors.New("invalid termination policy")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date at UTC midnight.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO-8601 date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date n days later (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as "2006-01-02"; the zero date encodes as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts "2006-01-02", the empty string, or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewWeekdaySet builds a set from the given weekdays.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, w := range days {
		s |= 1 << uint(w)
	}
	return s
}

// Contains reports whether w is in the set.
func (s WeekdaySet) Contains(w time.Weekday) bool {
	return s&(1<<uint(w)) != 0
}

// IsEmpty reports whether no weekday is set.
func (s WeekdaySet) IsEmpty() bool {
	return s&0x7f == 0
}

// Weekdays returns the members of the set in Sunday..Saturday order.
func (s WeekdaySet) Weekdays() []time.Weekday {
	var days []time.Weekday
	for w := time.Sunday; w <= time.Saturday; w++ {
		if s.Contains(w) {
			days = append(days, w)
		}
	}
	return days
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Account) == "" {
		return ErrEmptyAccount
	}
	if strings.TrimSpace(t.Primary) == "" {
		return ErrEmptyPrimary
	}
	if strings.TrimSpace(t.Secondary) == "" {
		return ErrEmptySecondary
	}
	return nil
}

// ValidateSchedule checks only the fields the materialization engine
// depends on. A rule failing this check is skipped by catch-up runs
// and left untouched so it can be fixed and retried later.
func (r RecurrenceRule) ValidateSchedule() error {
	switch r.Cadence {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return ErrInvalidCadence
	}

	if r.Interval < 1 {
		return ErrInvalidInterval
	}

	if err := r.AnchorDate.Validate(); err != nil {
		return errors.New("invalid anchor date: " + err.Error())
	}

	if r.Cadence == Monthly {
		switch r.MonthAnchor {
		case DayOfMonth, WeekdayOrdinal:
		default:
			return ErrInvalidMonthAnchor
		}
	}

	switch r.Termination.Kind {
	case TerminateNever:
	case TerminateOnDate:
		if err := r.Termination.EndDate.Validate(); err != nil {
			return errors.New("invalid end date: " + err.Error())
		}
		if r.Termination.EndDate.Before(r.AnchorDate.Time) {
			return errors.New("end date must not precede anchor date")
		}
	case TerminateAfterCount:
		if r.Termination.MaxOccurrences < 1 {
			return errors.New("max occurrences must be at least 1")
		}
	default:
		return ErrInvalidTermination
	}

	return nil
}

func (r RecurrenceRule) Validate() error {
	if err := r.ValidateSchedule(); err != nil {
		return err
	}

	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Account) == "" {
		return ErrEmptyAccount
	}
	if strings.TrimSpace(r.Primary) == "" {
		return ErrEmptyPrimary
	}
	if strings.TrimSpace(r.Secondary) == "" {
		return ErrEmptySecondary
	}

	return nil
}
