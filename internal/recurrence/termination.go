package recurrence

import "bilancio/internal/core"

// IsExhausted reports whether materializing candidate would violate the
// rule's termination policy, given how many occurrences have already
// been materialized. It is evaluated before a candidate is emitted, so
// an occurrence that would exceed the policy is never produced.
func IsExhausted(rule core.RecurrenceRule, candidate core.Date, materialized int) bool {
	switch rule.Termination.Kind {
	case core.TerminateOnDate:
		return candidate.After(rule.Termination.EndDate.Time)
	case core.TerminateAfterCount:
		return materialized >= rule.Termination.MaxOccurrences
	}
	// TerminateNever and anything unrecognized: never exhausted. Unknown
	// kinds are rejected earlier by ValidateSchedule.
	return false
}
