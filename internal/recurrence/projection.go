package recurrence

import "bilancio/internal/core"

// CountOccurrencesInWindow counts the rule's remaining scheduled
// occurrences falling inside [windowStart, windowEnd], walking the same
// cursor as CatchUp but emitting nothing and mutating nothing.
// materialized is the number of transactions already stamped out for
// this rule, so count-terminated rules project only what is actually
// left. An inverted window or an invalid rule counts zero. The walk is
// bounded by MaxIterations and stops as soon as the cursor passes the
// window end, so a forever rule with a far-future window stays cheap.
func CountOccurrencesInWindow(rule core.RecurrenceRule, materialized int, windowStart, windowEnd core.Date) int {
	if windowEnd.Before(windowStart.Time) {
		return 0
	}
	if rule.ValidateSchedule() != nil {
		return 0
	}

	cursor := rule.AnchorDate
	if !rule.LastMaterialized.IsZero() {
		cursor = NextOccurrence(rule, rule.LastMaterialized)
	}

	count := 0
	for i := 0; i < MaxIterations; i++ {
		if cursor.IsZero() || cursor.After(windowEnd.Time) {
			break
		}
		if IsExhausted(rule, cursor, materialized) {
			break
		}

		if !cursor.Before(windowStart.Time) {
			count++
		}
		materialized++

		cursor = NextOccurrence(rule, cursor)
	}

	return count
}
