package recurrence

import (
	"errors"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

// MaxIterations caps the per-rule catch-up walk. It is a defensive
// fail-safe against misconfigured rules, chosen well above any
// realistic window: a decade of daily occurrences is ~3650 steps, and
// a rule must still catch up after lying dormant that long.
const MaxIterations = 5000

// ErrRunawayRule is reported when a single rule's walk exceeds
// MaxIterations. The rule is left untouched, like a malformed one.
var ErrRunawayRule = errors.New("rule exceeded catch-up iteration cap")

// Warning records a rule that could not be processed. Warnings never
// abort the batch; the affected rule is passed through unchanged.
type Warning struct {
	RuleID string
	Err    error
}

// Result is the outcome of a catch-up pass. NewTransactions holds one
// concrete transaction per occurrence that came due; UpdatedRules holds
// the rules still active afterwards, with advanced cursors. Exhausted
// rules are absent from UpdatedRules.
type Result struct {
	NewTransactions []core.Transaction
	UpdatedRules    []core.RecurrenceRule
	Warnings        []Warning
}

// CatchUp materializes every occurrence due up to and including today,
// for every rule, exactly once. It is a pure function of its inputs:
// nothing is persisted and the input slices are not mutated. Feeding a
// pass's own output back in with the same today yields no new
// transactions and an identical rule set.
func CatchUp(rules []core.RecurrenceRule, existing []core.Transaction, today core.Date) Result {
	var result Result

	counts := countBySourceRule(existing)

	for _, rule := range rules {
		emitted, updated, active, err := catchUpRule(rule, counts[rule.ID], today)
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{RuleID: rule.ID, Err: err})
			result.UpdatedRules = append(result.UpdatedRules, rule)
			continue
		}

		result.NewTransactions = append(result.NewTransactions, emitted...)
		if active {
			result.UpdatedRules = append(result.UpdatedRules, updated)
		}
	}

	return result
}

// catchUpRule walks a single rule forward from its cursor. It returns
// the materialized transactions, the rule with its advanced cursor and
// whether the rule is still active. On error the rule must be left
// exactly as it was.
func catchUpRule(rule core.RecurrenceRule, materialized int, today core.Date) ([]core.Transaction, core.RecurrenceRule, bool, error) {
	if err := rule.ValidateSchedule(); err != nil {
		return nil, rule, true, err
	}

	// The very first occurrence is the anchor itself, not one step past it.
	cursor := rule.AnchorDate
	if !rule.LastMaterialized.IsZero() {
		cursor = NextOccurrence(rule, rule.LastMaterialized)
	}

	var emitted []core.Transaction
	updated := rule
	exhausted := false

	iterations := 0
	for !cursor.IsZero() && !cursor.After(today.Time) {
		iterations++
		if iterations > MaxIterations {
			return nil, rule, true, ErrRunawayRule
		}

		if IsExhausted(rule, cursor, materialized) {
			exhausted = true
			break
		}

		emitted = append(emitted, Materialize(rule, cursor))
		materialized++
		updated.LastMaterialized = cursor

		cursor = NextOccurrence(rule, cursor)
	}

	// The loop stopped with cursor on the next prospective occurrence;
	// a rule whose next occurrence can never be emitted is exhausted
	// and drops out of the active set.
	if !exhausted {
		exhausted = IsExhausted(rule, cursor, materialized)
	}

	return emitted, updated, !exhausted, nil
}

// Materialize stamps out the concrete transaction for one occurrence of
// a rule. The result is an ordinary transaction from this point on: the
// rule's payload fields are copied verbatim, the recurrence fields are
// gone, and SourceRuleID ties it back to its template.
func Materialize(rule core.RecurrenceRule, occurrence core.Date) core.Transaction {
	return core.Transaction{
		ID:           uuid.NewString(),
		Date:         occurrence,
		Description:  rule.Description,
		Amount:       rule.Amount,
		Account:      rule.Account,
		Primary:      rule.Primary,
		Secondary:    rule.Secondary,
		SourceRuleID: rule.ID,
	}
}

func countBySourceRule(transactions []core.Transaction) map[string]int {
	counts := make(map[string]int)
	for _, t := range transactions {
		if t.SourceRuleID != "" {
			counts[t.SourceRuleID]++
		}
	}
	return counts
}
