package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction inserts a concrete transaction row.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, date, description, amount_cents, account, primary_category, secondary_category, source_rule_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.String(), t.Description, t.Amount.Cents,
		t.Account, t.Primary, t.Secondary, nullable(t.SourceRuleID))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"date", t.Date.String(),
		"description", t.Description,
		"amount_cents", t.Amount.Cents,
		"source_rule_id", t.SourceRuleID)

	return nil
}

// SoftDeleteTransaction marks a transaction deleted without removing the row.
func (r *SQLiteRepository) SoftDeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTransactionsByMonth returns non-deleted transactions in the given
// calendar month, oldest first.
func (r *SQLiteRepository) ListTransactionsByMonth(ctx context.Context, year, month int) ([]core.Transaction, error) {
	start := core.NewDate(year, month, 1)
	end := core.NewDate(year, month+1, 1).AddDays(-1)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, description, amount_cents, account, primary_category, secondary_category, source_rule_id
		FROM transactions
		WHERE deleted = 0 AND date BETWEEN ? AND ?
		ORDER BY date, created_at`,
		start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions by month: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListMaterializedTransactions returns every non-deleted transaction
// stamped from a recurring rule. The catch-up processor feeds these to
// the engine so per-rule occurrence counts stay exact.
func (r *SQLiteRepository) ListMaterializedTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, description, amount_cents, account, primary_category, secondary_category, source_rule_id
		FROM transactions
		WHERE deleted = 0 AND source_rule_id IS NOT NULL
		ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list materialized transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// CountTransactionsByRule counts non-deleted transactions materialized
// from the given rule.
func (r *SQLiteRepository) CountTransactionsByRule(ctx context.Context, ruleID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE deleted = 0 AND source_rule_id = ?`, ruleID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions by rule: %w", err)
	}
	return count, nil
}

// CreateRule inserts a recurring rule in the active state.
func (r *SQLiteRepository) CreateRule(ctx context.Context, rule core.RecurrenceRule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurrence_rules
			(id, cadence, interval, weekday_mask, month_anchor, anchor_date,
			 termination_kind, end_date, max_occurrences, last_materialized,
			 description, amount_cents, account, primary_category, secondary_category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, string(rule.Cadence), rule.Interval, int(rule.Weekdays), string(rule.MonthAnchor),
		rule.AnchorDate.String(), string(rule.Termination.Kind),
		nullable(rule.Termination.EndDate.String()), nullableInt(rule.Termination.MaxOccurrences),
		nullable(rule.LastMaterialized.String()),
		rule.Description, rule.Amount.Cents, rule.Account, rule.Primary, rule.Secondary)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}

	slog.InfoContext(ctx, "Recurring rule saved",
		"id", rule.ID,
		"cadence", rule.Cadence,
		"interval", rule.Interval,
		"anchor_date", rule.AnchorDate.String(),
		"termination", rule.Termination.Kind)

	return nil
}

// GetRule fetches a single rule by ID, active or not.
func (r *SQLiteRepository) GetRule(ctx context.Context, id string) (core.RecurrenceRule, error) {
	row := r.db.QueryRowContext(ctx, ruleSelect+` WHERE id = ?`, id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurrenceRule{}, ErrNotFound
	}
	if err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("get rule: %w", err)
	}
	return rule, nil
}

// ListActiveRules returns all rules still in the active set.
func (r *SQLiteRepository) ListActiveRules(ctx context.Context) ([]core.RecurrenceRule, error) {
	rows, err := r.db.QueryContext(ctx, ruleSelect+` WHERE active = 1 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	defer rows.Close()

	var rules []core.RecurrenceRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// AdvanceRuleCursor moves a rule's last-materialized date forward. The
// cursor is only ever advanced; a stale write is ignored.
func (r *SQLiteRepository) AdvanceRuleCursor(ctx context.Context, id string, last core.Date) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE recurrence_rules
		SET last_materialized = ?
		WHERE id = ? AND (last_materialized IS NULL OR last_materialized < ?)`,
		last.String(), id, last.String())
	if err != nil {
		return fmt.Errorf("advance rule cursor: %w", err)
	}
	return nil
}

// DeactivateRule removes a rule from the active set. Exhaustion is
// permanent: the row stays for audit but no catch-up run sees it again.
func (r *SQLiteRepository) DeactivateRule(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurrence_rules SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Recurring rule deactivated", "id", id)
	return nil
}

// MonthOverview computes the month total and the per-primary-category
// sums for non-deleted transactions.
func (r *SQLiteRepository) MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error) {
	overview := core.MonthOverview{Year: year, Month: month}

	start := core.NewDate(year, month, 1)
	end := core.NewDate(year, month+1, 1).AddDays(-1)

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE deleted = 0 AND date BETWEEN ? AND ?`,
		start.String(), end.String()).Scan(&overview.Total.Cents)
	if err != nil {
		return overview, fmt.Errorf("get month total: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT primary_category, SUM(amount_cents)
		FROM transactions
		WHERE deleted = 0 AND date BETWEEN ? AND ?
		GROUP BY primary_category
		ORDER BY SUM(amount_cents) DESC`,
		start.String(), end.String())
	if err != nil {
		return overview, fmt.Errorf("get category sums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return overview, fmt.Errorf("scan category sum: %w", err)
		}
		overview.ByCategory = append(overview.ByCategory, ca)
	}

	return overview, rows.Err()
}

// AccountBalances sums non-deleted transactions per account.
func (r *SQLiteRepository) AccountBalances(ctx context.Context) ([]core.AccountBalance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account, SUM(amount_cents)
		FROM transactions
		WHERE deleted = 0
		GROUP BY account
		ORDER BY account`)
	if err != nil {
		return nil, fmt.Errorf("get account balances: %w", err)
	}
	defer rows.Close()

	var balances []core.AccountBalance
	for rows.Next() {
		var b core.AccountBalance
		if err := rows.Scan(&b.Account, &b.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan account balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

const ruleSelect = `
	SELECT id, cadence, interval, weekday_mask, month_anchor, anchor_date,
	       termination_kind, end_date, max_occurrences, last_materialized,
	       description, amount_cents, account, primary_category, secondary_category
	FROM recurrence_rules`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (core.RecurrenceRule, error) {
	var (
		rule                     core.RecurrenceRule
		cadence, anchor, kind    string
		monthAnchor              string
		weekdayMask              int
		endDate, lastMaterialized sql.NullString
		maxOccurrences           sql.NullInt64
	)

	err := row.Scan(&rule.ID, &cadence, &rule.Interval, &weekdayMask, &monthAnchor, &anchor,
		&kind, &endDate, &maxOccurrences, &lastMaterialized,
		&rule.Description, &rule.Amount.Cents, &rule.Account, &rule.Primary, &rule.Secondary)
	if err != nil {
		return core.RecurrenceRule{}, err
	}

	rule.Cadence = core.Cadence(cadence)
	rule.Weekdays = core.WeekdaySet(weekdayMask)
	rule.MonthAnchor = core.MonthAnchor(monthAnchor)
	rule.Termination.Kind = core.TerminationKind(kind)
	if maxOccurrences.Valid {
		rule.Termination.MaxOccurrences = int(maxOccurrences.Int64)
	}

	if rule.AnchorDate, err = core.ParseDate(anchor); err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("rule %s anchor date: %w", rule.ID, err)
	}
	if endDate.Valid && endDate.String != "" {
		if rule.Termination.EndDate, err = core.ParseDate(endDate.String); err != nil {
			return core.RecurrenceRule{}, fmt.Errorf("rule %s end date: %w", rule.ID, err)
		}
	}
	if lastMaterialized.Valid && lastMaterialized.String != "" {
		if rule.LastMaterialized, err = core.ParseDate(lastMaterialized.String); err != nil {
			return core.RecurrenceRule{}, fmt.Errorf("rule %s last materialized: %w", rule.ID, err)
		}
	}

	return rule, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var transactions []core.Transaction
	for rows.Next() {
		var (
			t          core.Transaction
			date       string
			sourceRule sql.NullString
		)
		err := rows.Scan(&t.ID, &date, &t.Description, &t.Amount.Cents,
			&t.Account, &t.Primary, &t.Secondary, &sourceRule)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %s date: %w", t.ID, err)
		}
		t.SourceRuleID = sourceRule.String
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
