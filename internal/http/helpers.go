package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bilancio/internal/core"
)

// API payloads. Core types carry no json tags, so the wire shapes
// live here and convert at the edge.

type transactionRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Account     string `json:"account"`
	Primary     string `json:"primary_category"`
	Secondary   string `json:"secondary_category"`
}

type transactionResponse struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	AmountCents  int64   `json:"amount_cents"`
	Account      string  `json:"account"`
	Primary      string  `json:"primary_category"`
	Secondary    string  `json:"secondary_category"`
	SourceRuleID string  `json:"source_rule_id,omitempty"`
}

type ruleRequest struct {
	Cadence        string   `json:"cadence"`
	Interval       int      `json:"interval"`
	Weekdays       []string `json:"weekdays,omitempty"`
	MonthAnchor    string   `json:"month_anchor,omitempty"`
	AnchorDate     string   `json:"anchor_date"`
	Termination    string   `json:"termination"`
	EndDate        string   `json:"end_date,omitempty"`
	MaxOccurrences int      `json:"max_occurrences,omitempty"`

	Description string `json:"description"`
	Amount      string `json:"amount"`
	Account     string `json:"account"`
	Primary     string `json:"primary_category"`
	Secondary   string `json:"secondary_category"`
}

type ruleResponse struct {
	ID               string   `json:"id"`
	Cadence          string   `json:"cadence"`
	Interval         int      `json:"interval"`
	Weekdays         []string `json:"weekdays,omitempty"`
	MonthAnchor      string   `json:"month_anchor,omitempty"`
	AnchorDate       string   `json:"anchor_date"`
	Termination      string   `json:"termination"`
	EndDate          string   `json:"end_date,omitempty"`
	MaxOccurrences   int      `json:"max_occurrences,omitempty"`
	LastMaterialized string   `json:"last_materialized,omitempty"`

	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Account     string  `json:"account"`
	Primary     string  `json:"primary_category"`
	Secondary   string  `json:"secondary_category"`
}

type catchUpResponse struct {
	Materialized int `json:"materialized"`
}

type projectionResponse struct {
	RuleID string `json:"rule_id"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Count  int    `json:"count"`
}

type summaryResponse struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"`
	Total      float64          `json:"total"`
	TotalCents int64            `json:"total_cents"`
	ByCategory []categoryAmount `json:"by_category"`
}

type categoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type accountBalance struct {
	Account string  `json:"account"`
	Total   float64 `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

var weekdayLabels = [7]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

func parseWeekdays(names []string) (core.WeekdaySet, error) {
	var days []time.Weekday
	for _, n := range names {
		d, ok := weekdayNames[n]
		if !ok {
			return 0, fmt.Errorf("unknown weekday: %q", n)
		}
		days = append(days, d)
	}
	return core.NewWeekdaySet(days...), nil
}

func weekdaysToNames(set core.WeekdaySet) []string {
	var names []string
	for _, d := range set.Weekdays() {
		names = append(names, weekdayLabels[int(d)])
	}
	return names
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Date:        date,
		Description: req.Description,
		Amount:      core.Money{Cents: amount},
		Account:     req.Account,
		Primary:     req.Primary,
		Secondary:   req.Secondary,
	}, nil
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		Date:         t.Date.String(),
		Description:  t.Description,
		Amount:       t.Amount.Euros(),
		AmountCents:  t.Amount.Cents,
		Account:      t.Account,
		Primary:      t.Primary,
		Secondary:    t.Secondary,
		SourceRuleID: t.SourceRuleID,
	}
}

func (req ruleRequest) toRule() (core.RecurrenceRule, error) {
	anchor, err := core.ParseDate(req.AnchorDate)
	if err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("anchor_date: %w", err)
	}
	amount, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.RecurrenceRule{}, err
	}

	weekdays, err := parseWeekdays(req.Weekdays)
	if err != nil {
		return core.RecurrenceRule{}, err
	}

	term := core.Termination{Kind: core.TerminationKind(req.Termination)}
	if req.EndDate != "" {
		end, err := core.ParseDate(req.EndDate)
		if err != nil {
			return core.RecurrenceRule{}, fmt.Errorf("end_date: %w", err)
		}
		term.EndDate = end
	}
	term.MaxOccurrences = req.MaxOccurrences

	interval := req.Interval
	if interval == 0 {
		interval = 1
	}

	return core.RecurrenceRule{
		Cadence:     core.Cadence(req.Cadence),
		Interval:    interval,
		Weekdays:    weekdays,
		MonthAnchor: core.MonthAnchor(req.MonthAnchor),
		AnchorDate:  anchor,
		Termination: term,
		Description: req.Description,
		Amount:      core.Money{Cents: amount},
		Account:     req.Account,
		Primary:     req.Primary,
		Secondary:   req.Secondary,
	}, nil
}

func toRuleResponse(rule core.RecurrenceRule) ruleResponse {
	resp := ruleResponse{
		ID:          rule.ID,
		Cadence:     string(rule.Cadence),
		Interval:    rule.Interval,
		Weekdays:    weekdaysToNames(rule.Weekdays),
		MonthAnchor: string(rule.MonthAnchor),
		AnchorDate:  rule.AnchorDate.String(),
		Termination: string(rule.Termination.Kind),
		Description: rule.Description,
		Amount:      rule.Amount.Euros(),
		Account:     rule.Account,
		Primary:     rule.Primary,
		Secondary:   rule.Secondary,
	}
	if !rule.Termination.EndDate.IsZero() {
		resp.EndDate = rule.Termination.EndDate.String()
	}
	resp.MaxOccurrences = rule.Termination.MaxOccurrences
	if !rule.LastMaterialized.IsZero() {
		resp.LastMaterialized = rule.LastMaterialized.String()
	}
	return resp
}

func toSummaryResponse(o core.MonthOverview) summaryResponse {
	resp := summaryResponse{
		Year:       o.Year,
		Month:      o.Month,
		Total:      o.Total.Euros(),
		TotalCents: o.Total.Cents,
		ByCategory: []categoryAmount{},
	}
	for _, c := range o.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryAmount{Name: c.Name, Amount: c.Amount.Euros()})
	}
	return resp
}

// isValidationError reports whether err should map to a 400 rather
// than a 500.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDate, core.ErrInvalidAmount, core.ErrEmptyDescription,
		core.ErrEmptyAccount, core.ErrEmptyPrimary, core.ErrEmptySecondary,
		core.ErrInvalidCadence, core.ErrInvalidInterval,
		core.ErrInvalidMonthAnchor, core.ErrInvalidTermination,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
