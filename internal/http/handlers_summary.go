package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(r.PathValue("year"), r.PathValue("month"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	key := summaryKey(year, month)
	if cached, found := s.summaryCache.Get(key); found {
		respondJSON(w, http.StatusOK, toSummaryResponse(cached))
		return
	}

	overview, err := s.store.MonthOverview(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute month overview", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	s.summaryCache.Set(key, overview)
	respondJSON(w, http.StatusOK, toSummaryResponse(overview))
}

func (s *Server) handleAccountBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.store.AccountBalances(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute account balances", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute balances")
		return
	}

	resp := make([]accountBalance, 0, len(balances))
	for _, b := range balances {
		resp = append(resp, accountBalance{Account: b.Account, Total: b.Total.Euros()})
	}
	respondJSON(w, http.StatusOK, resp)
}
