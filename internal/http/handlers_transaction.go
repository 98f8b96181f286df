package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"bilancio/internal/storage"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := req.toTransaction()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	s.invalidateSummaries()
	respondJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(r.URL.Query().Get("year"), r.URL.Query().Get("month"))
	if !ok {
		respondError(w, http.StatusBadRequest, "year and month query parameters are required")
		return
	}

	list, err := s.store.ListTransactionsByMonth(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	resp := make([]transactionResponse, 0, len(list))
	for _, t := range list {
		resp = append(resp, toTransactionResponse(t))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	if err := s.transactions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

func parseYearMonth(yearStr, monthStr string) (int, int, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1970 || year > 9999 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}
