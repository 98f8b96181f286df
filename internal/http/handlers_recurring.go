package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/storage"
)

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rule, err := req.toRule()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rule.ID = uuid.NewString()

	if err := rule.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.CreateRule(r.Context(), rule); err != nil {
		slog.ErrorContext(r.Context(), "Failed to create rule",
			applog.FieldRuleID, rule.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create rule")
		return
	}

	respondJSON(w, http.StatusCreated, toRuleResponse(rule))
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.ListActiveRules(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list rules", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list rules")
		return
	}

	resp := make([]ruleResponse, 0, len(rules))
	for _, rule := range rules {
		resp = append(resp, toRuleResponse(rule))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing rule id")
		return
	}

	if err := s.store.DeactivateRule(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "rule not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to deactivate rule",
			applog.FieldRuleID, id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete rule")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleCatchUp triggers an immediate materialization run, the same
// work the background worker does on its ticker.
func (s *Server) handleCatchUp(w http.ResponseWriter, r *http.Request) {
	created, err := s.catchup.Run(r.Context(), time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Catch-up run failed", "error", err)
		respondError(w, http.StatusInternalServerError, "catch-up run failed")
		return
	}

	if created > 0 {
		s.invalidateSummaries()
	}
	respondJSON(w, http.StatusOK, catchUpResponse{Materialized: created})
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	start, err := core.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	end, err := core.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid end date")
		return
	}
	if end.Before(start.Time) {
		respondError(w, http.StatusBadRequest, "end date before start date")
		return
	}

	count, err := s.reporter.CountOccurrencesInWindow(r.Context(), id, start, end)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "rule not found")
			return
		}
		slog.ErrorContext(r.Context(), "Projection failed",
			applog.FieldRuleID, id, "error", err)
		respondError(w, http.StatusInternalServerError, "projection failed")
		return
	}

	respondJSON(w, http.StatusOK, projectionResponse{
		RuleID: id,
		Start:  start.String(),
		End:    end.String(),
		Count:  count,
	})
}
