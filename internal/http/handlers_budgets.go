package http

import (
	"net/http"

	"finanzas/internal/core"
)

type budgetRequest struct {
	CategoryID string `json:"category_id"`
	Month      string `json:"month"`
	Target     string `json:"target"`
}

type budgetResponse struct {
	CategoryID string        `json:"category_id"`
	Month      string        `json:"month"`
	Target     moneyResponse `json:"target"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	budgets, err := s.store.ListBudgets(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetResponse{CategoryID: b.CategoryID, Month: b.Month, Target: toMoneyResponse(b.Target)})
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePutBudget creates or replaces the cap for one category and month.
// The (owner, category, month) triple is the identity, so a repeated PUT
// overwrites the target instead of stacking a second budget.
func (s *Server) handlePutBudget(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	target, err := parseAmount(req.Target)
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget := core.Budget{
		CategoryID: sanitizeInput(req.CategoryID),
		Month:      sanitizeInput(req.Month),
		Target:     target,
		OwnerID:    owner,
	}
	if err := budget.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.PutBudget(r.Context(), budget); err != nil {
		writeError(w, r, &core.PersistenceError{Table: "budgets", Key: budget.CategoryID + "/" + budget.Month, Err: err})
		return
	}
	s.invalidateSummaries(owner)
	writeJSON(w, http.StatusOK, budgetResponse{CategoryID: budget.CategoryID, Month: budget.Month, Target: toMoneyResponse(budget.Target)})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	if err := s.store.DeleteBudget(r.Context(), owner, r.PathValue("categoryID"), r.PathValue("month")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries(owner)
	writeJSON(w, http.StatusNoContent, nil)
}
