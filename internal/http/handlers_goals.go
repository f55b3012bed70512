package http

import (
	"net/http"

	"github.com/google/uuid"

	"finanzas/internal/core"
)

type goalRequest struct {
	Name       string `json:"name"`
	Target     string `json:"target"`
	Saved      string `json:"saved"`
	TargetDate string `json:"target_date,omitempty"`
	Category   string `json:"category,omitempty"`
}

type goalResponse struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Target     moneyResponse `json:"target"`
	Saved      moneyResponse `json:"saved"`
	Progress   int           `json:"progress"`
	TargetDate string        `json:"target_date,omitempty"`
	Category   string        `json:"category,omitempty"`
}

func toGoalResponse(g core.Goal) goalResponse {
	out := goalResponse{
		ID:       g.ID,
		Name:     g.Name,
		Target:   toMoneyResponse(g.Target),
		Saved:    toMoneyResponse(g.Saved),
		Progress: g.Progress(),
		Category: g.Category,
	}
	if !g.TargetDate.IsZero() {
		out.TargetDate = g.TargetDate.Format("2006-01-02")
	}
	return out
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	goals, err := s.store.ListGoals(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveGoal(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	target, err := parseAmount(req.Target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goal := core.Goal{
		ID:       r.PathValue("id"),
		Name:     sanitizeInput(req.Name),
		Target:   target,
		Category: sanitizeInput(req.Category),
		OwnerID:  owner,
	}
	if req.Saved != "" {
		saved, err := parseAmount(req.Saved)
		if err != nil {
			writeError(w, r, err)
			return
		}
		goal.Saved = saved
	}
	if req.TargetDate != "" {
		date, err := parseDate(req.TargetDate)
		if err != nil {
			writeError(w, r, core.ErrInvalidDate)
			return
		}
		goal.TargetDate = date
	}
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	if err := goal.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	// On edit the row must already exist.
	if r.Method == http.MethodPut {
		if _, err := s.store.GetGoal(r.Context(), owner, goal.ID); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := s.store.UpsertGoal(r.Context(), goal); err != nil {
		writeError(w, r, &core.PersistenceError{Table: "goals", Key: goal.ID, Err: err})
		return
	}

	status := http.StatusCreated
	if r.Method == http.MethodPut {
		status = http.StatusOK
	}
	writeJSON(w, status, toGoalResponse(goal))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	if err := s.store.DeleteGoal(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
