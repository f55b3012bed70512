package http

import (
	"net/http"

	"finanzas/internal/core"
)

type accountRequest struct {
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Balance string `json:"balance"`
}

type accountResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	Type         string `json:"type"`
	Subtype      string `json:"subtype,omitempty"`
	Balance      string `json:"balance"`
	BalanceCents int64  `json:"balance_cents"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:           a.ID,
		Name:         a.Name,
		Icon:         a.Icon,
		Type:         string(a.Type),
		Subtype:      a.Subtype,
		Balance:      a.Balance.Decimal(),
		BalanceCents: a.Balance.Cents,
	}
}

// handleListAccounts returns the owner's accounts, seeding the starter set
// on first contact so a new user never sees an empty wallet.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if err := s.accounts.EnsureDefaults(r.Context(), owner); err != nil {
		writeError(w, r, err)
		return
	}
	accounts, err := s.accounts.ListAccounts(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveAccount(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)

	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	account := core.Account{
		ID:      r.PathValue("id"),
		Name:    sanitizeInput(req.Name),
		Icon:    sanitizeInput(req.Icon),
		Type:    core.AccountType(req.Type),
		Subtype: sanitizeInput(req.Subtype),
	}
	if req.Balance != "" {
		balance, err := parseSignedAmount(req.Balance)
		if err != nil {
			writeError(w, r, err)
			return
		}
		account.Balance = balance
	}

	saved, err := s.accounts.SaveAccount(r.Context(), owner, account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries(owner)

	status := http.StatusCreated
	if r.Method == http.MethodPut {
		status = http.StatusOK
	}
	writeJSON(w, status, toAccountResponse(saved))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if err := s.accounts.DeleteAccount(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries(owner)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if ownerID(r) == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	type categoryResponse struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Icon string `json:"icon,omitempty"`
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Icon: c.Icon})
	}
	writeJSON(w, http.StatusOK, out)
}
