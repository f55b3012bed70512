package http

import (
	"net/http"
	"time"

	"finanzas/internal/core"
)

type transactionRequest struct {
	Date          string `json:"date"`
	Description   string `json:"description"`
	CategoryID    string `json:"category_id"`
	AccountID     string `json:"account_id"`
	DestinationID string `json:"destination_id,omitempty"`
	Amount        string `json:"amount"`
	Kind          string `json:"kind"`
}

type transactionResponse struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Description   string `json:"description"`
	CategoryID    string `json:"category_id"`
	AccountID     string `json:"account_id"`
	DestinationID string `json:"destination_id,omitempty"`
	Amount        string `json:"amount"`
	AmountCents   int64  `json:"amount_cents"`
	Kind          string `json:"kind"`
	CreatedAt     string `json:"created_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		Date:          t.Date.Format("2006-01-02"),
		Description:   t.Description,
		CategoryID:    t.CategoryID,
		AccountID:     t.AccountID,
		DestinationID: t.DestinationID,
		Amount:        t.Amount.Decimal(),
		AmountCents:   t.Amount.Cents,
		Kind:          string(t.Kind),
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	txs, err := s.store.ListTransactions(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSaveTransaction records a new transaction (POST) or re-records an
// existing one (PUT), applying the balance effect through the ledger.
func (s *Server) handleSaveTransaction(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, core.ErrInvalidDate)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	draft := core.Transaction{
		ID:            r.PathValue("id"),
		Date:          date,
		Description:   sanitizeInput(req.Description),
		CategoryID:    sanitizeInput(req.CategoryID),
		AccountID:     sanitizeInput(req.AccountID),
		DestinationID: sanitizeInput(req.DestinationID),
		Amount:        amount,
		Kind:          core.TransactionKind(req.Kind),
	}

	recorded, err := s.ledger.CreateTransaction(r.Context(), owner, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries(owner)

	status := http.StatusCreated
	if r.Method == http.MethodPut {
		status = http.StatusOK
	}
	writeJSON(w, status, toTransactionResponse(recorded))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if err := s.ledger.DeleteTransaction(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries(owner)
	writeJSON(w, http.StatusNoContent, nil)
}
