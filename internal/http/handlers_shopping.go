package http

import (
	"net/http"

	"github.com/google/uuid"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

type shoppingListRequest struct {
	Name string `json:"name"`
}

type shoppingListResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type shoppingItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Done     bool   `json:"done"`
}

type shoppingItemResponse struct {
	ID       string `json:"id"`
	ListID   string `json:"list_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Done     bool   `json:"done"`
}

func (s *Server) handleListShoppingLists(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	lists, err := s.store.ListShoppingLists(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]shoppingListResponse, 0, len(lists))
	for _, l := range lists {
		out = append(out, shoppingListResponse{ID: l.ID, Name: l.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveShoppingList(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}

	var req shoppingListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	list := core.ShoppingList{
		ID:      uuid.NewString(),
		Name:    sanitizeInput(req.Name),
		OwnerID: owner,
	}
	if err := list.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.UpsertShoppingList(r.Context(), list); err != nil {
		writeError(w, r, &core.PersistenceError{Table: "shopping_lists", Key: list.ID, Err: err})
		return
	}
	writeJSON(w, http.StatusCreated, shoppingListResponse{ID: list.ID, Name: list.Name})
}

// handleDeleteShoppingList removes a list and its items.
func (s *Server) handleDeleteShoppingList(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	if err := s.store.DeleteShoppingList(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListShoppingItems(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	items, err := s.store.ListShoppingItems(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]shoppingItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, shoppingItemResponse{ID: i.ID, ListID: i.ListID, Name: i.Name, Quantity: i.Quantity, Done: i.Done})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveShoppingItem(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}

	// Items only attach to a list the caller owns.
	listID := r.PathValue("id")
	owns, err := s.ownsShoppingList(r, owner, listID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !owns {
		writeError(w, r, store.ErrNotFound)
		return
	}

	var req shoppingItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	item := core.ShoppingItem{
		ID:       r.PathValue("itemID"),
		ListID:   listID,
		Name:     sanitizeInput(req.Name),
		Quantity: req.Quantity,
		Done:     req.Done,
		OwnerID:  owner,
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if err := item.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.UpsertShoppingItem(r.Context(), item); err != nil {
		writeError(w, r, &core.PersistenceError{Table: "shopping_items", Key: item.ID, Err: err})
		return
	}

	status := http.StatusCreated
	if r.Method == http.MethodPut {
		status = http.StatusOK
	}
	writeJSON(w, status, shoppingItemResponse{ID: item.ID, ListID: item.ListID, Name: item.Name, Quantity: item.Quantity, Done: item.Done})
}

func (s *Server) ownsShoppingList(r *http.Request, owner, listID string) (bool, error) {
	lists, err := s.store.ListShoppingLists(r.Context(), owner)
	if err != nil {
		return false, err
	}
	for _, l := range lists {
		if l.ID == listID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Server) handleDeleteShoppingItem(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	if err := s.store.DeleteShoppingItem(r.Context(), owner, r.PathValue("id"), r.PathValue("itemID")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
