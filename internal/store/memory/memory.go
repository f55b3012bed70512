// Package memory is an in-memory store adapter, used as the default backend
// for local development and as the fake in service and handler tests. It
// mirrors the hosted-store behavior of the SQLite adapter, including owner
// scoping, but offers no unit of work: writes are applied one at a time.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

type Store struct {
	mu         sync.Mutex
	accounts   map[string]core.Account     // id -> account
	txs        map[string]core.Transaction // id -> transaction
	budgets    map[string]core.Budget      // owner/category/month -> budget
	goals      map[string]core.Goal
	categories []core.Category
	lists      map[string]core.ShoppingList
	items      map[string]core.ShoppingItem
	events     map[string]core.CalendarEvent
	mirrored   map[string]bool // transaction id -> exported to mirror
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts: map[string]core.Account{},
		txs:      map[string]core.Transaction{},
		budgets:  map[string]core.Budget{},
		goals:    map[string]core.Goal{},
		lists:    map[string]core.ShoppingList{},
		items:    map[string]core.ShoppingItem{},
		events:   map[string]core.CalendarEvent{},
		mirrored: map[string]bool{},
		categories: []core.Category{
			{ID: "food", Name: "Alimentación", Icon: "🍽️"},
			{ID: "transport", Name: "Transporte", Icon: "🚌"},
			{ID: "home", Name: "Hogar", Icon: "🏠"},
			{ID: "health", Name: "Salud", Icon: "💊"},
			{ID: "leisure", Name: "Ocio", Icon: "🎬"},
			{ID: "salary", Name: "Salario", Icon: "💼"},
			{ID: "other", Name: "Otros", Icon: "📦"},
		},
	}
}

func (s *Store) Close() error { return nil }

// Accounts

func (s *Store) UpsertAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.accounts[a.ID]; ok && prev.OwnerID != a.OwnerID {
		return store.ErrNotFound
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *Store) GetAccount(_ context.Context, owner, id string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.OwnerID != owner {
		return core.Account{}, store.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context, owner string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, a := range s.accounts {
		if a.OwnerID == owner {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateAccountBalance(_ context.Context, owner, id string, balance core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.OwnerID != owner {
		return store.ErrNotFound
	}
	a.Balance = balance
	s.accounts[id] = a
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.OwnerID != owner {
		return store.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

// Transactions

func (s *Store) UpsertTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.txs[t.ID]; ok && prev.OwnerID != t.OwnerID {
		return store.ErrNotFound
	}
	s.txs[t.ID] = t
	s.mirrored[t.ID] = false
	return nil
}

func (s *Store) GetTransaction(_ context.Context, owner, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok || t.OwnerID != owner {
		return core.Transaction{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, owner string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.txs {
		if t.OwnerID == owner {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteTransaction(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok || t.OwnerID != owner {
		return store.ErrNotFound
	}
	delete(s.txs, id)
	delete(s.mirrored, id)
	return nil
}

func (s *Store) PendingMirror(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for id, done := range s.mirrored {
		if done {
			continue
		}
		if t, ok := s.txs[id]; ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkMirrored(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return store.ErrNotFound
	}
	s.mirrored[id] = true
	return nil
}

// Budgets

func budgetKey(owner, category, month string) string {
	return owner + "/" + category + "/" + month
}

func (s *Store) PutBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[budgetKey(b.OwnerID, b.CategoryID, b.Month)] = b
	return nil
}

func (s *Store) ListBudgets(_ context.Context, owner string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.OwnerID == owner {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out, nil
}

func (s *Store) DeleteBudget(_ context.Context, owner, categoryID, month string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := budgetKey(owner, categoryID, month)
	if _, ok := s.budgets[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.budgets, key)
	return nil
}

// Goals

func (s *Store) UpsertGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.goals[g.ID]; ok && prev.OwnerID != g.OwnerID {
		return store.ErrNotFound
	}
	s.goals[g.ID] = g
	return nil
}

func (s *Store) GetGoal(_ context.Context, owner, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != owner {
		return core.Goal{}, store.ErrNotFound
	}
	return g, nil
}

func (s *Store) ListGoals(_ context.Context, owner string) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Goal
	for _, g := range s.goals {
		if g.OwnerID == owner {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteGoal(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != owner {
		return store.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

// Categories

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

// Shopping lists

func (s *Store) UpsertShoppingList(_ context.Context, l core.ShoppingList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.lists[l.ID]; ok && prev.OwnerID != l.OwnerID {
		return store.ErrNotFound
	}
	s.lists[l.ID] = l
	return nil
}

func (s *Store) ListShoppingLists(_ context.Context, owner string) ([]core.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ShoppingList
	for _, l := range s.lists {
		if l.OwnerID == owner {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteShoppingList(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[id]
	if !ok || l.OwnerID != owner {
		return store.ErrNotFound
	}
	delete(s.lists, id)
	for itemID, item := range s.items {
		if item.ListID == id {
			delete(s.items, itemID)
		}
	}
	return nil
}

func (s *Store) UpsertShoppingItem(_ context.Context, i core.ShoppingItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.items[i.ID]; ok && prev.OwnerID != i.OwnerID {
		return store.ErrNotFound
	}
	s.items[i.ID] = i
	return nil
}

func (s *Store) ListShoppingItems(_ context.Context, owner, listID string) ([]core.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ShoppingItem
	for _, i := range s.items {
		if i.OwnerID == owner && i.ListID == listID {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteShoppingItem(_ context.Context, owner, listID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.items[id]
	if !ok || i.OwnerID != owner || i.ListID != listID {
		return store.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Calendar events

func (s *Store) UpsertEvent(_ context.Context, e core.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.events[e.ID]; ok && prev.OwnerID != e.OwnerID {
		return store.ErrNotFound
	}
	s.events[e.ID] = e
	return nil
}

func (s *Store) ListEvents(_ context.Context, owner string) ([]core.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.CalendarEvent
	for _, e := range s.events {
		if e.OwnerID == owner {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *Store) DeleteEvent(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.OwnerID != owner {
		return store.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *Store) DueReminders(_ context.Context, now time.Time, limit int) ([]core.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.CalendarEvent
	for _, e := range s.events {
		if e.Notified || e.ReminderAt.IsZero() || e.ReminderAt.After(now) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReminderAt.Before(out[j].ReminderAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkNotified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return store.ErrNotFound
	}
	e.Notified = true
	s.events[id] = e
	return nil
}
