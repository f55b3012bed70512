// Package store defines the persistence ports of the tracker. Every read
// and write is scoped to the owning user; adapters must never return or
// touch rows of another owner. That includes upserts: an id that already
// exists under a different owner is rejected with ErrNotFound, never
// overwritten or silently dropped.
package store

import (
	"context"
	"errors"
	"time"

	"finanzas/internal/core"
)

// ErrNotFound is returned by Get operations when no row matches.
var ErrNotFound = errors.New("not found")

type (
	AccountStore interface {
		UpsertAccount(ctx context.Context, a core.Account) error
		GetAccount(ctx context.Context, owner, id string) (core.Account, error)
		ListAccounts(ctx context.Context, owner string) ([]core.Account, error)
		// UpdateAccountBalance patches only the balance field, the write
		// performed by the ledger mutator and the reversal engine.
		UpdateAccountBalance(ctx context.Context, owner, id string, balance core.Money) error
		DeleteAccount(ctx context.Context, owner, id string) error
	}

	TransactionStore interface {
		UpsertTransaction(ctx context.Context, t core.Transaction) error
		GetTransaction(ctx context.Context, owner, id string) (core.Transaction, error)
		ListTransactions(ctx context.Context, owner string) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, owner, id string) error
		// PendingMirror returns transactions not yet exported to the
		// spreadsheet mirror, oldest first.
		PendingMirror(ctx context.Context, limit int) ([]core.Transaction, error)
		MarkMirrored(ctx context.Context, id string) error
	}

	BudgetStore interface {
		PutBudget(ctx context.Context, b core.Budget) error
		ListBudgets(ctx context.Context, owner string) ([]core.Budget, error)
		DeleteBudget(ctx context.Context, owner, categoryID, month string) error
	}

	GoalStore interface {
		UpsertGoal(ctx context.Context, g core.Goal) error
		GetGoal(ctx context.Context, owner, id string) (core.Goal, error)
		ListGoals(ctx context.Context, owner string) ([]core.Goal, error)
		DeleteGoal(ctx context.Context, owner, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	ShoppingStore interface {
		UpsertShoppingList(ctx context.Context, l core.ShoppingList) error
		ListShoppingLists(ctx context.Context, owner string) ([]core.ShoppingList, error)
		DeleteShoppingList(ctx context.Context, owner, id string) error
		UpsertShoppingItem(ctx context.Context, i core.ShoppingItem) error
		ListShoppingItems(ctx context.Context, owner, listID string) ([]core.ShoppingItem, error)
		DeleteShoppingItem(ctx context.Context, owner, listID, id string) error
	}

	EventStore interface {
		UpsertEvent(ctx context.Context, e core.CalendarEvent) error
		ListEvents(ctx context.Context, owner string) ([]core.CalendarEvent, error)
		DeleteEvent(ctx context.Context, owner, id string) error
		// DueReminders returns events across all owners whose reminder
		// time has passed and that have not been notified yet.
		DueReminders(ctx context.Context, now time.Time, limit int) ([]core.CalendarEvent, error)
		MarkNotified(ctx context.Context, id string) error
	}
)

// Store bundles all entity stores behind one handle.
type Store interface {
	AccountStore
	TransactionStore
	BudgetStore
	GoalStore
	CategoryStore
	ShoppingStore
	EventStore
	Close() error
}

// UnitOfWork is implemented by adapters that can run a sequence of writes
// atomically. The ledger service uses it when available so the transaction
// row and the balance writes commit or roll back together; adapters without
// it keep the sequenced, non-atomic behavior.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(s Store) error) error
}
