// Package storage is the SQLite adapter of the store ports, backed by
// modernc.org/sqlite with schema migrations embedded in the binary.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ store.Store      = (*SQLiteRepository)(nil)
	_ store.UnitOfWork = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// WithinTx implements store.UnitOfWork. All store calls made through the
// handle passed to fn run in a single SQLite transaction: the ledger
// mutator uses this so the transaction row and the balance writes commit
// together.
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(s store.Store) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txRepo := &SQLiteRepository{db: r.db, queries: r.queries.WithTx(tx)}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// mapNotFound converts driver-level miss signals into store.ErrNotFound.
func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func affectedOrNotFound(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Accounts

func (r *SQLiteRepository) UpsertAccount(ctx context.Context, a core.Account) error {
	n, err := r.queries.UpsertAccount(ctx, a)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	// Zero rows means the id belongs to another owner.
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, owner, id string) (core.Account, error) {
	a, err := r.queries.GetAccount(ctx, owner, id)
	if err != nil {
		return core.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, owner string) ([]core.Account, error) {
	accounts, err := r.queries.ListAccounts(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (r *SQLiteRepository) UpdateAccountBalance(ctx context.Context, owner, id string, balance core.Money) error {
	return affectedOrNotFound(r.queries.UpdateAccountBalance(ctx, owner, id, balance.Cents))
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, owner, id string) error {
	return affectedOrNotFound(r.queries.DeleteAccount(ctx, owner, id))
}

// Transactions

func (r *SQLiteRepository) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	n, err := r.queries.UpsertTransaction(ctx, t)
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, owner, id string) (core.Transaction, error) {
	t, err := r.queries.GetTransaction(ctx, owner, id)
	if err != nil {
		return core.Transaction{}, mapNotFound(err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, owner string) ([]core.Transaction, error) {
	txs, err := r.queries.ListTransactions(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, owner, id string) error {
	return affectedOrNotFound(r.queries.DeleteTransaction(ctx, owner, id))
}

func (r *SQLiteRepository) PendingMirror(ctx context.Context, limit int) ([]core.Transaction, error) {
	txs, err := r.queries.PendingMirror(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("pending mirror transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id string) error {
	return affectedOrNotFound(r.queries.MarkMirrored(ctx, id))
}

// Budgets

func (r *SQLiteRepository) PutBudget(ctx context.Context, b core.Budget) error {
	if err := r.queries.PutBudget(ctx, b); err != nil {
		return fmt.Errorf("put budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, owner string) ([]core.Budget, error) {
	budgets, err := r.queries.ListBudgets(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, owner, categoryID, month string) error {
	return affectedOrNotFound(r.queries.DeleteBudget(ctx, owner, categoryID, month))
}

// Goals

func (r *SQLiteRepository) UpsertGoal(ctx context.Context, g core.Goal) error {
	n, err := r.queries.UpsertGoal(ctx, g)
	if err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, owner, id string) (core.Goal, error) {
	g, err := r.queries.GetGoal(ctx, owner, id)
	if err != nil {
		return core.Goal{}, mapNotFound(err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, owner string) ([]core.Goal, error) {
	goals, err := r.queries.ListGoals(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, owner, id string) error {
	return affectedOrNotFound(r.queries.DeleteGoal(ctx, owner, id))
}

// Categories

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Shopping lists

func (r *SQLiteRepository) UpsertShoppingList(ctx context.Context, l core.ShoppingList) error {
	n, err := r.queries.UpsertShoppingList(ctx, l)
	if err != nil {
		return fmt.Errorf("upsert shopping list: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListShoppingLists(ctx context.Context, owner string) ([]core.ShoppingList, error) {
	lists, err := r.queries.ListShoppingLists(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list shopping lists: %w", err)
	}
	return lists, nil
}

func (r *SQLiteRepository) DeleteShoppingList(ctx context.Context, owner, id string) error {
	return affectedOrNotFound(r.queries.DeleteShoppingList(ctx, owner, id))
}

func (r *SQLiteRepository) UpsertShoppingItem(ctx context.Context, i core.ShoppingItem) error {
	n, err := r.queries.UpsertShoppingItem(ctx, i)
	if err != nil {
		return fmt.Errorf("upsert shopping item: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListShoppingItems(ctx context.Context, owner, listID string) ([]core.ShoppingItem, error) {
	items, err := r.queries.ListShoppingItems(ctx, owner, listID)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) DeleteShoppingItem(ctx context.Context, owner, listID, id string) error {
	return affectedOrNotFound(r.queries.DeleteShoppingItem(ctx, owner, listID, id))
}

// Calendar events

func (r *SQLiteRepository) UpsertEvent(ctx context.Context, e core.CalendarEvent) error {
	n, err := r.queries.UpsertEvent(ctx, e)
	if err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListEvents(ctx context.Context, owner string) ([]core.CalendarEvent, error) {
	events, err := r.queries.ListEvents(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *SQLiteRepository) DeleteEvent(ctx context.Context, owner, id string) error {
	return affectedOrNotFound(r.queries.DeleteEvent(ctx, owner, id))
}

func (r *SQLiteRepository) DueReminders(ctx context.Context, now time.Time, limit int) ([]core.CalendarEvent, error) {
	events, err := r.queries.DueReminders(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}
	return events, nil
}

func (r *SQLiteRepository) MarkNotified(ctx context.Context, id string) error {
	return affectedOrNotFound(r.queries.MarkNotified(ctx, id))
}
