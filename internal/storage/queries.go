package storage

import (
	"context"
	"database/sql"
	"time"

	"finanzas/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every query can run
// standalone or inside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const dateLayout = "2006-01-02"

func scanDate(s string) core.Date {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}
	}
	return core.Date{Time: t}
}

// Accounts

// Upserts return the affected row count. The ON CONFLICT update clauses
// are guarded by owner_id, so an id collision with another owner's row
// affects zero rows instead of overwriting it.

func (q *Queries) UpsertAccount(ctx context.Context, a core.Account) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, icon, type, subtype, balance_cents, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			type = excluded.type,
			subtype = excluded.subtype,
			balance_cents = excluded.balance_cents
		WHERE accounts.owner_id = excluded.owner_id`,
		a.ID, a.Name, a.Icon, string(a.Type), a.Subtype, a.Balance.Cents, a.OwnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) GetAccount(ctx context.Context, owner, id string) (core.Account, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, icon, type, subtype, balance_cents, owner_id
		FROM accounts WHERE id = ? AND owner_id = ?`, id, owner)
	var a core.Account
	var typ string
	err := row.Scan(&a.ID, &a.Name, &a.Icon, &typ, &a.Subtype, &a.Balance.Cents, &a.OwnerID)
	if err != nil {
		return core.Account{}, err
	}
	a.Type = core.AccountType(typ)
	return a, nil
}

func (q *Queries) ListAccounts(ctx context.Context, owner string) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, icon, type, subtype, balance_cents, owner_id
		FROM accounts WHERE owner_id = ? ORDER BY name`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.Account
	for rows.Next() {
		var a core.Account
		var typ string
		if err := rows.Scan(&a.ID, &a.Name, &a.Icon, &typ, &a.Subtype, &a.Balance.Cents, &a.OwnerID); err != nil {
			return nil, err
		}
		a.Type = core.AccountType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateAccountBalance(ctx context.Context, owner, id string, cents int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = ? WHERE id = ? AND owner_id = ?`,
		cents, id, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteAccount(ctx context.Context, owner, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM accounts WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Transactions

func (q *Queries) UpsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, date, description, category_id, account_id, destination_id,
			 amount_cents, kind, created_at, owner_id, mirrored)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT (id) DO UPDATE SET
			date = excluded.date,
			description = excluded.description,
			category_id = excluded.category_id,
			account_id = excluded.account_id,
			destination_id = excluded.destination_id,
			amount_cents = excluded.amount_cents,
			kind = excluded.kind,
			mirrored = 0
		WHERE transactions.owner_id = excluded.owner_id`,
		t.ID, t.Date.Format(dateLayout), t.Description, t.CategoryID, t.AccountID,
		t.DestinationID, t.Amount.Cents, string(t.Kind), t.CreatedAt, t.OwnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const transactionCols = `id, date, description, category_id, account_id,
	destination_id, amount_cents, kind, created_at, owner_id`

func scanTransaction(scan func(dest ...any) error) (core.Transaction, error) {
	var t core.Transaction
	var date, kind string
	err := scan(&t.ID, &date, &t.Description, &t.CategoryID, &t.AccountID,
		&t.DestinationID, &t.Amount.Cents, &kind, &t.CreatedAt, &t.OwnerID)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date = scanDate(date)
	t.Kind = core.TransactionKind(kind)
	return t, nil
}

func (q *Queries) GetTransaction(ctx context.Context, owner, id string) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+transactionCols+`
		FROM transactions WHERE id = ? AND owner_id = ?`, id, owner)
	return scanTransaction(row.Scan)
}

func (q *Queries) ListTransactions(ctx context.Context, owner string) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+transactionCols+`
		FROM transactions WHERE owner_id = ? ORDER BY date, created_at`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteTransaction(ctx context.Context, owner, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) PendingMirror(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+transactionCols+`
		FROM transactions WHERE mirrored = 0 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *Queries) MarkMirrored(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE transactions SET mirrored = 1 WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Budgets

func (q *Queries) PutBudget(ctx context.Context, b core.Budget) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO budgets (category_id, month, target_cents, owner_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_id, category_id, month) DO UPDATE SET
			target_cents = excluded.target_cents`,
		b.CategoryID, b.Month, b.Target.Cents, b.OwnerID)
	return err
}

func (q *Queries) ListBudgets(ctx context.Context, owner string) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT category_id, month, target_cents, owner_id
		FROM budgets WHERE owner_id = ? ORDER BY month, category_id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.CategoryID, &b.Month, &b.Target.Cents, &b.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteBudget(ctx context.Context, owner, categoryID, month string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM budgets WHERE owner_id = ? AND category_id = ? AND month = ?`,
		owner, categoryID, month)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Goals

func (q *Queries) UpsertGoal(ctx context.Context, g core.Goal) (int64, error) {
	targetDate := ""
	if !g.TargetDate.IsZero() {
		targetDate = g.TargetDate.Format(dateLayout)
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO goals (id, name, target_cents, saved_cents, target_date, category, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			target_cents = excluded.target_cents,
			saved_cents = excluded.saved_cents,
			target_date = excluded.target_date,
			category = excluded.category
		WHERE goals.owner_id = excluded.owner_id`,
		g.ID, g.Name, g.Target.Cents, g.Saved.Cents, targetDate, g.Category, g.OwnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanGoal(scan func(dest ...any) error) (core.Goal, error) {
	var g core.Goal
	var targetDate string
	err := scan(&g.ID, &g.Name, &g.Target.Cents, &g.Saved.Cents, &targetDate, &g.Category, &g.OwnerID)
	if err != nil {
		return core.Goal{}, err
	}
	if targetDate != "" {
		g.TargetDate = scanDate(targetDate)
	}
	return g, nil
}

func (q *Queries) GetGoal(ctx context.Context, owner, id string) (core.Goal, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, target_cents, saved_cents, target_date, category, owner_id
		FROM goals WHERE id = ? AND owner_id = ?`, id, owner)
	return scanGoal(row.Scan)
}

func (q *Queries) ListGoals(ctx context.Context, owner string) ([]core.Goal, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, target_cents, saved_cents, target_date, category, owner_id
		FROM goals WHERE owner_id = ? ORDER BY name`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteGoal(ctx context.Context, owner, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM goals WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Categories

func (q *Queries) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, icon FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Shopping lists

func (q *Queries) UpsertShoppingList(ctx context.Context, l core.ShoppingList) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO shopping_lists (id, name, owner_id)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name
		WHERE shopping_lists.owner_id = excluded.owner_id`,
		l.ID, l.Name, l.OwnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListShoppingLists(ctx context.Context, owner string) ([]core.ShoppingList, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, owner_id FROM shopping_lists
		WHERE owner_id = ? ORDER BY name`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.ShoppingList
	for rows.Next() {
		var l core.ShoppingList
		if err := rows.Scan(&l.ID, &l.Name, &l.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteShoppingList(ctx context.Context, owner, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM shopping_lists WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) UpsertShoppingItem(ctx context.Context, i core.ShoppingItem) (int64, error) {
	done := 0
	if i.Done {
		done = 1
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO shopping_items (id, list_id, name, quantity, done, owner_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			quantity = excluded.quantity,
			done = excluded.done
		WHERE shopping_items.owner_id = excluded.owner_id`,
		i.ID, i.ListID, i.Name, i.Quantity, done, i.OwnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListShoppingItems(ctx context.Context, owner, listID string) ([]core.ShoppingItem, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, list_id, name, quantity, done, owner_id FROM shopping_items
		WHERE owner_id = ? AND list_id = ? ORDER BY name`, owner, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.ShoppingItem
	for rows.Next() {
		var i core.ShoppingItem
		var done int
		if err := rows.Scan(&i.ID, &i.ListID, &i.Name, &i.Quantity, &done, &i.OwnerID); err != nil {
			return nil, err
		}
		i.Done = done != 0
		out = append(out, i)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteShoppingItem(ctx context.Context, owner, listID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM shopping_items WHERE id = ? AND list_id = ? AND owner_id = ?`,
		id, listID, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Calendar events

func (q *Queries) UpsertEvent(ctx context.Context, e core.CalendarEvent) (int64, error) {
	var reminder any
	if !e.ReminderAt.IsZero() {
		reminder = e.ReminderAt.UTC()
	}
	notified := 0
	if e.Notified {
		notified = 1
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO calendar_events (id, title, date, reminder_at, notified, owner_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			date = excluded.date,
			reminder_at = excluded.reminder_at,
			notified = excluded.notified
		WHERE calendar_events.owner_id = excluded.owner_id`,
		e.ID, e.Title, e.Date.Format(dateLayout), reminder, notified, e.OwnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanEvent(scan func(dest ...any) error) (core.CalendarEvent, error) {
	var e core.CalendarEvent
	var date string
	var reminder sql.NullTime
	var notified int
	err := scan(&e.ID, &e.Title, &date, &reminder, &notified, &e.OwnerID)
	if err != nil {
		return core.CalendarEvent{}, err
	}
	e.Date = scanDate(date)
	if reminder.Valid {
		e.ReminderAt = reminder.Time
	}
	e.Notified = notified != 0
	return e, nil
}

func (q *Queries) ListEvents(ctx context.Context, owner string) ([]core.CalendarEvent, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, title, date, reminder_at, notified, owner_id
		FROM calendar_events WHERE owner_id = ? ORDER BY date`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteEvent(ctx context.Context, owner, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM calendar_events WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DueReminders(ctx context.Context, now time.Time, limit int) ([]core.CalendarEvent, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, title, date, reminder_at, notified, owner_id
		FROM calendar_events
		WHERE notified = 0 AND reminder_at IS NOT NULL AND reminder_at <= ?
		ORDER BY reminder_at LIMIT ?`, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *Queries) MarkNotified(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE calendar_events SET notified = 1 WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
