package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

func TestOwnerScoping(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := core.Account{ID: "a1", Name: "Efectivo", Type: core.AccountCash, OwnerID: "alice"}
	if err := s.UpsertAccount(ctx, a); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if _, err := s.GetAccount(ctx, "bob", "a1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if err := s.UpdateAccountBalance(ctx, "bob", "a1", core.Money{Cents: 1}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign balance write, got %v", err)
	}
	if err := s.DeleteAccount(ctx, "bob", "a1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}

	got, err := s.GetAccount(ctx, "alice", "a1")
	if err != nil || got.Name != "Efectivo" {
		t.Fatalf("owner read failed: %v %+v", err, got)
	}

	accounts, err := s.ListAccounts(ctx, "bob")
	if err != nil || len(accounts) != 0 {
		t.Fatalf("expected empty list for bob, got %d (%v)", len(accounts), err)
	}
}

// An id never migrates between owners: an upsert reusing another owner's id
// is rejected and the original row survives untouched.
func TestUpsertRejectsForeignOwnerID(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := core.Account{ID: "a1", Name: "Efectivo", Type: core.AccountCash, OwnerID: "alice"}
	if err := s.UpsertAccount(ctx, a); err != nil {
		t.Fatalf("upsert account: %v", err)
	}
	stolenAccount := a
	stolenAccount.OwnerID = "bob"
	stolenAccount.Name = "Mía ahora"
	if err := s.UpsertAccount(ctx, stolenAccount); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign account upsert, got %v", err)
	}
	if got, err := s.GetAccount(ctx, "alice", "a1"); err != nil || got.Name != "Efectivo" {
		t.Fatalf("victim account changed: %v %+v", err, got)
	}

	tx := core.Transaction{
		ID:          "t1",
		Date:        core.NewDate(2026, 9, 1),
		Description: "Mercado",
		CategoryID:  "food",
		AccountID:   "a1",
		Amount:      core.Money{Cents: 1000},
		Kind:        core.KindExpense,
		OwnerID:     "alice",
	}
	if err := s.UpsertTransaction(ctx, tx); err != nil {
		t.Fatalf("upsert transaction: %v", err)
	}
	stolen := tx
	stolen.OwnerID = "bob"
	stolen.Description = "Robo"
	if err := s.UpsertTransaction(ctx, stolen); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign transaction upsert, got %v", err)
	}
	got, err := s.GetTransaction(ctx, "alice", "t1")
	if err != nil || got.Description != "Mercado" {
		t.Fatalf("victim transaction changed: %v %+v", err, got)
	}
	if _, err := s.GetTransaction(ctx, "bob", "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("foreign owner gained access: %v", err)
	}
}

func TestTransactionOrderingAndMirrorQueue(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		tx := core.Transaction{
			ID:          id,
			Date:        core.NewDate(2026, 9, 3-i),
			Description: id,
			CategoryID:  "food",
			AccountID:   "a1",
			Amount:      core.Money{Cents: 100},
			Kind:        core.KindExpense,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			OwnerID:     "alice",
		}
		if err := s.UpsertTransaction(ctx, tx); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	txs, err := s.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 3 || txs[0].ID != "t3" || txs[2].ID != "t1" {
		t.Fatalf("expected date-ascending order t3,t2,t1; got %v", []string{txs[0].ID, txs[1].ID, txs[2].ID})
	}

	pending, err := s.PendingMirror(ctx, 2)
	if err != nil || len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d (%v)", len(pending), err)
	}
	if pending[0].ID != "t1" {
		t.Fatalf("expected oldest-created first, got %s", pending[0].ID)
	}
	if err := s.MarkMirrored(ctx, "t1"); err != nil {
		t.Fatalf("mark mirrored: %v", err)
	}
	pending, _ = s.PendingMirror(ctx, 0)
	for _, p := range pending {
		if p.ID == "t1" {
			t.Fatalf("t1 should no longer be pending")
		}
	}
}

func TestDueReminders(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	events := []core.CalendarEvent{
		{ID: "e1", Title: "Pagar arriendo", Date: core.NewDate(2026, 9, 1), ReminderAt: now.Add(-time.Hour), OwnerID: "alice"},
		{ID: "e2", Title: "Cita médica", Date: core.NewDate(2026, 9, 2), ReminderAt: now.Add(time.Hour), OwnerID: "alice"},
		{ID: "e3", Title: "Mercado", Date: core.NewDate(2026, 9, 1), ReminderAt: now.Add(-2 * time.Hour), Notified: true, OwnerID: "bob"},
		{ID: "e4", Title: "Sin recordatorio", Date: core.NewDate(2026, 9, 1), OwnerID: "alice"},
	}
	for _, e := range events {
		if err := s.UpsertEvent(ctx, e); err != nil {
			t.Fatalf("upsert %s: %v", e.ID, err)
		}
	}

	due, err := s.DueReminders(ctx, now, 10)
	if err != nil {
		t.Fatalf("due reminders: %v", err)
	}
	if len(due) != 1 || due[0].ID != "e1" {
		t.Fatalf("expected only e1 due, got %+v", due)
	}

	if err := s.MarkNotified(ctx, "e1"); err != nil {
		t.Fatalf("mark notified: %v", err)
	}
	due, _ = s.DueReminders(ctx, now, 10)
	if len(due) != 0 {
		t.Fatalf("expected no due reminders after notify, got %d", len(due))
	}
}

func TestBudgetKeyedByCategoryAndMonth(t *testing.T) {
	ctx := context.Background()
	s := New()

	b := core.Budget{CategoryID: "food", Month: "2026-09", Target: core.Money{Cents: 5000000}, OwnerID: "alice"}
	if err := s.PutBudget(ctx, b); err != nil {
		t.Fatalf("put: %v", err)
	}
	b.Target = core.Money{Cents: 6000000}
	if err := s.PutBudget(ctx, b); err != nil {
		t.Fatalf("put overwrite: %v", err)
	}

	budgets, err := s.ListBudgets(ctx, "alice")
	if err != nil || len(budgets) != 1 {
		t.Fatalf("expected a single upserted budget, got %d (%v)", len(budgets), err)
	}
	if budgets[0].Target.Cents != 6000000 {
		t.Fatalf("expected updated target, got %d", budgets[0].Target.Cents)
	}

	if err := s.DeleteBudget(ctx, "alice", "food", "2026-09"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteBudget(ctx, "alice", "food", "2026-09"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
