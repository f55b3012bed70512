package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/store/memory"
)

func TestSummaryService_Summary(t *testing.T) {
	st := memory.New()
	svc := NewSummaryService(st)
	ctx := context.Background()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	seed := []core.Transaction{
		{ID: "t1", Date: core.NewDate(2025, 3, 1), Description: "Sueldo", CategoryID: "salary", AccountID: "a1", Amount: core.Money{Cents: 100000}, Kind: core.KindIncome, OwnerID: testOwner},
		{ID: "t2", Date: core.NewDate(2025, 3, 5), Description: "Mercado", CategoryID: "food", AccountID: "a1", Amount: core.Money{Cents: 45000}, Kind: core.KindExpense, OwnerID: testOwner},
		{ID: "t3", Date: core.NewDate(2025, 2, 5), Description: "Mercado", CategoryID: "food", AccountID: "a1", Amount: core.Money{Cents: 30000}, Kind: core.KindExpense, OwnerID: testOwner},
	}
	for _, tx := range seed {
		if err := st.UpsertTransaction(ctx, tx); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}
	if err := st.PutBudget(ctx, core.Budget{CategoryID: "food", Month: "2025-03", Target: core.Money{Cents: 50000}, OwnerID: testOwner}); err != nil {
		t.Fatalf("seed budget: %v", err)
	}

	s, err := svc.Summary(ctx, testOwner, core.Filter{Period: core.PeriodThisMonth, Now: now})
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if s.Totals.Income.Cents != 100000 || s.Totals.Expense.Cents != 45000 {
		t.Errorf("totals = %+v", s.Totals)
	}
	if s.Totals.Net.Cents != 55000 {
		t.Errorf("net = %d, want 55000", s.Totals.Net.Cents)
	}

	// Category totals come back under their seeded display names.
	if len(s.ByCategory) != 1 || s.ByCategory[0].Name != "Alimentación" {
		t.Errorf("by category = %+v, want Alimentación", s.ByCategory)
	}

	if len(s.Budgets) != 1 {
		t.Fatalf("budgets = %+v, want one status", s.Budgets)
	}
	b := s.Budgets[0]
	if b.Percent != 90 || !b.Alert {
		t.Errorf("budget status = %+v, want 90%% with alert", b)
	}
}

func TestSummaryService_NoSession(t *testing.T) {
	svc := NewSummaryService(memory.New())

	_, err := svc.Summary(context.Background(), "", core.Filter{})
	var aerr *core.AuthError
	if !errors.As(err, &aerr) {
		t.Fatalf("Summary() error = %v, want AuthError", err)
	}
}
