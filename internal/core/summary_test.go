package core

import (
	"testing"
	"time"
)

func tx(kind TransactionKind, cents int64, category string, date Date) Transaction {
	return Transaction{
		ID:          "tx",
		Date:        date,
		Description: "x",
		CategoryID:  category,
		AccountID:   "a",
		Amount:      Money{Cents: cents},
		Kind:        kind,
		OwnerID:     "u1",
	}
}

func TestSummarizeTotalsAndPeriodFilter(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(KindIncome, 300000, "salary", NewDate(2026, 9, 1)),
		tx(KindExpense, 100000, "food", NewDate(2026, 9, 2)),
		tx(KindExpense, 50000, "food", NewDate(2026, 8, 20)),  // prior month
		tx(KindIncome, 999999, "salary", NewDate(2025, 9, 2)), // prior year
		tx(KindTransfer, 70000, "", NewDate(2026, 9, 3)),      // excluded from totals
	}

	cases := []struct {
		period  Period
		income  int64
		expense int64
	}{
		{PeriodThisMonth, 300000, 100000},
		{PeriodThisYear, 300000, 150000},
		{PeriodAll, 1299999, 150000},
	}
	for _, tc := range cases {
		s := Summarize(txs, nil, nil, Filter{Period: tc.period, Now: now})
		if s.Totals.Income.Cents != tc.income || s.Totals.Expense.Cents != tc.expense {
			t.Fatalf("%s: expected income=%d expense=%d, got income=%d expense=%d",
				tc.period, tc.income, tc.expense, s.Totals.Income.Cents, s.Totals.Expense.Cents)
		}
		if s.Totals.Net.Cents != tc.income-tc.expense {
			t.Fatalf("%s: net mismatch: %d", tc.period, s.Totals.Net.Cents)
		}
	}
}

func TestSummarizeCategoryFilterAndNames(t *testing.T) {
	now := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(KindExpense, 100, "food", NewDate(2026, 9, 1)),
		tx(KindExpense, 200, "transport", NewDate(2026, 9, 1)),
	}
	names := map[string]string{"food": "Alimentación"}

	s := Summarize(txs, nil, names, Filter{Period: PeriodAll, CategoryID: "food", Now: now})
	if s.Totals.Expense.Cents != 100 {
		t.Fatalf("category filter: expected 100, got %d", s.Totals.Expense.Cents)
	}
	if len(s.ByCategory) != 1 || s.ByCategory[0].Name != "Alimentación" {
		t.Fatalf("expected display name Alimentación, got %+v", s.ByCategory)
	}

	// Unknown category id falls back to the raw id.
	s = Summarize(txs, nil, names, Filter{Period: PeriodAll, Now: now})
	found := false
	for _, c := range s.ByCategory {
		if c.Name == "transport" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected raw id fallback, got %+v", s.ByCategory)
	}
}

// Sum of the per-category expense breakdown equals total expense for the
// same filtered set.
func TestSummarizeBreakdownSumsToTotal(t *testing.T) {
	now := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(KindExpense, 12345, "food", NewDate(2026, 9, 1)),
		tx(KindExpense, 678, "food", NewDate(2026, 9, 4)),
		tx(KindExpense, 999, "transport", NewDate(2026, 9, 8)),
		tx(KindExpense, 43210, "home", NewDate(2026, 9, 9)),
		tx(KindIncome, 55555, "salary", NewDate(2026, 9, 10)),
	}
	s := Summarize(txs, nil, nil, Filter{Period: PeriodThisMonth, Now: now})
	var sum int64
	for _, c := range s.ByCategory {
		sum += c.Amount.Cents
	}
	if sum != s.Totals.Expense.Cents {
		t.Fatalf("breakdown sum %d != total expense %d", sum, s.Totals.Expense.Cents)
	}
}

func TestSummarizeTrend(t *testing.T) {
	now := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	var txs []Transaction
	for m := 1; m <= 9; m++ {
		txs = append(txs, tx(KindExpense, int64(m*100), "food", NewDate(2026, m, 1)))
	}
	// Period filter is ignored by the trend.
	s := Summarize(txs, nil, nil, Filter{Period: PeriodThisMonth, Now: now})

	if len(s.Trend) != TrendMonths {
		t.Fatalf("expected %d buckets, got %d", TrendMonths, len(s.Trend))
	}
	if s.Trend[0].Month != "2026-04" || s.Trend[len(s.Trend)-1].Month != "2026-09" {
		t.Fatalf("expected buckets 2026-04..2026-09, got %s..%s",
			s.Trend[0].Month, s.Trend[len(s.Trend)-1].Month)
	}
	for i := 1; i < len(s.Trend); i++ {
		if s.Trend[i-1].Month >= s.Trend[i].Month {
			t.Fatalf("buckets not strictly ascending: %s >= %s", s.Trend[i-1].Month, s.Trend[i].Month)
		}
	}
}

func TestSummarizeBudgetStatus(t *testing.T) {
	now := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(KindExpense, 4500000, "food", NewDate(2026, 9, 5)), // 45,000.00
		tx(KindExpense, 100000, "food", NewDate(2026, 8, 5)),  // outside the month
	}
	budgets := []Budget{
		{CategoryID: "food", Month: "2026-09", Target: Money{Cents: 5000000}, OwnerID: "u1"},
		{CategoryID: "transport", Month: "2026-09", Target: Money{Cents: 100000}, OwnerID: "u1"},
		{CategoryID: "food", Month: "2026-08", Target: Money{Cents: 100}, OwnerID: "u1"},
	}
	s := Summarize(txs, budgets, nil, Filter{Period: PeriodThisMonth, Now: now})

	if len(s.Budgets) != 2 {
		t.Fatalf("expected 2 current-month budgets, got %d", len(s.Budgets))
	}
	food := s.Budgets[0]
	if food.CategoryID != "food" {
		t.Fatalf("expected food first, got %s", food.CategoryID)
	}
	if food.Percent != 90 || !food.Alert {
		t.Fatalf("expected 90%% with alert, got %d%% alert=%v", food.Percent, food.Alert)
	}
	transport := s.Budgets[1]
	if transport.Percent != 0 || transport.Alert {
		t.Fatalf("expected 0%% without alert, got %d%% alert=%v", transport.Percent, transport.Alert)
	}
}

func TestSummarizeBudgetPercentClamped(t *testing.T) {
	now := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{tx(KindExpense, 300000, "food", NewDate(2026, 9, 5))}
	budgets := []Budget{{CategoryID: "food", Month: "2026-09", Target: Money{Cents: 100000}}}
	s := Summarize(txs, budgets, nil, Filter{Period: PeriodThisMonth, Now: now})
	if s.Budgets[0].Percent != 100 {
		t.Fatalf("expected clamp to 100, got %d", s.Budgets[0].Percent)
	}
}
