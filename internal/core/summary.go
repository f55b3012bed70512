package core

import (
	"sort"
	"time"
)

const (
	PeriodThisMonth Period = "this-month"
	PeriodThisYear  Period = "this-year"
	PeriodAll       Period = "all"

	// TrendMonths caps the monthly trend series.
	TrendMonths = 6

	// BudgetAlertPercent is the threshold above which a budget is flagged.
	BudgetAlertPercent = 80
)

type (
	Period string

	// Filter selects the transaction slice a summary is computed over.
	// Now supplies the clock for period evaluation and budget status.
	Filter struct {
		Period     Period
		CategoryID string
		Now        time.Time
	}

	Totals struct {
		Income  Money
		Expense Money
		Net     Money
	}

	// CategoryAmount is an expense total keyed by category display name.
	CategoryAmount struct {
		Name   string
		Amount Money
	}

	// TrendPoint is the income/expense sum for one YYYY-MM bucket.
	TrendPoint struct {
		Month   string
		Income  Money
		Expense Money
	}

	// BudgetStatus reports spending against a budget for the current month.
	BudgetStatus struct {
		CategoryID string
		Month      string
		Target     Money
		Spent      Money
		Percent    int
		Alert      bool
	}

	Summary struct {
		Totals     Totals
		ByCategory []CategoryAmount
		Trend      []TrendPoint
		Budgets    []BudgetStatus
	}
)

// Summarize derives reporting figures from a snapshot of transactions and
// budgets. It is pure read-side computation: no persistence, no errors.
// categories maps category ids to display names; unknown ids fall back to
// the raw id. Non-positive amounts count as zero.
func Summarize(txs []Transaction, budgets []Budget, categories map[string]string, f Filter) Summary {
	if f.Now.IsZero() {
		f.Now = time.Now()
	}

	filtered := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if !inPeriod(t.Date, f.Period, f.Now) {
			continue
		}
		if f.CategoryID != "" && t.CategoryID != f.CategoryID {
			continue
		}
		filtered = append(filtered, t)
	}

	var s Summary
	byCat := map[string]int64{}
	for _, t := range filtered {
		amount := t.Amount.Cents
		if amount < 0 {
			amount = 0
		}
		switch t.Kind {
		case KindIncome:
			s.Totals.Income.Cents += amount
		case KindExpense:
			s.Totals.Expense.Cents += amount
			byCat[categoryName(categories, t.CategoryID)] += amount
		}
	}
	s.Totals.Net = Money{Cents: s.Totals.Income.Cents - s.Totals.Expense.Cents}

	s.ByCategory = make([]CategoryAmount, 0, len(byCat))
	for name, cents := range byCat {
		s.ByCategory = append(s.ByCategory, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Amount.Cents != s.ByCategory[j].Amount.Cents {
			return s.ByCategory[i].Amount.Cents > s.ByCategory[j].Amount.Cents
		}
		return s.ByCategory[i].Name < s.ByCategory[j].Name
	})

	s.Trend = trend(txs)
	s.Budgets = budgetStatuses(txs, budgets, f.Now)
	return s
}

func inPeriod(d Date, p Period, now time.Time) bool {
	switch p {
	case PeriodThisMonth:
		return d.Year() == now.Year() && d.Month() == now.Month()
	case PeriodThisYear:
		return d.Year() == now.Year()
	default:
		return true
	}
}

func categoryName(categories map[string]string, id string) string {
	if name, ok := categories[id]; ok && name != "" {
		return name
	}
	return id
}

// trend groups all transactions (ignoring the period filter) by YYYY-MM,
// sorts ascending by key, and returns the last TrendMonths buckets.
func trend(txs []Transaction) []TrendPoint {
	type sums struct{ income, expense int64 }
	byMonth := map[string]*sums{}
	for _, t := range txs {
		amount := t.Amount.Cents
		if amount < 0 {
			amount = 0
		}
		key := t.Date.MonthKey()
		b, ok := byMonth[key]
		if !ok {
			b = &sums{}
			byMonth[key] = b
		}
		switch t.Kind {
		case KindIncome:
			b.income += amount
		case KindExpense:
			b.expense += amount
		}
	}

	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > TrendMonths {
		keys = keys[len(keys)-TrendMonths:]
	}

	points := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		b := byMonth[k]
		points = append(points, TrendPoint{
			Month:   k,
			Income:  Money{Cents: b.income},
			Expense: Money{Cents: b.expense},
		})
	}
	return points
}

// budgetStatuses computes spending against every budget defined for the
// current month. Percent is clamped to 100; Alert fires at or above
// BudgetAlertPercent of the target.
func budgetStatuses(txs []Transaction, budgets []Budget, now time.Time) []BudgetStatus {
	month := now.Format("2006-01")
	spentByCat := map[string]int64{}
	for _, t := range txs {
		if t.Kind != KindExpense || t.Date.MonthKey() != month {
			continue
		}
		amount := t.Amount.Cents
		if amount < 0 {
			amount = 0
		}
		spentByCat[t.CategoryID] += amount
	}

	var out []BudgetStatus
	for _, b := range budgets {
		if b.Month != month || b.Target.Cents <= 0 {
			continue
		}
		spent := spentByCat[b.CategoryID]
		percent := int(spent * 100 / b.Target.Cents)
		if percent > 100 {
			percent = 100
		}
		out = append(out, BudgetStatus{
			CategoryID: b.CategoryID,
			Month:      b.Month,
			Target:     b.Target,
			Spent:      Money{Cents: spent},
			Percent:    percent,
			Alert:      percent >= BudgetAlertPercent,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out
}
