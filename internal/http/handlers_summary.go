package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/export"
)

type moneyResponse struct {
	Amount string `json:"amount"`
	Cents  int64  `json:"cents"`
}

func toMoneyResponse(m core.Money) moneyResponse {
	return moneyResponse{Amount: m.Decimal(), Cents: m.Cents}
}

type summaryResponse struct {
	Totals struct {
		Income  moneyResponse `json:"income"`
		Expense moneyResponse `json:"expense"`
		Net     moneyResponse `json:"net"`
	} `json:"totals"`
	ByCategory []categoryAmountResponse `json:"by_category"`
	Trend      []trendPointResponse     `json:"trend"`
	Budgets    []budgetStatusResponse   `json:"budgets"`
}

type categoryAmountResponse struct {
	Name   string        `json:"name"`
	Amount moneyResponse `json:"amount"`
}

type trendPointResponse struct {
	Month   string        `json:"month"`
	Income  moneyResponse `json:"income"`
	Expense moneyResponse `json:"expense"`
}

type budgetStatusResponse struct {
	CategoryID string        `json:"category_id"`
	Month      string        `json:"month"`
	Target     moneyResponse `json:"target"`
	Spent      moneyResponse `json:"spent"`
	Percent    int           `json:"percent"`
	Alert      bool          `json:"alert"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	var out summaryResponse
	out.Totals.Income = toMoneyResponse(s.Totals.Income)
	out.Totals.Expense = toMoneyResponse(s.Totals.Expense)
	out.Totals.Net = toMoneyResponse(s.Totals.Net)

	out.ByCategory = make([]categoryAmountResponse, 0, len(s.ByCategory))
	for _, c := range s.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryAmountResponse{Name: c.Name, Amount: toMoneyResponse(c.Amount)})
	}
	out.Trend = make([]trendPointResponse, 0, len(s.Trend))
	for _, p := range s.Trend {
		out.Trend = append(out.Trend, trendPointResponse{Month: p.Month, Income: toMoneyResponse(p.Income), Expense: toMoneyResponse(p.Expense)})
	}
	out.Budgets = make([]budgetStatusResponse, 0, len(s.Budgets))
	for _, b := range s.Budgets {
		out.Budgets = append(out.Budgets, budgetStatusResponse{
			CategoryID: b.CategoryID,
			Month:      b.Month,
			Target:     toMoneyResponse(b.Target),
			Spent:      toMoneyResponse(b.Spent),
			Percent:    b.Percent,
			Alert:      b.Alert,
		})
	}
	return out
}

func parseFilter(r *http.Request) core.Filter {
	f := core.Filter{
		Period:     core.PeriodThisMonth,
		CategoryID: r.URL.Query().Get("category"),
		Now:        time.Now(),
	}
	switch r.URL.Query().Get("period") {
	case string(core.PeriodThisYear):
		f.Period = core.PeriodThisYear
	case string(core.PeriodAll):
		f.Period = core.PeriodAll
	}
	return f
}

// handleSummary serves the aggregated view. Results are cached per owner
// and filter for a few minutes; any mutation invalidates the owner's slice
// of the cache.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, r, core.ErrNoSession)
		return
	}
	f := parseFilter(r)

	cacheKey := fmt.Sprintf("%s|%s|%s", owner, f.Period, f.CategoryID)
	if cached, ok := s.summaryCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, toSummaryResponse(cached))
		return
	}

	summary, err := s.summaries.Summary(r.Context(), owner, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Set(cacheKey, summary)
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// handleExportCSV streams the owner's full history as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
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
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	accounts, err := s.store.ListAccounts(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	catNames := make(map[string]string, len(categories))
	for _, c := range categories {
		catNames[c.ID] = c.Name
	}
	accNames := make(map[string]string, len(accounts))
	for _, a := range accounts {
		accNames[a.ID] = a.Name
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="movimientos-%s.csv"`, time.Now().Format("2006-01-02")))
	if err := export.WriteCSV(w, txs, catNames, accNames); err != nil {
		// Headers are already sent; all we can do is log.
		slog.ErrorContext(r.Context(), "CSV export failed mid-stream", "error", err)
	}
}
