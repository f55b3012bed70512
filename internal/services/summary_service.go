package services

import (
	"context"
	"fmt"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

// SummaryService assembles the read-side snapshot and hands it to the pure
// aggregation in core.
type SummaryService struct {
	store store.Store
}

func NewSummaryService(st store.Store) *SummaryService {
	return &SummaryService{store: st}
}

func (s *SummaryService) Summary(ctx context.Context, owner string, f core.Filter) (core.Summary, error) {
	if owner == "" {
		return core.Summary{}, core.ErrNoSession
	}

	txs, err := s.store.ListTransactions(ctx, owner)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load transactions: %w", err)
	}
	budgets, err := s.store.ListBudgets(ctx, owner)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load budgets: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load categories: %w", err)
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return core.Summarize(txs, budgets, names, f), nil
}
