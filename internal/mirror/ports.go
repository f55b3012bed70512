// Package mirror exports recorded transactions to an external spreadsheet
// so the household keeps a shared, human-editable copy of the ledger.
package mirror

import (
	"context"

	"finanzas/internal/core"
)

// Row is one spreadsheet line, already resolved to display names.
type Row struct {
	Date        string
	Description string
	Category    string
	Account     string
	Kind        string
	Value       string
}

// RowFromTransaction resolves ids to display names and formats the amount.
func RowFromTransaction(t core.Transaction, categories, accounts map[string]string) Row {
	return Row{
		Date:        t.Date.Format("2006-01-02"),
		Description: t.Description,
		Category:    name(categories, t.CategoryID),
		Account:     name(accounts, t.AccountID),
		Kind:        string(t.Kind),
		Value:       t.Amount.Decimal(),
	}
}

func name(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}

// TransactionWriter is the outbound port the mirror worker appends through.
type TransactionWriter interface {
	Append(ctx context.Context, row Row) (rowRef string, err error)
}
