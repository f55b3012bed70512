// Package export renders transaction history as CSV for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"finanzas/internal/core"
)

// Header is the column layout of the exported file.
var Header = []string{"Fecha", "Descripción", "Categoría", "Cuenta", "Tipo", "Valor"}

func kindLabel(k core.TransactionKind) string {
	switch k {
	case core.KindIncome:
		return "Ingreso"
	case core.KindExpense:
		return "Gasto"
	case core.KindTransfer:
		return "Transferencia"
	default:
		return string(k)
	}
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

// WriteCSV streams the transactions as CSV. Fields containing commas or
// quotes are quoted per RFC 4180, so descriptions round-trip intact.
// categories and accounts map ids to display names; unknown ids fall back
// to the raw id.
func WriteCSV(w io.Writer, txs []core.Transaction, categories, accounts map[string]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range txs {
		record := []string{
			t.Date.Format("2006-01-02"),
			t.Description,
			displayName(categories, t.CategoryID),
			displayName(accounts, t.AccountID),
			kindLabel(t.Kind),
			t.Amount.Decimal(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
