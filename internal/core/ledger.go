package core

// Delta is a signed balance adjustment for one account.
type Delta struct {
	AccountID string
	Cents     int64
}

// BalanceChange pairs an account with its balance after a ledger operation.
type BalanceChange struct {
	AccountID  string
	NewBalance Money
}

// ApplyDeltas returns the per-account balance adjustments of recording t:
//
//	expense:  source -= amount
//	income:   source += amount
//	transfer: source -= amount, destination += amount
func ApplyDeltas(t Transaction) []Delta {
	switch t.Kind {
	case KindExpense:
		return []Delta{{AccountID: t.AccountID, Cents: -t.Amount.Cents}}
	case KindIncome:
		return []Delta{{AccountID: t.AccountID, Cents: t.Amount.Cents}}
	case KindTransfer:
		return []Delta{
			{AccountID: t.AccountID, Cents: -t.Amount.Cents},
			{AccountID: t.DestinationID, Cents: t.Amount.Cents},
		}
	default:
		return nil
	}
}

// ReversalDeltas returns the exact inverse of ApplyDeltas, used when a
// transaction is deleted or re-applied on edit. Applying then reversing a
// transaction returns every touched account to its prior balance.
func ReversalDeltas(t Transaction) []Delta {
	deltas := ApplyDeltas(t)
	for i := range deltas {
		deltas[i].Cents = -deltas[i].Cents
	}
	return deltas
}

// ApplyChanges computes the balances of src (and dst, for transfers) after
// recording t. The transaction must already be validated; an invalid kind,
// a transfer without a destination account, or a transaction whose account
// ids match neither src nor dst returns a ValidationError.
func ApplyChanges(t Transaction, src Account, dst *Account) ([]BalanceChange, error) {
	return resolve(ApplyDeltas(t), t, src, dst)
}

// ReverseChanges computes the balances after undoing t.
func ReverseChanges(t Transaction, src Account, dst *Account) ([]BalanceChange, error) {
	return resolve(ReversalDeltas(t), t, src, dst)
}

func resolve(deltas []Delta, t Transaction, src Account, dst *Account) ([]BalanceChange, error) {
	if len(deltas) == 0 {
		return nil, ErrUnknownKind
	}
	if t.Kind == KindTransfer {
		if dst == nil {
			return nil, ErrMissingDestination
		}
		if dst.ID == src.ID {
			return nil, ErrSameAccountTransfer
		}
	}
	out := make([]BalanceChange, 0, len(deltas))
	for _, d := range deltas {
		var balance Money
		switch {
		case d.AccountID == src.ID:
			balance = src.Balance
		case dst != nil && d.AccountID == dst.ID:
			balance = dst.Balance
		default:
			return nil, &ValidationError{Reason: "account " + d.AccountID + " was not loaded for this transaction"}
		}
		out = append(out, BalanceChange{
			AccountID:  d.AccountID,
			NewBalance: Money{Cents: balance.Cents + d.Cents},
		})
	}
	return out, nil
}
