// Package services orchestrates domain operations across the store and the
// message broker. The ledger service owns every account-balance mutation:
// nothing else in the repository writes balances.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

// LedgerService applies transactions to account balances and undoes them on
// delete. Sequencing per operation: validate, compute new balances, persist
// the transaction row, persist each changed account. When the store supports
// a unit of work the whole sequence commits atomically; otherwise a failed
// account write aborts the remaining balance writes and surfaces a
// PersistenceError naming the account.
type LedgerService struct {
	store store.Store
}

func NewLedgerService(st store.Store) *LedgerService {
	return &LedgerService{store: st}
}

// CreateTransaction validates and records a transaction, updating the
// balance of the touched account(s). If a transaction with the same ID
// already exists this is an edit: the old effect is reversed before the new
// one is applied, so an edit never double-counts against the balance.
func (s *LedgerService) CreateTransaction(ctx context.Context, owner string, draft core.Transaction) (core.Transaction, error) {
	if owner == "" {
		return core.Transaction{}, core.ErrNoSession
	}
	draft.OwnerID = owner
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	err := s.withinTx(ctx, func(st store.Store) error {
		prior, err := st.GetTransaction(ctx, owner, draft.ID)
		switch {
		case err == nil:
			draft.CreatedAt = prior.CreatedAt
			if err := s.applyDeltas(ctx, st, owner, core.ReversalDeltas(prior)); err != nil {
				return fmt.Errorf("reverse prior effect: %w", err)
			}
		case errors.Is(err, store.ErrNotFound):
			// new transaction
		default:
			return &core.PersistenceError{Table: "transactions", Key: draft.ID, Err: err}
		}

		src, dst, err := s.loadAccounts(ctx, st, owner, draft)
		if err != nil {
			return err
		}
		changes, err := core.ApplyChanges(draft, src, dst)
		if err != nil {
			return err
		}

		if err := st.UpsertTransaction(ctx, draft); err != nil {
			return &core.PersistenceError{Table: "transactions", Key: draft.ID, Err: err}
		}
		for _, ch := range changes {
			if err := st.UpdateAccountBalance(ctx, owner, ch.AccountID, ch.NewBalance); err != nil {
				return &core.PersistenceError{Table: "accounts", Key: ch.AccountID, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", draft.ID,
		"kind", draft.Kind,
		"amount_cents", draft.Amount.Cents,
		"account", draft.AccountID)
	return draft, nil
}

// DeleteTransaction undoes the balance effect of a transaction and deletes
// its row. Balance reversals are persisted first; the row is deleted only
// after every reversal succeeded, so the store never holds a reversed
// balance alongside a missing transaction or vice versa.
func (s *LedgerService) DeleteTransaction(ctx context.Context, owner, id string) error {
	if owner == "" {
		return core.ErrNoSession
	}

	err := s.withinTx(ctx, func(st store.Store) error {
		t, err := st.GetTransaction(ctx, owner, id)
		if err != nil {
			return err
		}
		if err := s.applyDeltas(ctx, st, owner, core.ReversalDeltas(t)); err != nil {
			return err
		}
		if err := st.DeleteTransaction(ctx, owner, id); err != nil {
			return &core.PersistenceError{Table: "transactions", Key: id, Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted and balances restored", "id", id)
	return nil
}

// applyDeltas adds each delta to the referenced account's current balance
// and persists it. Accounts that no longer exist are skipped: deleting an
// account does not cascade to its transactions, so a reversal may touch a
// balance bucket that is already gone.
func (s *LedgerService) applyDeltas(ctx context.Context, st store.Store, owner string, deltas []core.Delta) error {
	for _, d := range deltas {
		account, err := st.GetAccount(ctx, owner, d.AccountID)
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "Skipping balance adjustment for deleted account",
				"account", d.AccountID, "delta_cents", d.Cents)
			continue
		}
		if err != nil {
			return &core.PersistenceError{Table: "accounts", Key: d.AccountID, Err: err}
		}
		balance := core.Money{Cents: account.Balance.Cents + d.Cents}
		if err := st.UpdateAccountBalance(ctx, owner, d.AccountID, balance); err != nil {
			return &core.PersistenceError{Table: "accounts", Key: d.AccountID, Err: err}
		}
	}
	return nil
}

func (s *LedgerService) loadAccounts(ctx context.Context, st store.Store, owner string, t core.Transaction) (core.Account, *core.Account, error) {
	src, err := st.GetAccount(ctx, owner, t.AccountID)
	if errors.Is(err, store.ErrNotFound) {
		return core.Account{}, nil, &core.ValidationError{Reason: "unknown account " + t.AccountID}
	}
	if err != nil {
		return core.Account{}, nil, &core.PersistenceError{Table: "accounts", Key: t.AccountID, Err: err}
	}
	if t.Kind != core.KindTransfer {
		return src, nil, nil
	}
	dst, err := st.GetAccount(ctx, owner, t.DestinationID)
	if errors.Is(err, store.ErrNotFound) {
		return core.Account{}, nil, &core.ValidationError{Reason: "unknown account " + t.DestinationID}
	}
	if err != nil {
		return core.Account{}, nil, &core.PersistenceError{Table: "accounts", Key: t.DestinationID, Err: err}
	}
	return src, &dst, nil
}

// withinTx runs fn atomically when the store adapter supports it; the
// memory adapter falls back to sequenced, non-atomic writes.
func (s *LedgerService) withinTx(ctx context.Context, fn func(st store.Store) error) error {
	if uow, ok := s.store.(store.UnitOfWork); ok {
		return uow.WithinTx(ctx, fn)
	}
	return fn(s.store)
}
