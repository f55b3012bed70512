package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

// AccountService manages the balance buckets themselves. Balance values are
// only ever written here on creation and manual adjustment; transactional
// movement goes through the ledger service.
type AccountService struct {
	store store.Store
}

func NewAccountService(st store.Store) *AccountService {
	return &AccountService{store: st}
}

// defaultAccounts are seeded for an owner with no accounts yet.
var defaultAccounts = []core.Account{
	{Name: "Efectivo", Icon: "cash", Type: core.AccountCash},
	{Name: "Débito", Icon: "card", Type: core.AccountDebit},
	{Name: "Tarjeta de crédito", Icon: "credit-card", Type: core.AccountCredit},
}

// EnsureDefaults seeds the starter accounts the first time an owner shows
// up. Existing owners are left untouched.
func (s *AccountService) EnsureDefaults(ctx context.Context, owner string) error {
	if owner == "" {
		return core.ErrNoSession
	}
	existing, err := s.store.ListAccounts(ctx, owner)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, a := range defaultAccounts {
		a.ID = uuid.NewString()
		a.OwnerID = owner
		if err := s.store.UpsertAccount(ctx, a); err != nil {
			return &core.PersistenceError{Table: "accounts", Key: a.ID, Err: err}
		}
	}
	slog.InfoContext(ctx, "Seeded default accounts", "owner", owner, "count", len(defaultAccounts))
	return nil
}

func (s *AccountService) SaveAccount(ctx context.Context, owner string, a core.Account) (core.Account, error) {
	if owner == "" {
		return core.Account{}, core.ErrNoSession
	}
	a.OwnerID = owner
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.UpsertAccount(ctx, a); err != nil {
		return core.Account{}, &core.PersistenceError{Table: "accounts", Key: a.ID, Err: err}
	}
	return a, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, owner string) ([]core.Account, error) {
	if owner == "" {
		return nil, core.ErrNoSession
	}
	return s.store.ListAccounts(ctx, owner)
}

// DeleteAccount removes the bucket. Transactions that referenced it are
// kept; the ledger service skips the missing account when reversing them.
func (s *AccountService) DeleteAccount(ctx context.Context, owner, id string) error {
	if owner == "" {
		return core.ErrNoSession
	}
	return s.store.DeleteAccount(ctx, owner, id)
}
