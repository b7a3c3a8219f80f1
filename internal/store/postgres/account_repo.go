package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

type AccountRepo struct {
	db *DB
}

var _ store.AccountRepository = (*AccountRepo)(nil)

func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) ResolveAccount(ctx context.Context, address string) (string, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var accountID string
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id FROM account_addresses WHERE address = $1`, address,
	).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve account for %s: %w", address, err)
	}
	return accountID, nil
}

// LinkAddress creates or re-points the address link.
func (r *AccountRepo) LinkAddress(ctx context.Context, link *model.AccountAddress) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO account_addresses (address, account_id, label)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			label = COALESCE(EXCLUDED.label, account_addresses.label)
		RETURNING created_at
	`, link.Address, link.AccountID, link.Label).Scan(&link.CreatedAt)
	if err != nil {
		return fmt.Errorf("link address %s: %w", link.Address, err)
	}
	return nil
}

func (r *AccountRepo) AddSpinsTx(ctx context.Context, tx *sql.Tx, accountID string, spins int64) (int64, error) {
	var total int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO spin_balances (account_id, spins)
		VALUES ($1, $2)
		ON CONFLICT (account_id) DO UPDATE SET
			spins = spin_balances.spins + EXCLUDED.spins,
			updated_at = now()
		RETURNING spins
	`, accountID, spins).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("add spins to %s: %w", accountID, err)
	}
	return total, nil
}

// GetBalance returns a zero balance for accounts that were never credited.
func (r *AccountRepo) GetBalance(ctx context.Context, accountID string) (*model.SpinBalance, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	b := model.SpinBalance{AccountID: accountID}
	err := r.db.QueryRowContext(ctx,
		`SELECT spins, updated_at FROM spin_balances WHERE account_id = $1`, accountID,
	).Scan(&b.Spins, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get balance for %s: %w", accountID, err)
	}
	return &b, nil
}
