package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

type CreditRecordRepo struct {
	db *DB
}

var _ store.CreditRecordRepository = (*CreditRecordRepo)(nil)

func NewCreditRecordRepo(db *DB) *CreditRecordRepo {
	return &CreditRecordRepo{db: db}
}

func (r *CreditRecordRepo) InsertTx(ctx context.Context, tx *sql.Tx, rec *model.SpinCreditRecord) (bool, error) {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO spin_credit_records (tx_hash, account_id, spins_credited, credited_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tx_hash) DO NOTHING
		RETURNING id, credited_at
	`, rec.TxHash, rec.Account, rec.SpinsCredited, rec.CreditedBy).Scan(&rec.ID, &rec.CreditedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert credit record %s: %w", rec.TxHash, err)
	}
	return true, nil
}

func (r *CreditRecordRepo) GetByTxHash(ctx context.Context, txHash string) (*model.SpinCreditRecord, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var rec model.SpinCreditRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT id, tx_hash, account_id, spins_credited, credited_at, credited_by
		FROM spin_credit_records
		WHERE tx_hash = $1
	`, txHash).Scan(&rec.ID, &rec.TxHash, &rec.Account, &rec.SpinsCredited, &rec.CreditedAt, &rec.CreditedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credit record %s: %w", txHash, err)
	}
	return &rec, nil
}
