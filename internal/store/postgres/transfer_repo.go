package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type TransferRepo struct {
	db *DB
}

var _ store.TransferRepository = (*TransferRepo)(nil)

func NewTransferRepo(db *DB) *TransferRepo {
	return &TransferRepo{db: db}
}

const transferColumns = `id, network, tx_hash, sender_address, amount_native, checkpoint,
	chain_timestamp, observed_at, credit_status, linked_account, suggested_spins,
	rejection_reason, resolved_by, resolved_at, source, chain_data, updated_at`

func scanTransfer(row interface{ Scan(...any) error }) (*model.ChainTransfer, error) {
	var (
		t         model.ChainTransfer
		chainData []byte
	)
	err := row.Scan(
		&t.ID, &t.Network, &t.TxHash, &t.SenderAddress, &t.AmountNative, &t.Checkpoint,
		&t.ChainTimestamp, &t.ObservedAt, &t.CreditStatus, &t.LinkedAccount, &t.SuggestedSpins,
		&t.RejectionReason, &t.ResolvedBy, &t.ResolvedAt, &t.Source, &chainData, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.ChainData = chainData
	return &t, nil
}

func (r *TransferRepo) RecordIfNewTx(ctx context.Context, tx *sql.Tx, t *model.ChainTransfer) (bool, error) {
	status := t.CreditStatus
	if status == "" {
		status = model.CreditStatusNew
	}
	source := t.Source
	if source == "" {
		source = model.TransferSourceScanner
	}
	chainData := "{}"
	if len(t.ChainData) > 0 {
		chainData = string(t.ChainData)
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO chain_transfers (
			network, tx_hash, sender_address, amount_native, checkpoint, chain_timestamp,
			credit_status, linked_account, suggested_spins, source, chain_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (tx_hash) DO NOTHING
		RETURNING id, observed_at, updated_at
	`, t.Network, t.TxHash, t.SenderAddress, t.AmountNative, t.Checkpoint, t.ChainTimestamp,
		status, t.LinkedAccount, t.SuggestedSpins, source, chainData,
	).Scan(&t.ID, &t.ObservedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("record transfer %s: %w", t.TxHash, err)
	}
	t.CreditStatus = status
	t.Source = source
	return true, nil
}

func (r *TransferRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, txHash string) (*model.ChainTransfer, error) {
	t, err := scanTransfer(tx.QueryRowContext(ctx, `
		SELECT `+transferColumns+`
		FROM chain_transfers
		WHERE tx_hash = $1
		FOR UPDATE
	`, txHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock transfer %s: %w", txHash, err)
	}
	return t, nil
}

func (r *TransferRepo) TransitionTx(ctx context.Context, tx *sql.Tx, tr store.TransferTransition) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE chain_transfers SET
			credit_status = $3,
			rejection_reason = COALESCE($4, rejection_reason),
			resolved_by = COALESCE($5, resolved_by),
			resolved_at = $6,
			updated_at = now()
		WHERE tx_hash = $1 AND credit_status = $2
	`, tr.TxHash, tr.From, tr.To, tr.RejectionReason, tr.ResolvedBy, tr.ResolvedAt)
	if err != nil {
		return false, fmt.Errorf("transition transfer %s %s->%s: %w", tr.TxHash, tr.From, tr.To, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition transfer %s rows affected: %w", tr.TxHash, err)
	}
	return n == 1, nil
}

func (r *TransferRepo) AttributeTx(ctx context.Context, tx *sql.Tx, txHash, account string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE chain_transfers SET
			linked_account = $2,
			updated_at = now()
		WHERE tx_hash = $1
		  AND credit_status = 'new'
		  AND (linked_account IS NULL OR linked_account = $2)
	`, txHash, account)
	if err != nil {
		return false, fmt.Errorf("attribute transfer %s: %w", txHash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("attribute transfer %s rows affected: %w", txHash, err)
	}
	return n == 1, nil
}

func (r *TransferRepo) Get(ctx context.Context, txHash string) (*model.ChainTransfer, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	t, err := scanTransfer(r.db.QueryRowContext(ctx, `
		SELECT `+transferColumns+`
		FROM chain_transfers
		WHERE tx_hash = $1
	`, txHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transfer %s: %w", txHash, err)
	}
	return t, nil
}

func (r *TransferRepo) List(ctx context.Context, filter model.TransferFilter) ([]model.ChainTransfer, int, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	limit, offset := filter.Limit, filter.Offset
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	where, args := buildTransferWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chain_transfers WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM chain_transfers
		WHERE %s
		ORDER BY observed_at DESC, checkpoint DESC, tx_hash
		LIMIT $%d OFFSET $%d
	`, transferColumns, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query transfers: %w", err)
	}
	defer rows.Close()

	transfers := []model.ChainTransfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transfer row: %w", err)
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transfer rows: %w", err)
	}
	return transfers, total, nil
}

func buildTransferWhere(filter model.TransferFilter) (string, []any) {
	clauses := []string{"TRUE"}
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != nil {
		add("credit_status = $%d", string(*filter.Status))
	}
	if filter.Account != nil {
		add("linked_account = $%d", *filter.Account)
	}
	if filter.UnattributedOnly {
		clauses = append(clauses, "linked_account IS NULL")
	}
	if filter.ObservedAfter != nil {
		add("observed_at >= $%d", *filter.ObservedAfter)
	}
	return strings.Join(clauses, " AND "), args
}

func (r *TransferRepo) Stats(ctx context.Context) (model.TransferStats, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var s model.TransferStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE credit_status = 'new'),
			COUNT(*) FILTER (WHERE credit_status = 'new' AND linked_account IS NULL),
			COUNT(*) FILTER (WHERE credit_status = 'pending_approval'),
			COUNT(*) FILTER (WHERE credit_status = 'credited'),
			COUNT(*) FILTER (WHERE credit_status = 'rejected')
		FROM chain_transfers
	`).Scan(&s.New, &s.Unattributed, &s.PendingApproval, &s.Credited, &s.Rejected)
	if err != nil {
		return model.TransferStats{}, fmt.Errorf("transfer stats: %w", err)
	}
	return s, nil
}
