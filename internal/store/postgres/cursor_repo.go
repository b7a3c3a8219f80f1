package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

type CursorRepo struct {
	db *DB
}

var _ store.CursorRepository = (*CursorRepo)(nil)

func NewCursorRepo(db *DB) *CursorRepo {
	return &CursorRepo{db: db}
}

const cursorColumns = `id, network, address, cursor_value, checkpoint_sequence, pages_processed,
	version, last_synced_at, created_at, updated_at`

func scanCursor(row interface{ Scan(...any) error }) (*model.SyncCursor, error) {
	var c model.SyncCursor
	err := row.Scan(
		&c.ID, &c.Network, &c.Address, &c.CursorValue, &c.CheckpointSequence,
		&c.PagesProcessed, &c.Version, &c.LastSyncedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CursorRepo) Get(ctx context.Context, network model.Network, address string) (*model.SyncCursor, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	c, err := scanCursor(r.db.QueryRowContext(ctx, `
		SELECT `+cursorColumns+`
		FROM sync_cursors
		WHERE network = $1 AND address = $2
	`, network, address))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cursor: %w", err)
	}
	return c, nil
}

func (r *CursorRepo) EnsureExists(ctx context.Context, network model.Network, address string) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_cursors (network, address)
		VALUES ($1, $2)
		ON CONFLICT (network, address) DO NOTHING
	`, network, address)
	if err != nil {
		return fmt.Errorf("ensure cursor exists: %w", err)
	}
	return nil
}

func (r *CursorRepo) AdvanceTx(
	ctx context.Context,
	tx *sql.Tx,
	network model.Network,
	address string,
	expectedVersion int64,
	cursorValue *string,
	checkpoint int64,
) (int64, error) {
	var version int64
	err := tx.QueryRowContext(ctx, `
		UPDATE sync_cursors SET
			cursor_value = $4,
			checkpoint_sequence = GREATEST(checkpoint_sequence, $5),
			pages_processed = pages_processed + 1,
			version = version + 1,
			last_synced_at = now(),
			updated_at = now()
		WHERE network = $1 AND address = $2 AND version = $3
		RETURNING version
	`, network, address, expectedVersion, cursorValue, checkpoint).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrCursorConflict
	}
	if err != nil {
		return 0, fmt.Errorf("advance cursor: %w", err)
	}
	return version, nil
}

func (r *CursorRepo) Reset(ctx context.Context, network model.Network, address string, cursorValue *string) (*model.SyncCursor, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	c, err := scanCursor(r.db.QueryRowContext(ctx, `
		INSERT INTO sync_cursors (network, address, cursor_value, version)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (network, address) DO UPDATE SET
			cursor_value = EXCLUDED.cursor_value,
			checkpoint_sequence = 0,
			version = sync_cursors.version + 1,
			updated_at = now()
		RETURNING `+cursorColumns, network, address, cursorValue))
	if err != nil {
		return nil, fmt.Errorf("reset cursor: %w", err)
	}
	return c, nil
}
