package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

type CreditConfigRepo struct {
	db *DB
}

var _ store.CreditConfigRepository = (*CreditConfigRepo)(nil)

func NewCreditConfigRepo(db *DB) *CreditConfigRepo {
	return &CreditConfigRepo{db: db}
}

func scanCreditConfig(row interface{ Scan(...any) error }) (*model.CreditConfig, error) {
	var (
		c               model.CreditConfig
		lookbackSeconds int64
	)
	if err := row.Scan(&c.ExchangeRate, &c.AutoApprovalLimit, &lookbackSeconds, &c.Version, &c.UpdatedBy, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.LookbackWindow = time.Duration(lookbackSeconds) * time.Second
	return &c, nil
}

func (r *CreditConfigRepo) Get(ctx context.Context) (*model.CreditConfig, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	c, err := scanCreditConfig(r.db.QueryRowContext(ctx, `
		SELECT exchange_rate, auto_approval_limit, lookback_window_seconds, version, updated_by, updated_at
		FROM credit_config
		WHERE id = 1
	`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credit config: %w", err)
	}
	return c, nil
}

func (r *CreditConfigRepo) EnsureDefault(ctx context.Context, cfg model.CreditConfig) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credit_config (id, exchange_rate, auto_approval_limit, lookback_window_seconds, updated_by)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, cfg.ExchangeRate, cfg.AutoApprovalLimit, int64(cfg.LookbackWindow/time.Second), updatedByOrSystem(cfg.UpdatedBy))
	if err != nil {
		return fmt.Errorf("seed credit config: %w", err)
	}
	return nil
}

func (r *CreditConfigRepo) Update(ctx context.Context, cfg model.CreditConfig) (*model.CreditConfig, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	c, err := scanCreditConfig(r.db.QueryRowContext(ctx, `
		INSERT INTO credit_config (id, exchange_rate, auto_approval_limit, lookback_window_seconds, updated_by)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			exchange_rate = EXCLUDED.exchange_rate,
			auto_approval_limit = EXCLUDED.auto_approval_limit,
			lookback_window_seconds = EXCLUDED.lookback_window_seconds,
			updated_by = EXCLUDED.updated_by,
			version = credit_config.version + 1,
			updated_at = now()
		RETURNING exchange_rate, auto_approval_limit, lookback_window_seconds, version, updated_by, updated_at
	`, cfg.ExchangeRate, cfg.AutoApprovalLimit, int64(cfg.LookbackWindow/time.Second), updatedByOrSystem(cfg.UpdatedBy)))
	if err != nil {
		return nil, fmt.Errorf("update credit config: %w", err)
	}
	return c, nil
}

func updatedByOrSystem(s string) string {
	if s == "" {
		return "system"
	}
	return s
}
