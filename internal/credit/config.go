package credit

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

// ValidateConfig rejects configurations the engine cannot apply.
func ValidateConfig(cfg model.CreditConfig) error {
	if cfg.ExchangeRate.Sign() <= 0 {
		return fmt.Errorf("%w: exchange rate must be positive", ErrInvalidConfig)
	}
	if !isWholeMist(cfg.ExchangeRate) {
		return fmt.Errorf("%w: exchange rate %s is not a whole number of MIST", ErrInvalidConfig, cfg.ExchangeRate)
	}
	if cfg.AutoApprovalLimit.Sign() < 0 {
		return fmt.Errorf("%w: auto approval limit must not be negative", ErrInvalidConfig)
	}
	if !isWholeMist(cfg.AutoApprovalLimit) {
		return fmt.Errorf("%w: auto approval limit %s is not a whole number of MIST", ErrInvalidConfig, cfg.AutoApprovalLimit)
	}
	if cfg.LookbackWindow < 0 {
		return fmt.Errorf("%w: lookback window must not be negative", ErrInvalidConfig)
	}
	return nil
}

// MIST columns are NUMERIC(39,0); anything finer would be rounded on write.
func isWholeMist(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(0))
}

// CurrentConfig loads the active credit configuration. Callers load it once
// per cycle or request and pass it down explicitly.
func (s *Service) CurrentConfig(ctx context.Context) (model.CreditConfig, error) {
	cfg, err := s.configs.Get(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return model.CreditConfig{}, fmt.Errorf("credit config not initialized: %w", err)
	}
	if err != nil {
		return model.CreditConfig{}, fmt.Errorf("load credit config: %w", err)
	}
	return *cfg, nil
}

// UpdateConfig replaces the configuration. Already recorded transfers keep
// their suggested spins.
func (s *Service) UpdateConfig(ctx context.Context, cfg model.CreditConfig, updatedBy string) (model.CreditConfig, error) {
	if err := ValidateConfig(cfg); err != nil {
		return model.CreditConfig{}, err
	}
	cfg.UpdatedBy = updatedBy
	updated, err := s.configs.Update(ctx, cfg)
	if err != nil {
		return model.CreditConfig{}, fmt.Errorf("update credit config: %w", err)
	}
	s.logger.Info("credit config updated",
		"exchange_rate", updated.ExchangeRate.String(),
		"auto_approval_limit", updated.AutoApprovalLimit.String(),
		"lookback_window", updated.LookbackWindow,
		"version", updated.Version,
		"updated_by", updatedBy,
	)
	return *updated, nil
}
