package credit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

func (s *Service) lockPending(ctx context.Context, tx *sql.Tx, txHash string) (*model.ChainTransfer, error) {
	t, err := s.transfers.GetForUpdateTx(ctx, tx, txHash)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock transfer %s: %w", txHash, err)
	}
	switch t.CreditStatus {
	case model.CreditStatusPendingApproval:
		return t, nil
	case model.CreditStatusCredited, model.CreditStatusRejected:
		return nil, ErrAlreadyResolved
	default:
		return nil, ErrNotPending
	}
}

// Approve credits a pending_approval transfer on behalf of adminID.
// Resolving an already credited or rejected transfer returns
// ErrAlreadyResolved and changes nothing.
func (s *Service) Approve(ctx context.Context, txHash, adminID string) (model.CreditDecision, error) {
	var d model.CreditDecision
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		t, err := s.lockPending(ctx, tx, txHash)
		if err != nil {
			return err
		}
		out, applied, err := s.engine.creditTx(ctx, tx, t, model.CreditStatusPendingApproval, adminID)
		if err != nil {
			return err
		}
		if !applied {
			return ErrAlreadyResolved
		}
		d = out
		return nil
	})
	if err != nil {
		metrics.CreditResolutionsTotal.WithLabelValues("approve", resolutionResult(err)).Inc()
		return model.CreditDecision{}, err
	}
	metrics.CreditResolutionsTotal.WithLabelValues("approve", "ok").Inc()
	metrics.SpinsCreditedTotal.WithLabelValues("approval").Add(float64(d.Spins))

	s.logger.Info("payment approved", "tx_hash", txHash, "admin", adminID, "account", d.Account, "spins", d.Spins)
	s.Announce(ctx, d)
	return d, nil
}

// Reject permanently refuses a pending_approval transfer. reason is shown to
// the player and may be empty.
func (s *Service) Reject(ctx context.Context, txHash, adminID, reason string) (*model.ChainTransfer, error) {
	var result *model.ChainTransfer
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		t, err := s.lockPending(ctx, tx, txHash)
		if err != nil {
			return err
		}
		var reasonPtr *string
		if reason != "" {
			reasonPtr = &reason
		}
		now := s.now().UTC()
		ok, err := s.transfers.TransitionTx(ctx, tx, store.TransferTransition{
			TxHash:          txHash,
			From:            model.CreditStatusPendingApproval,
			To:              model.CreditStatusRejected,
			RejectionReason: reasonPtr,
			ResolvedBy:      &adminID,
			ResolvedAt:      now,
		})
		if err != nil {
			return fmt.Errorf("mark rejected %s: %w", txHash, err)
		}
		if !ok {
			return ErrAlreadyResolved
		}
		t.CreditStatus = model.CreditStatusRejected
		t.RejectionReason = reasonPtr
		t.ResolvedBy = &adminID
		t.ResolvedAt = &now
		result = t
		return nil
	})
	if err != nil {
		metrics.CreditResolutionsTotal.WithLabelValues("reject", resolutionResult(err)).Inc()
		return nil, err
	}
	metrics.CreditResolutionsTotal.WithLabelValues("reject", "ok").Inc()
	s.logger.Info("payment rejected", "tx_hash", txHash, "admin", adminID, "reason", reason)
	return result, nil
}

func resolutionResult(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyResolved):
		return "conflict"
	case errors.Is(err, ErrTransferNotFound):
		return "not_found"
	case errors.Is(err, ErrNotPending):
		return "not_pending"
	default:
		return "error"
	}
}
