// Package credit turns recorded payments into spin credits. The engine
// decides per transfer, the Service wraps it with transactions for the
// approval and claim entry points.
package credit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

// ComputeSpins returns floor(amount / rate). Remainders below one spin are
// neither credited nor refunded.
func ComputeSpins(amount, rate decimal.Decimal) int64 {
	if rate.Sign() <= 0 || amount.Sign() <= 0 {
		return 0
	}
	q, _ := amount.QuoRem(rate, 0)
	return q.IntPart()
}

// Engine applies the auto-approval threshold to a single transfer. All
// methods run inside a caller-owned transaction in which the transfer row
// is either freshly inserted or locked with GetForUpdateTx.
type Engine struct {
	transfers store.TransferRepository
	credits   store.CreditRecordRepository
	accounts  store.AccountRepository
	now       func() time.Time
}

func NewEngine(transfers store.TransferRepository, credits store.CreditRecordRepository, accounts store.AccountRepository) *Engine {
	return &Engine{
		transfers: transfers,
		credits:   credits,
		accounts:  accounts,
		now:       time.Now,
	}
}

func baseDecision(t *model.ChainTransfer) model.CreditDecision {
	d := model.CreditDecision{
		TxHash:       t.TxHash,
		Status:       t.CreditStatus,
		AmountNative: t.AmountNative,
		Spins:        t.SuggestedSpins,
	}
	if t.LinkedAccount != nil {
		d.Account = *t.LinkedAccount
	}
	return d
}

// Evaluate credits t when its amount is within cfg.AutoApprovalLimit and
// parks it in pending_approval otherwise. Transfers that already left new
// are reported as already handled without any write. actor is recorded as
// the crediting party; empty means automatic.
func (e *Engine) Evaluate(ctx context.Context, tx *sql.Tx, t *model.ChainTransfer, cfg model.CreditConfig, actor string) (model.CreditDecision, error) {
	d := baseDecision(t)
	d.DecidedAt = e.now().UTC()

	if t.CreditStatus != model.CreditStatusNew {
		d.Outcome = model.CreditOutcomeAlreadyHandled
		metrics.CreditDecisionsTotal.WithLabelValues(string(d.Outcome)).Inc()
		return d, nil
	}
	if !t.Attributed() {
		d.Outcome = model.CreditOutcomeUnattributed
		metrics.CreditDecisionsTotal.WithLabelValues(string(d.Outcome)).Inc()
		return d, nil
	}

	if t.AmountNative.LessThanOrEqual(cfg.AutoApprovalLimit) {
		if actor == "" {
			actor = model.CreditedByAuto
		}
		out, applied, err := e.creditTx(ctx, tx, t, model.CreditStatusNew, actor)
		if err != nil {
			return d, err
		}
		if !applied {
			d.Outcome = model.CreditOutcomeAlreadyHandled
			metrics.CreditDecisionsTotal.WithLabelValues(string(d.Outcome)).Inc()
			return d, nil
		}
		metrics.SpinsCreditedTotal.WithLabelValues("auto").Add(float64(out.Spins))
		metrics.CreditDecisionsTotal.WithLabelValues(string(out.Outcome)).Inc()
		return out, nil
	}

	ok, err := e.transfers.TransitionTx(ctx, tx, store.TransferTransition{
		TxHash: t.TxHash,
		From:   model.CreditStatusNew,
		To:     model.CreditStatusPendingApproval,
	})
	if err != nil {
		return d, fmt.Errorf("mark pending approval %s: %w", t.TxHash, err)
	}
	if !ok {
		d.Outcome = model.CreditOutcomeAlreadyHandled
	} else {
		t.CreditStatus = model.CreditStatusPendingApproval
		d.Status = t.CreditStatus
		d.Outcome = model.CreditOutcomePendingApproval
	}
	metrics.CreditDecisionsTotal.WithLabelValues(string(d.Outcome)).Inc()
	return d, nil
}

// creditTx moves t from `from` to credited, writes its credit record and
// increments the account balance. applied is false when the status-
// conditional update lost to a concurrent writer; nothing is written then.
func (e *Engine) creditTx(ctx context.Context, tx *sql.Tx, t *model.ChainTransfer, from model.CreditStatus, creditedBy string) (model.CreditDecision, bool, error) {
	d := baseDecision(t)
	if !t.Attributed() {
		return d, false, ErrUnattributed
	}
	now := e.now().UTC()
	d.DecidedAt = now

	ok, err := e.transfers.TransitionTx(ctx, tx, store.TransferTransition{
		TxHash:     t.TxHash,
		From:       from,
		To:         model.CreditStatusCredited,
		ResolvedBy: &creditedBy,
		ResolvedAt: now,
	})
	if err != nil {
		return d, false, fmt.Errorf("mark credited %s: %w", t.TxHash, err)
	}
	if !ok {
		return d, false, nil
	}

	rec := &model.SpinCreditRecord{
		TxHash:        t.TxHash,
		Account:       d.Account,
		SpinsCredited: t.SuggestedSpins,
		CreditedBy:    creditedBy,
		CreditedAt:    now,
	}
	inserted, err := e.credits.InsertTx(ctx, tx, rec)
	if err != nil {
		return d, false, fmt.Errorf("insert credit record %s: %w", t.TxHash, err)
	}
	if !inserted {
		return d, false, fmt.Errorf("credit record for %s already exists", t.TxHash)
	}

	balance, err := e.accounts.AddSpinsTx(ctx, tx, d.Account, t.SuggestedSpins)
	if err != nil {
		return d, false, fmt.Errorf("add spins to %s: %w", d.Account, err)
	}

	t.CreditStatus = model.CreditStatusCredited
	t.ResolvedBy = &creditedBy
	t.ResolvedAt = &now

	d.Outcome = model.CreditOutcomeCredited
	d.Status = model.CreditStatusCredited
	d.CreditedBy = creditedBy
	d.Balance = balance
	return d, true, nil
}
