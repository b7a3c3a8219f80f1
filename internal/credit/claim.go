package credit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

type ClaimResult string

const (
	ClaimResultCredited ClaimResult = "credited"
	ClaimResultSkipped  ClaimResult = "skipped"
	ClaimResultFailed   ClaimResult = "failed"
)

// Skip reasons reported per claimed hash.
const (
	SkipReasonUnknown             = "unknown"
	SkipReasonAlreadyCredited     = "already_credited"
	SkipReasonAlreadyRejected     = "already_rejected"
	SkipReasonPendingApproval     = "pending_approval"
	SkipReasonUnattributed        = "unattributed"
	SkipReasonAttributedElsewhere = "attributed_elsewhere"
)

type ClaimItem struct {
	TxHash string             `json:"tx_hash"`
	Result ClaimResult        `json:"result"`
	Reason string             `json:"reason,omitempty"`
	Status model.CreditStatus `json:"status,omitempty"`
	Spins  int64              `json:"spins,omitempty"`
}

type ClaimSummary struct {
	Credited int         `json:"credited"`
	Skipped  int         `json:"skipped"`
	Failed   int         `json:"failed"`
	Items    []ClaimItem `json:"items"`
}

func (s *ClaimSummary) add(item ClaimItem) {
	switch item.Result {
	case ClaimResultCredited:
		s.Credited++
	case ClaimResultFailed:
		s.Failed++
	default:
		s.Skipped++
	}
	s.Items = append(s.Items, item)
}

// ClaimOptions controls a bulk claim. AttributeTo links unattributed
// transfers to that account before evaluation; Actor is recorded as the
// crediting party.
type ClaimOptions struct {
	AttributeTo *string
	Actor       string
}

// ClaimMany runs every hash through the credit engine in its own
// transaction. A failure on one hash is reported in its item and does not
// stop the rest. Transfers routed to pending_approval count as skipped.
func (s *Service) ClaimMany(ctx context.Context, txHashes []string, opts ClaimOptions) (ClaimSummary, error) {
	cfg, err := s.CurrentConfig(ctx)
	if err != nil {
		return ClaimSummary{}, err
	}

	summary := ClaimSummary{Items: make([]ClaimItem, 0, len(txHashes))}
	for _, raw := range txHashes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		txHash := strings.TrimSpace(raw)
		item, decision, err := s.claimOne(ctx, txHash, cfg, opts)
		if err != nil {
			s.logger.Warn("claim item failed", "tx_hash", txHash, "error", err)
			item = ClaimItem{TxHash: txHash, Result: ClaimResultFailed, Reason: err.Error()}
		} else if decision != nil {
			s.Announce(ctx, *decision)
		}
		summary.add(item)
	}

	s.logger.Info("bulk claim processed",
		"actor", opts.Actor,
		"requested", len(txHashes),
		"credited", summary.Credited,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (s *Service) claimOne(ctx context.Context, txHash string, cfg model.CreditConfig, opts ClaimOptions) (ClaimItem, *model.CreditDecision, error) {
	item := ClaimItem{TxHash: txHash, Result: ClaimResultSkipped}
	if txHash == "" {
		item.Reason = SkipReasonUnknown
		return item, nil, nil
	}

	var decision *model.CreditDecision
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		t, err := s.transfers.GetForUpdateTx(ctx, tx, txHash)
		if errors.Is(err, store.ErrNotFound) {
			item.Reason = SkipReasonUnknown
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock transfer: %w", err)
		}
		item.Status = t.CreditStatus

		switch t.CreditStatus {
		case model.CreditStatusCredited:
			item.Reason = SkipReasonAlreadyCredited
			return nil
		case model.CreditStatusRejected:
			item.Reason = SkipReasonAlreadyRejected
			return nil
		case model.CreditStatusPendingApproval:
			item.Reason = SkipReasonPendingApproval
			return nil
		}

		if opts.AttributeTo != nil && *opts.AttributeTo != "" {
			account := *opts.AttributeTo
			if t.Attributed() && *t.LinkedAccount != account {
				item.Reason = SkipReasonAttributedElsewhere
				return nil
			}
			if !t.Attributed() {
				ok, err := s.transfers.AttributeTx(ctx, tx, txHash, account)
				if err != nil {
					return fmt.Errorf("attribute transfer: %w", err)
				}
				if !ok {
					item.Reason = SkipReasonAttributedElsewhere
					return nil
				}
				t.LinkedAccount = &account
			}
		}
		if !t.Attributed() {
			item.Reason = SkipReasonUnattributed
			return nil
		}

		d, err := s.engine.Evaluate(ctx, tx, t, cfg, opts.Actor)
		if err != nil {
			return err
		}
		item.Status = d.Status
		switch d.Outcome {
		case model.CreditOutcomeCredited:
			item.Result = ClaimResultCredited
			item.Spins = d.Spins
		case model.CreditOutcomePendingApproval:
			item.Reason = SkipReasonPendingApproval
		default:
			item.Reason = string(d.Outcome)
		}
		decision = &d
		return nil
	})
	if err != nil {
		return ClaimItem{}, nil, err
	}
	return item, decision, nil
}

// ClaimReceipt is the result of a player claim.
type ClaimReceipt struct {
	Transfer *model.ChainTransfer
	Decision model.CreditDecision
}

// ClaimOwn attributes txHash to account and evaluates it. Hashes the
// scanner has not recorded yet are fetched from the ledger, classified and
// recorded first. Claiming a transfer that is already resolved for the same
// account returns its current state.
func (s *Service) ClaimOwn(ctx context.Context, account, txHash string) (*ClaimReceipt, error) {
	txHash = strings.TrimSpace(txHash)
	if account == "" {
		return nil, ErrUnattributed
	}
	if txHash == "" {
		return nil, ErrTransferNotFound
	}

	cfg, err := s.CurrentConfig(ctx)
	if err != nil {
		return nil, err
	}

	var fetched *model.ChainTransfer
	if _, err := s.transfers.Get(ctx, txHash); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get transfer: %w", err)
		}
		fetched, err = s.fetchTransfer(ctx, txHash, cfg)
		if err != nil {
			return nil, err
		}
		if err := s.checkLookback(fetched, cfg); err != nil {
			return nil, err
		}
	}

	actor := "claim:" + account
	var receipt *ClaimReceipt
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if fetched != nil {
			inserted, err := s.transfers.RecordIfNewTx(ctx, tx, fetched)
			if err != nil {
				return err
			}
			if inserted {
				s.logger.Info("claimed transfer recorded", "tx_hash", txHash, "account", account)
			}
		}

		t, err := s.transfers.GetForUpdateTx(ctx, tx, txHash)
		if errors.Is(err, store.ErrNotFound) {
			return ErrTransferNotFound
		}
		if err != nil {
			return fmt.Errorf("lock transfer: %w", err)
		}
		if t.Attributed() && *t.LinkedAccount != account {
			return ErrAttributedElsewhere
		}

		if t.CreditStatus == model.CreditStatusNew && !t.Attributed() {
			if err := s.checkLookback(t, cfg); err != nil {
				return err
			}
			ok, err := s.transfers.AttributeTx(ctx, tx, txHash, account)
			if err != nil {
				return fmt.Errorf("attribute transfer: %w", err)
			}
			if !ok {
				return ErrAttributedElsewhere
			}
			t.LinkedAccount = &account
		}

		d, err := s.engine.Evaluate(ctx, tx, t, cfg, actor)
		if err != nil {
			return err
		}
		receipt = &ClaimReceipt{Transfer: t, Decision: d}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player claim processed",
		"tx_hash", txHash,
		"account", account,
		"outcome", receipt.Decision.Outcome,
		"status", receipt.Transfer.CreditStatus,
	)
	s.Announce(ctx, receipt.Decision)
	return receipt, nil
}

func (s *Service) fetchTransfer(ctx context.Context, txHash string, cfg model.CreditConfig) (*model.ChainTransfer, error) {
	if s.ledger == nil || s.classifier == nil {
		return nil, ErrTransferNotFound
	}
	raw, err := s.ledger.GetTransaction(ctx, txHash)
	if errors.Is(err, chain.ErrTransactionNotFound) {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch transaction %s: %w", txHash, err)
	}

	verdict := s.classifier.Classify(*raw)
	if !verdict.Qualifies() {
		return nil, fmt.Errorf("%w: %s", ErrNotQualifying, verdict.Reason)
	}
	ct := verdict.Transfer
	t := &model.ChainTransfer{
		Network:        s.network(),
		TxHash:         ct.TxHash,
		SenderAddress:  ct.SenderAddress,
		AmountNative:   ct.AmountNative,
		Checkpoint:     ct.Checkpoint,
		ChainTimestamp: ct.ChainTimestamp,
		CreditStatus:   model.CreditStatusNew,
		SuggestedSpins: ComputeSpins(ct.AmountNative, cfg.ExchangeRate),
		Source:         model.TransferSourceClaim,
		ChainData:      ct.ChainData,
	}

	// A linked sender owns the payment no matter who submits the hash.
	owner, err := s.senders.Resolve(ctx, ct.SenderAddress)
	if err != nil {
		return nil, fmt.Errorf("resolve sender %s: %w", ct.SenderAddress, err)
	}
	if owner != "" {
		t.LinkedAccount = &owner
	}
	return t, nil
}

// checkLookback refuses transfers older than the configured window. A zero
// window disables the check.
func (s *Service) checkLookback(t *model.ChainTransfer, cfg model.CreditConfig) error {
	if cfg.LookbackWindow <= 0 {
		return nil
	}
	ts := t.ObservedAt
	if t.ChainTimestamp != nil {
		ts = *t.ChainTimestamp
	}
	if ts.IsZero() {
		return nil
	}
	if s.now().Sub(ts) > cfg.LookbackWindow {
		return fmt.Errorf("%w: payment at %s", ErrOutsideLookback, ts.UTC().Format(time.RFC3339))
	}
	return nil
}
