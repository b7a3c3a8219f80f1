// Package reconciliation cross-checks the payment ledger against the spin
// credit records and balances it produced.
package reconciliation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/alert"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

// FindingKind names one class of ledger inconsistency.
type FindingKind string

const (
	// A transfer is credited but no credit record exists.
	KindMissingCreditRecord FindingKind = "missing_credit_record"
	// A credit record exists for a transfer that is not credited.
	KindOrphanCreditRecord FindingKind = "orphan_credit_record"
	// The record's spins differ from the transfer's suggested spins.
	KindSpinsMismatch FindingKind = "spins_mismatch"
	// The record's account differs from the transfer's linked account.
	KindAccountMismatch FindingKind = "account_mismatch"
	// An account holds more spins than were ever credited to it.
	KindBalanceExceedsCredits FindingKind = "balance_exceeds_credits"
)

// AllKinds lists every finding kind in report order.
var AllKinds = []FindingKind{
	KindMissingCreditRecord,
	KindOrphanCreditRecord,
	KindSpinsMismatch,
	KindAccountMismatch,
	KindBalanceExceedsCredits,
}

// Finding is one discrepancy. Expected is what the ledger implies and
// Actual what was found; TxHash is empty for balance findings.
type Finding struct {
	Kind      FindingKind `json:"kind"`
	TxHash    string      `json:"tx_hash,omitempty"`
	AccountID string      `json:"account_id,omitempty"`
	Expected  int64       `json:"expected"`
	Actual    int64       `json:"actual"`
}

// RunResult aggregates one reconciliation run.
type RunResult struct {
	RunID      uuid.UUID           `json:"run_id"`
	Network    string              `json:"network"`
	Counts     map[FindingKind]int `json:"counts"`
	Findings   []Finding           `json:"findings"`
	Truncated  bool                `json:"truncated"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}

// Consistent reports whether the run found nothing.
func (r *RunResult) Consistent() bool {
	return len(r.Findings) == 0
}

// Source finds discrepancies, at most limit of them.
type Source interface {
	FindDiscrepancies(ctx context.Context, limit int) ([]Finding, error)
}

// SnapshotRepository persists reconciliation results.
type SnapshotRepository interface {
	SaveFindings(ctx context.Context, tx *sql.Tx, runID uuid.UUID, checkedAt time.Time, findings []Finding) error
}

const DefaultMaxFindings = 1000

// ErrRunInProgress is returned when Reconcile is called while a run is active.
var ErrRunInProgress = errors.New("reconciliation already running")

// Service performs ledger reconciliation.
type Service struct {
	db           store.TxBeginner
	source       Source
	snapshotRepo SnapshotRepository
	network      string
	maxFindings  int
	alerter      alert.Alerter
	logger       *slog.Logger
	now          func() time.Time

	mu      sync.Mutex
	running bool
	last    *RunResult
}

// NewService creates a reconciliation service.
func NewService(db store.TxBeginner, source Source, network string, alerter alert.Alerter, logger *slog.Logger) *Service {
	if alerter == nil {
		alerter = &alert.NoopAlerter{}
	}
	return &Service{
		db:          db,
		source:      source,
		network:     network,
		maxFindings: DefaultMaxFindings,
		alerter:     alerter,
		logger:      logger.With("component", "reconciliation"),
		now:         time.Now,
	}
}

// SetSnapshotRepository sets the optional snapshot persistence layer.
func (s *Service) SetSnapshotRepository(repo SnapshotRepository) {
	s.snapshotRepo = repo
}

// Last returns the most recent completed run, or nil.
func (s *Service) Last() *RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Reconcile runs one pass. Runs do not overlap; a concurrent call returns
// ErrRunInProgress.
func (s *Service) Reconcile(ctx context.Context) (*RunResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	result := &RunResult{
		RunID:     uuid.New(),
		Network:   s.network,
		Counts:    make(map[FindingKind]int, len(AllKinds)),
		StartedAt: s.now().UTC(),
	}

	findings, err := s.source.FindDiscrepancies(ctx, s.maxFindings+1)
	if err != nil {
		metrics.ReconciliationRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("find discrepancies: %w", err)
	}
	if len(findings) > s.maxFindings {
		findings = findings[:s.maxFindings]
		result.Truncated = true
	}
	result.Findings = findings
	for _, f := range findings {
		result.Counts[f.Kind]++
	}
	result.FinishedAt = s.now().UTC()

	for _, kind := range AllKinds {
		metrics.ReconciliationFindings.WithLabelValues(string(kind)).Set(float64(result.Counts[kind]))
	}

	if result.Consistent() {
		metrics.ReconciliationRunsTotal.WithLabelValues("consistent").Inc()
	} else {
		metrics.ReconciliationRunsTotal.WithLabelValues("mismatch").Inc()
		s.sendMismatchAlert(ctx, result)
		if s.snapshotRepo != nil {
			if err := s.saveFindings(ctx, result); err != nil {
				s.logger.Warn("failed to save reconciliation findings", "run_id", result.RunID, "error", err)
			}
		}
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	s.logger.Info("reconciliation completed",
		"run_id", result.RunID,
		"findings", len(result.Findings),
		"truncated", result.Truncated,
	)
	return result, nil
}

func (s *Service) saveFindings(ctx context.Context, result *RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := s.snapshotRepo.SaveFindings(ctx, tx, result.RunID, result.FinishedAt, result.Findings); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Service) sendMismatchAlert(ctx context.Context, result *RunResult) {
	fields := map[string]string{"run_id": result.RunID.String()}
	kinds := make([]string, 0, len(result.Counts))
	for kind, n := range result.Counts {
		fields[string(kind)] = strconv.Itoa(n)
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	msg := fmt.Sprintf("%d ledger discrepancies found (%v)", len(result.Findings), kinds)
	if result.Truncated {
		msg += "; list truncated"
	}
	if err := s.alerter.Send(ctx, alert.Alert{
		Type:    alert.AlertTypeLedgerMismatch,
		Network: result.Network,
		Title:   "Spin ledger reconciliation mismatch",
		Message: msg,
		Fields:  fields,
	}); err != nil {
		s.logger.Warn("failed to send reconciliation alert", "error", err)
	}
}

// RunPeriodic reconciles every interval until ctx is cancelled.
func (s *Service) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}

	s.logger.Info("periodic reconciliation started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("periodic reconciliation stopping")
			return nil
		case <-ticker.C:
			if _, err := s.Reconcile(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("periodic reconciliation failed", "error", err)
			}
		}
	}
}
