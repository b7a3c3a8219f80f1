// Package pipeline runs scan cycles: page through the ledger, classify and
// record inbound payments, hand them to the credit engine and advance the
// cursor, one database transaction per page.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/alert"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/credit"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/pipeline/classifier"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/tracing"
)

const (
	defaultInterval         = 10 * time.Second
	defaultMaxPagesPerCycle = 20
	defaultCycleTimeout     = 2 * time.Minute
	lockReleaseTimeout      = 5 * time.Second
)

type Config struct {
	Network            model.Network
	CustodialAddress   string
	Interval           time.Duration
	MaxPagesPerCycle   int
	CycleTimeout       time.Duration
	UnhealthyThreshold int
}

// PageSource yields ledger pages after a cursor.
type PageSource interface {
	NextPage(ctx context.Context, cursor *string) (*chain.TransactionPage, error)
}

// ScanLock keeps scan cycles mutually exclusive across instances.
type ScanLock interface {
	TryLock(ctx context.Context) (token string, ok bool, err error)
	Unlock(ctx context.Context, token string) error
}

// AccountResolver maps a sender address to an account id ("" = none).
type AccountResolver interface {
	Resolve(ctx context.Context, address string) (string, error)
}

// Crediter is the credit engine surface used during a cycle.
type Crediter interface {
	CurrentConfig(ctx context.Context) (model.CreditConfig, error)
	EvaluateTx(ctx context.Context, tx *sql.Tx, t *model.ChainTransfer, cfg model.CreditConfig) (model.CreditDecision, error)
	Announce(ctx context.Context, decisions ...model.CreditDecision)
}

type Deps struct {
	DB         store.TxBeginner
	Cursors    store.CursorRepository
	Transfers  store.TransferRepository
	Source     PageSource
	Classifier *classifier.Classifier
	Resolver   AccountResolver
	Crediter   Crediter
	Lock       ScanLock
	Alerter    alert.Alerter
}

// CycleResult summarizes one scan cycle.
type CycleResult struct {
	Skipped         bool          `json:"skipped,omitempty"`
	Pages           int           `json:"pages"`
	Seen            int           `json:"transactions_seen"`
	Recorded        int           `json:"recorded"`
	Duplicates      int           `json:"duplicates"`
	Ignored         int           `json:"ignored"`
	Credited        int           `json:"credited"`
	PendingApproval int           `json:"pending_approval"`
	Unattributed    int           `json:"unattributed"`
	Cursor          *string       `json:"cursor,omitempty"`
	Checkpoint      int64         `json:"checkpoint"`
	Duration        time.Duration `json:"duration_ns"`
}

func (r *CycleResult) addPage(s CycleResult) {
	r.Recorded += s.Recorded
	r.Duplicates += s.Duplicates
	r.Ignored += s.Ignored
	r.Credited += s.Credited
	r.PendingApproval += s.PendingApproval
	r.Unattributed += s.Unattributed
}

type Pipeline struct {
	cfg        Config
	db         store.TxBeginner
	cursors    store.CursorRepository
	transfers  store.TransferRepository
	source     PageSource
	classifier *classifier.Classifier
	resolver   AccountResolver
	crediter   Crediter
	lock       ScanLock
	alerter    alert.Alerter
	health     *ScanHealth
	logger     *slog.Logger
	now        func() time.Time

	running atomic.Bool
	paused  atomic.Bool
}

func New(cfg Config, deps Deps, logger *slog.Logger) *Pipeline {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.MaxPagesPerCycle <= 0 {
		cfg.MaxPagesPerCycle = defaultMaxPagesPerCycle
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = defaultCycleTimeout
	}
	cfg.CustodialAddress = model.NormalizeAddress(cfg.CustodialAddress)

	alerter := deps.Alerter
	if alerter == nil {
		alerter = &alert.NoopAlerter{}
	}
	return &Pipeline{
		cfg:        cfg,
		db:         deps.DB,
		cursors:    deps.Cursors,
		transfers:  deps.Transfers,
		source:     deps.Source,
		classifier: deps.Classifier,
		resolver:   deps.Resolver,
		crediter:   deps.Crediter,
		lock:       deps.Lock,
		alerter:    alerter,
		health:     NewScanHealth(cfg.Network, cfg.CustodialAddress, cfg.UnhealthyThreshold),
		logger:     logger.With("component", "pipeline", "network", cfg.Network, "address", cfg.CustodialAddress),
		now:        time.Now,
	}
}

func (p *Pipeline) Network() model.Network { return p.cfg.Network }

func (p *Pipeline) Address() string { return p.cfg.CustodialAddress }

func (p *Pipeline) Health() *ScanHealth { return p.health }

func (p *Pipeline) HealthSnapshot() HealthSnapshot { return p.health.Snapshot() }

// Pause stops new cycles from starting; an in-flight cycle completes.
func (p *Pipeline) Pause() {
	if p.paused.CompareAndSwap(false, true) {
		p.health.SetStatus(HealthStatusPaused)
		p.logger.Warn("scanner paused")
	}
}

func (p *Pipeline) Resume() {
	if p.paused.CompareAndSwap(true, false) {
		p.health.SetStatus(HealthStatusUnknown)
		p.logger.Info("scanner resumed")
	}
}

func (p *Pipeline) Paused() bool { return p.paused.Load() }

// Run executes a cycle immediately and then every Interval until ctx is
// done. Cycle failures are recorded in health and never stop the loop.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("scanner started",
		"interval", p.cfg.Interval,
		"max_pages_per_cycle", p.cfg.MaxPagesPerCycle,
		"cycle_timeout", p.cfg.CycleTimeout,
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("scanner stopped")
			return nil
		case <-timer.C:
		}

		if !p.paused.Load() {
			p.runOnce(ctx)
		}
		timer.Reset(p.cfg.Interval)
	}
}

func (p *Pipeline) runOnce(ctx context.Context) {
	network := p.cfg.Network.String()
	res, err := p.RunCycle(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("scan cycle failed", "error", err, "pages", res.Pages)
		becameUnhealthy := p.health.RecordFailure(err)
		p.publishHealth(network)
		if becameUnhealthy {
			p.sendAlert(ctx, alert.Alert{
				Type:    alert.AlertTypeScannerUnhealthy,
				Network: network,
				Title:   "Ledger scanner unhealthy",
				Message: err.Error(),
				Fields: map[string]string{
					"consecutive_failures": fmt.Sprintf("%d", p.health.ConsecutiveFailures()),
					"address":              p.cfg.CustodialAddress,
				},
			})
		}
		return
	}
	if res.Skipped {
		return
	}

	recovered := p.health.RecordSuccess(res)
	p.publishHealth(network)
	if recovered {
		p.sendAlert(ctx, alert.Alert{
			Type:    alert.AlertTypeScannerRecovered,
			Network: network,
			Title:   "Ledger scanner recovered",
			Message: fmt.Sprintf("cycle completed after failures; %d pages scanned", res.Pages),
		})
	}

	log := p.logger.Debug
	if res.Recorded > 0 {
		log = p.logger.Info
	}
	log("scan cycle completed",
		"pages", res.Pages,
		"transactions_seen", res.Seen,
		"recorded", res.Recorded,
		"duplicates", res.Duplicates,
		"ignored", res.Ignored,
		"credited", res.Credited,
		"pending_approval", res.PendingApproval,
		"unattributed", res.Unattributed,
		"checkpoint", res.Checkpoint,
		"duration", res.Duration,
	)
}

func (p *Pipeline) publishHealth(network string) {
	metrics.PipelineHealthStatus.WithLabelValues(network).Set(p.health.Status().gaugeValue())
	metrics.PipelineConsecutiveFailures.WithLabelValues(network).Set(float64(p.health.ConsecutiveFailures()))
}

func (p *Pipeline) sendAlert(ctx context.Context, a alert.Alert) {
	if err := p.alerter.Send(ctx, a); err != nil {
		p.logger.Warn("alert send failed", "type", a.Type, "error", err)
	}
}

// RunCycle runs one single-flight scan cycle bounded by CycleTimeout. A
// cycle that overlaps another (in this process or, through the lock, in
// another instance) is skipped. On any error the cursor stays at the last
// committed page.
func (p *Pipeline) RunCycle(ctx context.Context) (res CycleResult, err error) {
	network := p.cfg.Network.String()

	if p.paused.Load() {
		metrics.ScanCyclesTotal.WithLabelValues(network, "paused").Inc()
		return CycleResult{Skipped: true}, nil
	}
	if !p.running.CompareAndSwap(false, true) {
		metrics.ScanCyclesTotal.WithLabelValues(network, "skipped").Inc()
		return CycleResult{Skipped: true}, nil
	}
	defer p.running.Store(false)

	token, ok, err := p.lock.TryLock(ctx)
	if err != nil {
		metrics.ScanCyclesTotal.WithLabelValues(network, "error").Inc()
		return CycleResult{}, fmt.Errorf("acquire scan lock: %w", err)
	}
	if !ok {
		metrics.ScanCyclesTotal.WithLabelValues(network, "skipped").Inc()
		p.logger.Debug("scan lock held elsewhere; skipping cycle")
		return CycleResult{Skipped: true}, nil
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()
		if unlockErr := p.lock.Unlock(releaseCtx, token); unlockErr != nil {
			p.logger.Warn("release scan lock failed", "error", unlockErr)
		}
	}()

	start := p.now()
	ctx, cancel := context.WithTimeout(ctx, p.cfg.CycleTimeout)
	defer cancel()

	ctx, span := tracing.Tracer("pipeline").Start(ctx, "pipeline.run_cycle")
	span.SetAttributes(attribute.String("sui.network", network), attribute.String("sui.address", p.cfg.CustodialAddress))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan cycle panic: %v\n%s", r, debug.Stack())
		}
		res.Duration = p.now().Sub(start)
		metrics.ScanCycleLatency.WithLabelValues(network).Observe(res.Duration.Seconds())
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.ScanCyclesTotal.WithLabelValues(network, result).Inc()
		span.SetAttributes(attribute.Int("scan.pages", res.Pages), attribute.Int("scan.recorded", res.Recorded))
		tracing.EndSpan(span, err)
	}()

	err = p.scan(ctx, &res)
	return res, err
}

func (p *Pipeline) scan(ctx context.Context, res *CycleResult) error {
	cfg, err := p.crediter.CurrentConfig(ctx)
	if err != nil {
		return err
	}

	if err := p.cursors.EnsureExists(ctx, p.cfg.Network, p.cfg.CustodialAddress); err != nil {
		return fmt.Errorf("ensure cursor: %w", err)
	}
	cursor, err := p.cursors.Get(ctx, p.cfg.Network, p.cfg.CustodialAddress)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}
	if cursor == nil {
		return fmt.Errorf("load cursor: %w", store.ErrNotFound)
	}
	res.Cursor = cursor.CursorValue
	res.Checkpoint = cursor.CheckpointSequence

	for res.Pages < p.cfg.MaxPagesPerCycle {
		page, err := p.source.NextPage(ctx, cursor.CursorValue)
		if err != nil {
			return fmt.Errorf("fetch page after cursor %q: %w", cursor.CursorValueOrEmpty(), err)
		}
		res.Pages++
		res.Seen += len(page.Transactions)

		stats, decisions, err := p.processPage(ctx, cursor, page, cfg)
		if err != nil {
			if errors.Is(err, store.ErrCursorConflict) {
				metrics.CursorConflicts.WithLabelValues(p.cfg.Network.String()).Inc()
				p.sendAlert(ctx, alert.Alert{
					Type:    alert.AlertTypeCursorConflict,
					Network: p.cfg.Network.String(),
					Title:   "Scan cursor moved underneath the scanner",
					Message: "cursor version changed during a cycle; page rolled back",
					Fields:  map[string]string{"expected_version": fmt.Sprintf("%d", cursor.Version)},
				})
			}
			return err
		}
		res.addPage(stats)
		res.Cursor = cursor.CursorValue
		res.Checkpoint = cursor.CheckpointSequence
		p.crediter.Announce(ctx, decisions...)

		if !page.HasNextPage {
			break
		}
	}
	return nil
}

// processPage persists every qualifying transfer of page and advances the
// cursor in one transaction. cursor is updated in place only after commit.
func (p *Pipeline) processPage(
	ctx context.Context,
	cursor *model.SyncCursor,
	page *chain.TransactionPage,
	cfg model.CreditConfig,
) (stats CycleResult, decisions []model.CreditDecision, err error) {
	network := p.cfg.Network.String()

	nextCursor := cursor.CursorValue
	if page.NextCursor != nil {
		nextCursor = page.NextCursor
	}
	if len(page.Transactions) == 0 && sameCursor(nextCursor, cursor.CursorValue) {
		return stats, nil, nil
	}

	ctx, span := tracing.Tracer("pipeline").Start(ctx, "pipeline.process_page")
	span.SetAttributes(attribute.Int("sui.page_transactions", len(page.Transactions)))
	defer func() { tracing.EndSpan(span, err) }()

	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := dbTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			p.logger.Warn("rollback failed", "error", rbErr)
		}
	}()

	checkpoint := cursor.CheckpointSequence
	for _, raw := range page.Transactions {
		if raw.Checkpoint > checkpoint {
			checkpoint = raw.Checkpoint
		}

		verdict := p.classifier.Classify(raw)
		if !verdict.Qualifies() {
			stats.Ignored++
			metrics.ScanIgnoredTransactions.WithLabelValues(network, string(verdict.Reason)).Inc()
			continue
		}

		transfer, err := p.buildTransfer(ctx, verdict.Transfer, cfg)
		if err != nil {
			return stats, nil, err
		}
		inserted, err := p.transfers.RecordIfNewTx(ctx, dbTx, transfer)
		if err != nil {
			return stats, nil, err
		}
		if !inserted {
			stats.Duplicates++
			continue
		}
		stats.Recorded++

		d, err := p.crediter.EvaluateTx(ctx, dbTx, transfer, cfg)
		if err != nil {
			return stats, nil, fmt.Errorf("evaluate %s: %w", transfer.TxHash, err)
		}
		switch d.Outcome {
		case model.CreditOutcomeCredited:
			stats.Credited++
		case model.CreditOutcomePendingApproval:
			stats.PendingApproval++
		case model.CreditOutcomeUnattributed:
			stats.Unattributed++
		}
		decisions = append(decisions, d)
	}

	newVersion, err := p.cursors.AdvanceTx(ctx, dbTx, p.cfg.Network, p.cfg.CustodialAddress, cursor.Version, nextCursor, checkpoint)
	if err != nil {
		return stats, nil, fmt.Errorf("advance cursor: %w", err)
	}
	if err := dbTx.Commit(); err != nil {
		return stats, nil, fmt.Errorf("commit page: %w", err)
	}
	committed = true

	cursor.Version = newVersion
	cursor.CursorValue = nextCursor
	cursor.CheckpointSequence = checkpoint
	cursor.PagesProcessed++

	metrics.CursorCheckpoint.WithLabelValues(network).Set(float64(checkpoint))
	metrics.ScanTransfersRecorded.WithLabelValues(network, string(model.TransferSourceScanner)).Add(float64(stats.Recorded))
	return stats, decisions, nil
}

func (p *Pipeline) buildTransfer(ctx context.Context, ct *model.ClassifiedTransfer, cfg model.CreditConfig) (*model.ChainTransfer, error) {
	t := &model.ChainTransfer{
		Network:        p.cfg.Network,
		TxHash:         ct.TxHash,
		SenderAddress:  ct.SenderAddress,
		AmountNative:   ct.AmountNative,
		Checkpoint:     ct.Checkpoint,
		ChainTimestamp: ct.ChainTimestamp,
		CreditStatus:   model.CreditStatusNew,
		SuggestedSpins: credit.ComputeSpins(ct.AmountNative, cfg.ExchangeRate),
		Source:         model.TransferSourceScanner,
		ChainData:      ct.ChainData,
	}
	account, err := p.resolver.Resolve(ctx, ct.SenderAddress)
	if err != nil {
		return nil, err
	}
	if account != "" {
		t.LinkedAccount = &account
	}
	return t, nil
}

func sameCursor(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
