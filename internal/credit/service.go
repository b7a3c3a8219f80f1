package credit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/alert"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/pipeline/classifier"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

// EventPublisher delivers credit events to downstream consumers.
type EventPublisher interface {
	PublishCredit(ctx context.Context, ev model.CreditEvent) error
}

type noopPublisher struct{}

func (noopPublisher) PublishCredit(context.Context, model.CreditEvent) error { return nil }

// Repositories groups the stores the credit service writes through.
type Repositories struct {
	Transfers store.TransferRepository
	Credits   store.CreditRecordRepository
	Accounts  store.AccountRepository
	Configs   store.CreditConfigRepository
}

// SenderResolver maps a sender address to its linked account ("" = none).
// The scan cycle and the claim path must attribute through the same one.
type SenderResolver interface {
	Resolve(ctx context.Context, address string) (string, error)
}

type repoResolver struct {
	accounts store.AccountRepository
}

func (r repoResolver) Resolve(ctx context.Context, address string) (string, error) {
	return r.accounts.ResolveAccount(ctx, address)
}

type Option func(*Service)

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithSenderResolver replaces the uncached repository lookup used to
// attribute transfers fetched on the claim path.
func WithSenderResolver(r SenderResolver) Option {
	return func(s *Service) {
		if r != nil {
			s.senders = r
		}
	}
}

func WithAlerter(a alert.Alerter) Option {
	return func(s *Service) {
		if a != nil {
			s.alerter = a
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
			s.engine.now = now
		}
	}
}

// Service owns the transactional credit entry points: automatic evaluation
// hand-off from the scanner, administrator approval and both claim paths.
type Service struct {
	db         store.TxBeginner
	transfers  store.TransferRepository
	credits    store.CreditRecordRepository
	accounts   store.AccountRepository
	configs    store.CreditConfigRepository
	senders    SenderResolver
	engine     *Engine
	ledger     chain.LedgerClient
	classifier *classifier.Classifier
	publisher  EventPublisher
	alerter    alert.Alerter
	now        func() time.Time
	logger     *slog.Logger
}

func NewService(
	db store.TxBeginner,
	repos Repositories,
	ledger chain.LedgerClient,
	cls *classifier.Classifier,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		db:         db,
		transfers:  repos.Transfers,
		credits:    repos.Credits,
		accounts:   repos.Accounts,
		configs:    repos.Configs,
		senders:    repoResolver{accounts: repos.Accounts},
		engine:     NewEngine(repos.Transfers, repos.Credits, repos.Accounts),
		ledger:     ledger,
		classifier: cls,
		publisher:  noopPublisher{},
		alerter:    &alert.NoopAlerter{},
		now:        time.Now,
		logger:     logger.With("component", "credit"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the engine for callers that evaluate inside their own
// transaction (the scan cycle).
func (s *Service) Engine() *Engine {
	return s.engine
}

// EvaluateTx runs automatic evaluation for a transfer recorded in tx.
func (s *Service) EvaluateTx(ctx context.Context, tx *sql.Tx, t *model.ChainTransfer, cfg model.CreditConfig) (model.CreditDecision, error) {
	return s.engine.Evaluate(ctx, tx, t, cfg, "")
}

func (s *Service) network() model.Network {
	if s.ledger == nil {
		return ""
	}
	return model.Network(s.ledger.Network())
}

func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Warn("rollback failed", "error", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Announce publishes credit events and approval alerts for decisions whose
// transaction has committed. Delivery failures are logged and swallowed.
func (s *Service) Announce(ctx context.Context, decisions ...model.CreditDecision) {
	for _, d := range decisions {
		switch d.Outcome {
		case model.CreditOutcomeCredited:
			ev := model.CreditEvent{
				TxHash:       d.TxHash,
				Network:      s.network(),
				Account:      d.Account,
				AmountNative: d.AmountNative,
				Spins:        d.Spins,
				Balance:      d.Balance,
				CreditedBy:   d.CreditedBy,
				CreditedAt:   d.DecidedAt,
			}
			if err := s.publisher.PublishCredit(ctx, ev); err != nil {
				metrics.CreditEventsPublished.WithLabelValues("error").Inc()
				s.logger.Warn("publish credit event failed", "tx_hash", d.TxHash, "error", err)
				continue
			}
			metrics.CreditEventsPublished.WithLabelValues("ok").Inc()
		case model.CreditOutcomePendingApproval:
			a := alert.Alert{
				Type:    alert.AlertTypePendingApproval,
				Network: string(s.network()),
				Key:     d.TxHash,
				Title:   "Payment awaiting approval",
				Message: fmt.Sprintf("%s SUI exceeds the auto-approval limit", model.MistToSui(d.AmountNative).String()),
				Fields: map[string]string{
					"tx_hash": d.TxHash,
					"account": d.Account,
					"spins":   fmt.Sprintf("%d", d.Spins),
				},
			}
			if err := s.alerter.Send(ctx, a); err != nil {
				s.logger.Warn("pending approval alert failed", "tx_hash", d.TxHash, "error", err)
			}
		}
	}
}
