// Package scanner pages through the ledger's transactions to the custodial
// address, retrying transient failures in place.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/pipeline/retry"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultPageSize = 50

	defaultRetryMaxAttempts = 4
	defaultBackoffInitial   = 200 * time.Millisecond
	defaultBackoffMax       = 3 * time.Second
)

type Scanner struct {
	ledger   chain.LedgerClient
	address  string
	pageSize int
	logger   *slog.Logger

	retryMaxAttempts int
	backoffInitial   time.Duration
	backoffMax       time.Duration
	sleepFn          func(ctx context.Context, d time.Duration) error
}

type Option func(*Scanner)

func WithRetry(maxAttempts int, initial, max time.Duration) Option {
	return func(s *Scanner) {
		s.retryMaxAttempts = maxAttempts
		s.backoffInitial = initial
		s.backoffMax = max
	}
}

func New(ledger chain.LedgerClient, address string, pageSize int, logger *slog.Logger, opts ...Option) *Scanner {
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}
	s := &Scanner{
		ledger:           ledger,
		address:          address,
		pageSize:         pageSize,
		logger:           logger.With("component", "scanner"),
		retryMaxAttempts: defaultRetryMaxAttempts,
		backoffInitial:   defaultBackoffInitial,
		backoffMax:       defaultBackoffMax,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Scanner) Address() string {
	return s.address
}

// NextPage fetches the page after cursor (nil = start of history).
// Transient errors are retried with exponential backoff; terminal errors and
// exhausted retries are returned with their classification.
func (s *Scanner) NextPage(ctx context.Context, cursor *string) (page *chain.TransactionPage, err error) {
	const stage = "scanner.next_page"

	ctx, span := tracing.Tracer("scanner").Start(ctx, stage)
	span.SetAttributes(attribute.String("sui.address", s.address))
	if cursor != nil {
		span.SetAttributes(attribute.String("sui.cursor", *cursor))
	}
	defer func() { tracing.EndSpan(span, err) }()

	network := s.ledger.Network()
	attempts := s.effectiveRetryMaxAttempts()

	var lastErr error
	lastDecision := retry.Decision{
		Class:  retry.ClassTerminal,
		Reason: "unset",
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		page, err := s.ledger.QueryTransactionsToAddress(ctx, s.address, cursor, s.pageSize)
		if err == nil {
			metrics.ScanPagesFetched.WithLabelValues(network).Inc()
			metrics.ScanTransactionsSeen.WithLabelValues(network).Add(float64(len(page.Transactions)))
			span.SetAttributes(
				attribute.Int("sui.page_transactions", len(page.Transactions)),
				attribute.Int("scan.attempts", attempt),
			)
			return page, nil
		}
		lastErr = err
		lastDecision = retry.Classify(err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !lastDecision.IsTransient() {
			return nil, fmt.Errorf("terminal_failure stage=%s attempt=%d reason=%s: %w", stage, attempt, lastDecision.Reason, err)
		}
		if attempt == attempts {
			break
		}

		s.logger.Warn("page fetch failed; retrying",
			"stage", stage,
			"classification", lastDecision.Class,
			"classification_reason", lastDecision.Reason,
			"address", s.address,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err,
		)
		if sleepErr := s.sleep(ctx, s.retryDelay(attempt)); sleepErr != nil {
			return nil, sleepErr
		}
	}

	return nil, fmt.Errorf("transient_recovery_exhausted stage=%s attempts=%d reason=%s: %w", stage, attempts, lastDecision.Reason, lastErr)
}

func (s *Scanner) retryDelay(attempt int) time.Duration {
	base := s.backoffInitial
	max := s.backoffMax
	if base <= 0 {
		base = defaultBackoffInitial
	}
	if max <= 0 || max < base {
		max = base
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= max/2 {
			return max
		}
		delay *= 2
	}
	return delay
}

func (s *Scanner) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if s.sleepFn != nil {
		return s.sleepFn(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scanner) effectiveRetryMaxAttempts() int {
	if s.retryMaxAttempts <= 0 {
		return defaultRetryMaxAttempts
	}
	return s.retryMaxAttempts
}
