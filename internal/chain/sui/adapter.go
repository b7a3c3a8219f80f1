package sui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain/ratelimit"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain/sui/rpc"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/circuitbreaker"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
	"github.com/shopspring/decimal"
)

const (
	methodQuery      = "suix_queryTransactionBlocks"
	methodGet        = "sui_getTransactionBlock"
	methodCheckpoint = "sui_getLatestCheckpointSequenceNumber"
)

var txOptions = rpc.ResponseOptions{
	ShowInput:          true,
	ShowEffects:        true,
	ShowBalanceChanges: true,
}

// Config tunes the adapter's client-side protections.
type Config struct {
	Network         string
	RPS             float64
	Burst           int
	BreakerFailures int
	BreakerTimeout  time.Duration
}

type Adapter struct {
	client  rpc.RPCClient
	network string
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.Breaker
	logger  *slog.Logger
}

var _ chain.LedgerClient = (*Adapter)(nil)

func NewAdapter(rpcURL string, cfg Config, logger *slog.Logger) *Adapter {
	return newAdapter(rpc.NewClient(rpcURL, logger), cfg, logger)
}

func newAdapter(client rpc.RPCClient, cfg Config, logger *slog.Logger) *Adapter {
	logger = logger.With("component", "sui_adapter", "network", cfg.Network)
	return &Adapter{
		client:  client,
		network: cfg.Network,
		limiter: ratelimit.NewLimiter(cfg.RPS, cfg.Burst),
		breaker: circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: cfg.BreakerFailures,
			OpenTimeout:      cfg.BreakerTimeout,
			ShouldTrip:       shouldTrip,
			OnStateChange: func(from, to circuitbreaker.State) {
				metrics.RPCCircuitState.Set(float64(to))
				logger.Warn("rpc circuit state changed", "from", from.String(), "to", to.String())
			},
		}),
		logger: logger,
	}
}

func (a *Adapter) Network() string {
	return a.network
}

func (a *Adapter) QueryTransactionsToAddress(ctx context.Context, address string, cursor *string, limit int) (*chain.TransactionPage, error) {
	query := rpc.TransactionBlockResponseQuery{
		Filter:  rpc.TransactionFilter{ToAddress: address},
		Options: txOptions,
	}

	var page *rpc.TransactionBlocksPage
	err := a.do(ctx, methodQuery, func() error {
		var err error
		page, err = a.client.QueryTransactionBlocks(ctx, query, cursor, limit, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &chain.TransactionPage{
		Transactions: make([]chain.RawTransaction, 0, len(page.Data)),
		NextCursor:   page.NextCursor,
		HasNextPage:  page.HasNextPage,
	}
	for i := range page.Data {
		tx, err := convertTransaction(&page.Data[i])
		if err != nil {
			return nil, err
		}
		out.Transactions = append(out.Transactions, tx)
	}

	a.logger.Debug("queried transactions",
		"address", address,
		"cursor", cursor,
		"count", len(out.Transactions),
		"has_next_page", out.HasNextPage,
	)
	return out, nil
}

func (a *Adapter) GetTransaction(ctx context.Context, digest string) (*chain.RawTransaction, error) {
	var resp *rpc.TransactionBlockResponse
	err := a.do(ctx, methodGet, func() error {
		var err error
		resp, err = a.client.GetTransactionBlock(ctx, digest, txOptions)
		return err
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", digest, chain.ErrTransactionNotFound)
		}
		return nil, err
	}

	tx, err := convertTransaction(resp)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (a *Adapter) GetLatestCheckpoint(ctx context.Context) (int64, error) {
	var seq int64
	err := a.do(ctx, methodCheckpoint, func() error {
		var err error
		seq, err = a.client.GetLatestCheckpointSequenceNumber(ctx)
		return err
	})
	return seq, err
}

func (a *Adapter) do(ctx context.Context, method string, fn func() error) error {
	if err := a.limiter.Wait(ctx, method); err != nil {
		ratelimit.RecordRPCCall(method, err)
		return fmt.Errorf("%s: %w", method, err)
	}
	err := a.breaker.Execute(fn)
	ratelimit.RecordRPCCall(method, err)
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return fmt.Errorf("%s: %w", method, err)
	}
	return err
}

// shouldTrip keeps lookups of unknown digests and malformed requests from
// opening the breaker; only upstream trouble counts.
func shouldTrip(err error) bool {
	if errors.Is(err, rpc.ErrNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	var rpcErr *rpc.RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code == -32603 || (rpcErr.Code <= -32000 && rpcErr.Code >= -32099)
	}
	return true
}

func convertTransaction(resp *rpc.TransactionBlockResponse) (chain.RawTransaction, error) {
	tx := chain.RawTransaction{
		Digest:    resp.Digest,
		Succeeded: true,
	}
	if resp.Transaction != nil {
		tx.Sender = resp.Transaction.Data.Sender
	}
	if resp.Checkpoint != nil {
		tx.Checkpoint = int64(*resp.Checkpoint)
	}
	if resp.TimestampMs != nil {
		ts := time.UnixMilli(int64(*resp.TimestampMs)).UTC()
		tx.Timestamp = &ts
	}
	if resp.Effects != nil && resp.Effects.Status.Status != "" {
		tx.Succeeded = resp.Effects.Status.Status == "success"
	}

	tx.BalanceChanges = make([]chain.BalanceChange, 0, len(resp.BalanceChanges))
	for _, bc := range resp.BalanceChanges {
		amount, err := decimal.NewFromString(bc.Amount)
		if err != nil {
			return chain.RawTransaction{}, fmt.Errorf("decode balance change amount %q in %s: %w", bc.Amount, resp.Digest, err)
		}
		owner, _ := bc.AddressOwner()
		tx.BalanceChanges = append(tx.BalanceChanges, chain.BalanceChange{
			Owner:    owner,
			CoinType: bc.CoinType,
			Amount:   amount,
		})
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return chain.RawTransaction{}, fmt.Errorf("marshal transaction %s: %w", resp.Digest, err)
	}
	tx.Raw = raw
	return tx, nil
}
