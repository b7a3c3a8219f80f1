package chain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrTransactionNotFound is returned by GetTransaction when the ledger has no
// transaction with the requested digest.
var ErrTransactionNotFound = errors.New("transaction not found")

// LedgerClient abstracts the ledger query API so the scanner and the claim
// flow are independent of the RPC wire format.
type LedgerClient interface {
	// Network returns the ledger network identifier (e.g. "mainnet").
	Network() string

	// QueryTransactionsToAddress returns one page of transactions that
	// credited address, oldest first. cursor is the NextCursor of the
	// previous page, nil for the start of history.
	QueryTransactionsToAddress(ctx context.Context, address string, cursor *string, limit int) (*TransactionPage, error)

	// GetTransaction fetches one transaction by digest.
	GetTransaction(ctx context.Context, digest string) (*RawTransaction, error)

	// GetLatestCheckpoint returns the newest executed checkpoint.
	GetLatestCheckpoint(ctx context.Context) (int64, error)
}

// TransactionPage is one page of a ledger query.
type TransactionPage struct {
	Transactions []RawTransaction
	NextCursor   *string
	HasNextPage  bool
}

// RawTransaction is a ledger transaction reduced to what classification needs.
type RawTransaction struct {
	Digest         string
	Sender         string
	Checkpoint     int64
	Timestamp      *time.Time
	Succeeded      bool
	BalanceChanges []BalanceChange
	Raw            json.RawMessage
}

// BalanceChange is one coin delta. Owner is empty for non-address owners.
type BalanceChange struct {
	Owner    string
	CoinType string
	Amount   decimal.Decimal
}
