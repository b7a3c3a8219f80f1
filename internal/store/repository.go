package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
)

var (
	// ErrNotFound is returned when a keyed lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrCursorConflict is returned when a cursor advance loses the version
	// check, i.e. another writer (or an administrative reset) moved it first.
	ErrCursorConflict = errors.New("cursor version conflict")
)

// TxBeginner abstracts the ability to begin a database transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// CursorRepository persists the scan position for one custodial address.
type CursorRepository interface {
	// Get returns nil, nil when no cursor row exists yet.
	Get(ctx context.Context, network model.Network, address string) (*model.SyncCursor, error)
	EnsureExists(ctx context.Context, network model.Network, address string) error
	// AdvanceTx moves the cursor forward if its version still equals
	// expectedVersion, returning the new version. A lost check returns
	// ErrCursorConflict.
	AdvanceTx(ctx context.Context, tx *sql.Tx, network model.Network, address string, expectedVersion int64, cursorValue *string, checkpoint int64) (int64, error)
	// Reset rewinds the cursor to cursorValue (nil = start of history) and
	// bumps its version so in-flight cycles cannot overwrite the reset.
	Reset(ctx context.Context, network model.Network, address string, cursorValue *string) (*model.SyncCursor, error)
}

// TransferTransition is a status change applied only when the row is still
// in From. Nil pointer fields leave the column untouched.
type TransferTransition struct {
	TxHash          string
	From            model.CreditStatus
	To              model.CreditStatus
	RejectionReason *string
	ResolvedBy      *string
	ResolvedAt      time.Time
}

// TransferRepository is the append-only, tx-hash keyed payment ledger.
type TransferRepository interface {
	// RecordIfNewTx inserts t unless a row with the same tx hash exists.
	// inserted is false for duplicates; t.ID and t.ObservedAt are filled on
	// insert.
	RecordIfNewTx(ctx context.Context, tx *sql.Tx, t *model.ChainTransfer) (inserted bool, err error)
	// GetForUpdateTx locks and returns the row, or ErrNotFound.
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, txHash string) (*model.ChainTransfer, error)
	// TransitionTx applies tr and reports whether the row was still in tr.From.
	TransitionTx(ctx context.Context, tx *sql.Tx, tr TransferTransition) (bool, error)
	// AttributeTx links an unresolved, unattributed (or already same-account)
	// transfer to account.
	AttributeTx(ctx context.Context, tx *sql.Tx, txHash, account string) (bool, error)
	Get(ctx context.Context, txHash string) (*model.ChainTransfer, error)
	List(ctx context.Context, filter model.TransferFilter) ([]model.ChainTransfer, int, error)
	Stats(ctx context.Context) (model.TransferStats, error)
}

// CreditRecordRepository stores the credit audit trail.
type CreditRecordRepository interface {
	// InsertTx writes rec; inserted is false when the tx hash already has one.
	InsertTx(ctx context.Context, tx *sql.Tx, rec *model.SpinCreditRecord) (inserted bool, err error)
	GetByTxHash(ctx context.Context, txHash string) (*model.SpinCreditRecord, error)
}

// AccountRepository maps sender addresses to accounts and holds spin balances.
type AccountRepository interface {
	// ResolveAccount returns the account linked to address, or "" when none.
	ResolveAccount(ctx context.Context, address string) (string, error)
	LinkAddress(ctx context.Context, link *model.AccountAddress) error
	// AddSpinsTx increments the balance and returns the new total.
	AddSpinsTx(ctx context.Context, tx *sql.Tx, accountID string, spins int64) (int64, error)
	GetBalance(ctx context.Context, accountID string) (*model.SpinBalance, error)
}

// CreditConfigRepository stores the singleton credit configuration.
type CreditConfigRepository interface {
	Get(ctx context.Context) (*model.CreditConfig, error)
	// EnsureDefault seeds the singleton row when it does not exist.
	EnsureDefault(ctx context.Context, cfg model.CreditConfig) error
	// Update replaces the configuration and returns it with the new version.
	Update(ctx context.Context, cfg model.CreditConfig) (*model.CreditConfig, error)
}
