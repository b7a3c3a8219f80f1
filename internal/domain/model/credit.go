package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditedByAuto marks credits issued by the engine without an administrator.
const CreditedByAuto = "auto"

// SpinCreditRecord is the audit row written when spins are issued for a
// transfer. At most one exists per TxHash.
type SpinCreditRecord struct {
	ID            uuid.UUID `db:"id"`
	TxHash        string    `db:"tx_hash"`
	Account       string    `db:"account_id"`
	SpinsCredited int64     `db:"spins_credited"`
	CreditedAt    time.Time `db:"credited_at"`
	CreditedBy    string    `db:"credited_by"`
}

// CreditConfig parameterizes the credit engine. Amounts are in MIST.
type CreditConfig struct {
	ExchangeRate      decimal.Decimal `db:"exchange_rate"`
	AutoApprovalLimit decimal.Decimal `db:"auto_approval_limit"`
	LookbackWindow    time.Duration   `db:"lookback_window_seconds"`
	Version           int64           `db:"version"`
	UpdatedBy         string          `db:"updated_by"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// SuiToMist converts a human SUI amount to MIST.
func SuiToMist(sui decimal.Decimal) decimal.Decimal {
	return sui.Shift(NativeDecimals)
}

// MistToSui converts MIST to a human SUI amount.
func MistToSui(mist decimal.Decimal) decimal.Decimal {
	return mist.Shift(-NativeDecimals)
}

// CreditOutcome is the state a transfer lands in after engine evaluation.
type CreditOutcome string

const (
	CreditOutcomeCredited        CreditOutcome = "credited"
	CreditOutcomePendingApproval CreditOutcome = "pending_approval"
	CreditOutcomeUnattributed    CreditOutcome = "unattributed"
	CreditOutcomeAlreadyHandled  CreditOutcome = "already_handled"
)

// CreditDecision is returned by the credit engine for one transfer. Balance
// and CreditedBy are only set when Outcome is CreditOutcomeCredited.
type CreditDecision struct {
	TxHash       string
	Outcome      CreditOutcome
	Status       CreditStatus
	Account      string
	AmountNative decimal.Decimal
	Spins        int64
	CreditedBy   string
	Balance      int64
	DecidedAt    time.Time
}

// Credited reports whether this decision issued spins.
func (d CreditDecision) Credited() bool {
	return d.Outcome == CreditOutcomeCredited
}

// CreditEvent is published once per issued credit for downstream
// notification and leaderboard consumers.
type CreditEvent struct {
	TxHash       string          `json:"tx_hash"`
	Network      Network         `json:"network"`
	Account      string          `json:"account_id"`
	AmountNative decimal.Decimal `json:"amount_native"`
	Spins        int64           `json:"spins"`
	Balance      int64           `json:"balance"`
	CreditedBy   string          `json:"credited_by"`
	CreditedAt   time.Time       `json:"credited_at"`
}

// AccountAddress links a sender address to an application account.
type AccountAddress struct {
	Address   string    `db:"address"`
	AccountID string    `db:"account_id"`
	Label     *string   `db:"label"`
	CreatedAt time.Time `db:"created_at"`
}

// SpinBalance is an account's redeemable spin count.
type SpinBalance struct {
	AccountID string    `db:"account_id"`
	Spins     int64     `db:"spins"`
	UpdatedAt time.Time `db:"updated_at"`
}
