package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreditStatus string

const (
	CreditStatusNew             CreditStatus = "new"
	CreditStatusCredited        CreditStatus = "credited"
	CreditStatusPendingApproval CreditStatus = "pending_approval"
	CreditStatusRejected        CreditStatus = "rejected"
)

func (s CreditStatus) String() string {
	return string(s)
}

func (s CreditStatus) Valid() bool {
	switch s {
	case CreditStatusNew, CreditStatusCredited, CreditStatusPendingApproval, CreditStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no transition can leave s.
func (s CreditStatus) Terminal() bool {
	return s == CreditStatusCredited || s == CreditStatusRejected
}

// PlayerLabel is the status string shown to players.
func (s CreditStatus) PlayerLabel() string {
	if s == CreditStatusNew {
		return "uncredited"
	}
	return string(s)
}

type TransferSource string

const (
	TransferSourceScanner TransferSource = "scanner"
	TransferSourceClaim   TransferSource = "claim"
)

// ChainTransfer is one inbound native-coin payment to the custodial address.
// TxHash is globally unique; rows are never deleted.
type ChainTransfer struct {
	ID              uuid.UUID       `db:"id"`
	Network         Network         `db:"network"`
	TxHash          string          `db:"tx_hash"`
	SenderAddress   string          `db:"sender_address"`
	AmountNative    decimal.Decimal `db:"amount_native"` // MIST, NUMERIC(39,0)
	Checkpoint      int64           `db:"checkpoint"`
	ChainTimestamp  *time.Time      `db:"chain_timestamp"`
	ObservedAt      time.Time       `db:"observed_at"`
	CreditStatus    CreditStatus    `db:"credit_status"`
	LinkedAccount   *string         `db:"linked_account"`
	SuggestedSpins  int64           `db:"suggested_spins"`
	RejectionReason *string         `db:"rejection_reason"`
	ResolvedBy      *string         `db:"resolved_by"`
	ResolvedAt      *time.Time      `db:"resolved_at"`
	Source          TransferSource  `db:"source"`
	ChainData       json.RawMessage `db:"chain_data"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// Attributed reports whether the transfer has a destination account.
func (t *ChainTransfer) Attributed() bool {
	return t.LinkedAccount != nil && *t.LinkedAccount != ""
}

// ClassifiedTransfer is the classifier's output for a qualifying ledger
// transaction, before it is persisted.
type ClassifiedTransfer struct {
	TxHash         string
	SenderAddress  string
	AmountNative   decimal.Decimal
	Checkpoint     int64
	ChainTimestamp *time.Time
	ChainData      json.RawMessage
}

// TransferFilter narrows transfer listings.
type TransferFilter struct {
	Status           *CreditStatus
	Account          *string
	UnattributedOnly bool
	ObservedAfter    *time.Time
	Limit            int
	Offset           int
}

// TransferStats aggregates transfer counts per status for dashboards.
type TransferStats struct {
	New             int `json:"new"`
	Unattributed    int `json:"unattributed"`
	PendingApproval int `json:"pending_approval"`
	Credited        int `json:"credited"`
	Rejected        int `json:"rejected"`
}
