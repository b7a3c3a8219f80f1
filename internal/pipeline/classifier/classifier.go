// Package classifier decides which ledger transactions are payments to the
// custodial address. The scanner, the player claim path and cmd/verifytx all
// share it, so "what counts as a payment" has one definition.
package classifier

import (
	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
)

// IgnoreReason explains why a transaction was not classified as a payment.
type IgnoreReason string

const (
	ReasonNone            IgnoreReason = ""
	ReasonFailedExecution IgnoreReason = "failed_execution"
	ReasonNonNativeOnly   IgnoreReason = "non_native_only"
	ReasonNoPositiveDelta IgnoreReason = "no_positive_delta"
	ReasonNotRecipient    IgnoreReason = "not_recipient"
)

// Verdict is the classification of one transaction. Transfer is set only
// when the transaction qualifies.
type Verdict struct {
	Transfer *model.ClassifiedTransfer
	Reason   IgnoreReason
}

func (v Verdict) Qualifies() bool {
	return v.Transfer != nil
}

type Classifier struct {
	custodial string
	coinType  string
}

// New returns a classifier for payments of coinType to custodialAddress.
// An empty coinType means the native coin.
func New(custodialAddress, coinType string) *Classifier {
	if coinType == "" {
		coinType = model.NativeCoinType
	}
	return &Classifier{
		custodial: model.NormalizeAddress(custodialAddress),
		coinType:  model.NormalizeCoinType(coinType),
	}
}

func (c *Classifier) CustodialAddress() string {
	return c.custodial
}

// Classify keeps a transaction iff it succeeded and at least one balance
// change credits a strictly positive amount of the native coin to the
// custodial address. Multiple qualifying changes are summed.
func (c *Classifier) Classify(tx chain.RawTransaction) Verdict {
	if !tx.Succeeded {
		return Verdict{Reason: ReasonFailedExecution}
	}

	total := decimal.Zero
	sawNative, sawRecipient := false, false
	for _, bc := range tx.BalanceChanges {
		if model.NormalizeCoinType(bc.CoinType) != c.coinType {
			continue
		}
		sawNative = true
		if bc.Owner == "" || model.NormalizeAddress(bc.Owner) != c.custodial {
			continue
		}
		sawRecipient = true
		if bc.Amount.IsPositive() {
			total = total.Add(bc.Amount)
		}
	}

	switch {
	case total.IsPositive():
	case !sawNative:
		return Verdict{Reason: ReasonNonNativeOnly}
	case !sawRecipient:
		return Verdict{Reason: ReasonNotRecipient}
	default:
		return Verdict{Reason: ReasonNoPositiveDelta}
	}

	return Verdict{Transfer: &model.ClassifiedTransfer{
		TxHash:         tx.Digest,
		SenderAddress:  model.NormalizeAddress(tx.Sender),
		AmountNative:   total,
		Checkpoint:     tx.Checkpoint,
		ChainTimestamp: tx.Timestamp,
		ChainData:      tx.Raw,
	}}
}
