package classifier

import (
	"testing"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	custodialShort = "0xfe"
	custodialLong  = "0x00000000000000000000000000000000000000000000000000000000000000fe"
	sender         = "0x00000000000000000000000000000000000000000000000000000000000000ab"
	usdc           = "0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::USDC"
)

func mist(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(changes ...chain.BalanceChange) chain.RawTransaction {
	return chain.RawTransaction{
		Digest:         "Dg1",
		Sender:         "0xAB",
		Checkpoint:     42,
		Succeeded:      true,
		BalanceChanges: changes,
		Raw:            []byte(`{"digest":"Dg1"}`),
	}
}

func TestClassify_NativeCreditToCustodial(t *testing.T) {
	c := New(custodialShort, "")
	v := c.Classify(tx(
		chain.BalanceChange{Owner: sender, CoinType: "0x2::sui::SUI", Amount: mist("-2701000000")},
		chain.BalanceChange{Owner: custodialLong, CoinType: "0x2::sui::SUI", Amount: mist("2700000000")},
	))

	require.True(t, v.Qualifies())
	assert.Equal(t, ReasonNone, v.Reason)
	assert.Equal(t, "Dg1", v.Transfer.TxHash)
	assert.Equal(t, sender, v.Transfer.SenderAddress)
	assert.True(t, mist("2700000000").Equal(v.Transfer.AmountNative))
	assert.Equal(t, int64(42), v.Transfer.Checkpoint)
	assert.JSONEq(t, `{"digest":"Dg1"}`, string(v.Transfer.ChainData))
}

func TestClassify_LongFormCoinTypeMatches(t *testing.T) {
	c := New(custodialLong, "0x2::sui::SUI")
	v := c.Classify(tx(chain.BalanceChange{
		Owner:    custodialShort,
		CoinType: "0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI",
		Amount:   mist("5"),
	}))
	assert.True(t, v.Qualifies())
}

func TestClassify_NonNativeOnlyIsExcluded(t *testing.T) {
	c := New(custodialShort, "")
	v := c.Classify(tx(
		chain.BalanceChange{Owner: custodialLong, CoinType: usdc, Amount: mist("1000000")},
		chain.BalanceChange{Owner: sender, CoinType: usdc, Amount: mist("-1000000")},
	))

	assert.False(t, v.Qualifies())
	assert.Nil(t, v.Transfer)
	assert.Equal(t, ReasonNonNativeOnly, v.Reason)
}

func TestClassify_Rejections(t *testing.T) {
	c := New(custodialShort, "")

	tests := []struct {
		name   string
		tx     chain.RawTransaction
		reason IgnoreReason
	}{
		{
			name: "outbound from custodial",
			tx: tx(
				chain.BalanceChange{Owner: custodialLong, CoinType: "0x2::sui::SUI", Amount: mist("-10")},
				chain.BalanceChange{Owner: sender, CoinType: "0x2::sui::SUI", Amount: mist("9")},
			),
			reason: ReasonNoPositiveDelta,
		},
		{
			name:   "zero delta",
			tx:     tx(chain.BalanceChange{Owner: custodialLong, CoinType: "0x2::sui::SUI", Amount: mist("0")}),
			reason: ReasonNoPositiveDelta,
		},
		{
			name:   "native moved elsewhere",
			tx:     tx(chain.BalanceChange{Owner: sender, CoinType: "0x2::sui::SUI", Amount: mist("100")}),
			reason: ReasonNotRecipient,
		},
		{
			name:   "object owned change",
			tx:     tx(chain.BalanceChange{Owner: "", CoinType: "0x2::sui::SUI", Amount: mist("100")}),
			reason: ReasonNotRecipient,
		},
		{
			name:   "no balance changes",
			tx:     tx(),
			reason: ReasonNonNativeOnly,
		},
		{
			name: "failed execution",
			tx: func() chain.RawTransaction {
				raw := tx(chain.BalanceChange{Owner: custodialLong, CoinType: "0x2::sui::SUI", Amount: mist("100")})
				raw.Succeeded = false
				return raw
			}(),
			reason: ReasonFailedExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Classify(tt.tx)
			assert.False(t, v.Qualifies())
			assert.Equal(t, tt.reason, v.Reason)
		})
	}
}

func TestClassify_SumsMultipleCredits(t *testing.T) {
	c := New(custodialShort, "")
	v := c.Classify(tx(
		chain.BalanceChange{Owner: custodialLong, CoinType: "0x2::sui::SUI", Amount: mist("3")},
		chain.BalanceChange{Owner: custodialShort, CoinType: "0x2::sui::SUI", Amount: mist("4")},
	))
	require.True(t, v.Qualifies())
	assert.True(t, mist("7").Equal(v.Transfer.AmountNative))
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(custodialShort, "")
	raw := tx(chain.BalanceChange{Owner: custodialLong, CoinType: "0x2::sui::SUI", Amount: mist("1")})

	first := c.Classify(raw)
	second := c.Classify(raw)
	assert.Equal(t, first, second)
}

func TestNew_NormalizesCustodial(t *testing.T) {
	assert.Equal(t, custodialLong, New("0xFE", "").CustodialAddress())
}
