package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain/mocks"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/pipeline/classifier"
)

const (
	custodial = "0x00000000000000000000000000000000000000000000000000000000000c0ffe"
	sender    = "0x00000000000000000000000000000000000000000000000000000000000000a1"
)

func mist(sui string) decimal.Decimal {
	return model.SuiToMist(decimal.RequireFromString(sui))
}

func testConfig() model.CreditConfig {
	return model.CreditConfig{ExchangeRate: mist("1"), AutoApprovalLimit: mist("100"), Version: 3}
}

func TestVerify_QualifyingPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerClient(ctrl)
	ledger.EXPECT().Network().Return("testnet")
	ledger.EXPECT().GetTransaction(gomock.Any(), "0xabc").Return(&chain.RawTransaction{
		Digest:     "0xabc",
		Sender:     sender,
		Checkpoint: 900,
		Succeeded:  true,
		BalanceChanges: []chain.BalanceChange{
			{Owner: sender, CoinType: model.NativeCoinType, Amount: mist("-2.701")},
			{Owner: custodial, CoinType: model.NativeCoinType, Amount: mist("2.7")},
		},
	}, nil)

	r, err := verify(context.Background(), ledger, classifier.New(custodial, ""), "0xabc", testConfig())
	require.NoError(t, err)

	assert.True(t, r.Qualifies)
	assert.Empty(t, r.IgnoreReason)
	assert.Equal(t, "testnet", r.Network)
	assert.Equal(t, int64(900), r.Checkpoint)
	assert.Equal(t, "2.7", r.AmountSui)
	assert.Equal(t, int64(2), r.Spins)
	assert.True(t, r.AutoApproved)
	assert.Equal(t, "1", r.RateSui)
	assert.Equal(t, "100", r.LimitSui)
	assert.Equal(t, int64(3), r.ConfigVersion)
}

func TestVerify_AboveLimitNeedsApproval(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerClient(ctrl)
	ledger.EXPECT().Network().Return("testnet")
	ledger.EXPECT().GetTransaction(gomock.Any(), "0xbig").Return(&chain.RawTransaction{
		Digest:    "0xbig",
		Sender:    sender,
		Succeeded: true,
		BalanceChanges: []chain.BalanceChange{
			{Owner: custodial, CoinType: model.NativeCoinType, Amount: mist("250")},
		},
	}, nil)

	r, err := verify(context.Background(), ledger, classifier.New(custodial, ""), "0xbig", testConfig())
	require.NoError(t, err)
	assert.True(t, r.Qualifies)
	assert.Equal(t, int64(250), r.Spins)
	assert.False(t, r.AutoApproved)
}

func TestVerify_IgnoredTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerClient(ctrl)
	ledger.EXPECT().Network().Return("testnet")
	ledger.EXPECT().GetTransaction(gomock.Any(), "0xfail").Return(&chain.RawTransaction{
		Digest:    "0xfail",
		Succeeded: false,
	}, nil)

	r, err := verify(context.Background(), ledger, classifier.New(custodial, ""), "0xfail", testConfig())
	require.NoError(t, err)
	assert.False(t, r.Qualifies)
	assert.Equal(t, string(classifier.ReasonFailedExecution), r.IgnoreReason)
	assert.Zero(t, r.Spins)
}

func TestVerify_FetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerClient(ctrl)
	ledger.EXPECT().GetTransaction(gomock.Any(), "0xmissing").Return(nil, errors.New("not found"))

	_, err := verify(context.Background(), ledger, classifier.New(custodial, ""), "0xmissing", testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch transaction 0xmissing")
}

func TestFlagConfig(t *testing.T) {
	cfg, err := flagConfig("0.5", "10")
	require.NoError(t, err)
	assert.True(t, cfg.ExchangeRate.Equal(decimal.NewFromInt(500_000_000)))
	assert.True(t, cfg.AutoApprovalLimit.Equal(decimal.NewFromInt(10_000_000_000)))

	_, err = flagConfig("0", "10")
	assert.Error(t, err)
	_, err = flagConfig("1", "-1")
	assert.Error(t, err)
	_, err = flagConfig("one", "10")
	assert.Error(t, err)
}

func TestRun_UsageErrors(t *testing.T) {
	t.Setenv("CUSTODIAL_ADDRESS", "")
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-custodial", custodial}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage")

	err = run(context.Background(), []string{"0xabc"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-custodial")

	err = run(context.Background(), []string{"-custodial", custodial, "-rate-sui", "0", "0xabc"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-rate-sui")
	assert.Empty(t, stdout.String())
}
