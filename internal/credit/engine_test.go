package credit

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
	storemocks "github.com/Mohsinsiddi/fun-suidex-sub000/internal/store/mocks"
)

func TestComputeSpins(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		rate   decimal.Decimal
		want   int64
	}{
		{"2.7 SUI at 1 SUI per spin floors to 2", sui("2.7"), sui("1"), 2},
		{"exact multiple", sui("3"), sui("1"), 3},
		{"below one spin", sui("0.999999999"), sui("1"), 0},
		{"one mist short of a spin", sui("5").Sub(decimal.NewFromInt(1)), sui("1"), 4},
		{"fractional rate", sui("1.2"), sui("0.5"), 2},
		{"large amount", sui("123456789"), sui("0.001"), 123456789000},
		{"zero rate", sui("10"), decimal.Zero, 0},
		{"negative rate", sui("10"), sui("-1"), 0},
		{"zero amount", decimal.Zero, sui("1"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeSpins(tt.amount, tt.rate))
		})
	}
}

type engineMocks struct {
	transfers *storemocks.MockTransferRepository
	credits   *storemocks.MockCreditRecordRepository
	accounts  *storemocks.MockAccountRepository
}

func newTestEngine(t *testing.T) (*Engine, *engineMocks) {
	ctrl := gomock.NewController(t)
	m := &engineMocks{
		transfers: storemocks.NewMockTransferRepository(ctrl),
		credits:   storemocks.NewMockCreditRecordRepository(ctrl),
		accounts:  storemocks.NewMockAccountRepository(ctrl),
	}
	e := NewEngine(m.transfers, m.credits, m.accounts)
	e.now = func() time.Time { return fixedNow }
	return e, m
}

func TestEvaluate_AutoCreditsAtLimitInclusive(t *testing.T) {
	e, m := newTestEngine(t)
	tx := newFakeTx(t)
	cfg := testConfig()

	transfer := newTransfer("tx-limit", cfg.AutoApprovalLimit, strPtr("acct-1"), model.CreditStatusNew)
	require.Equal(t, int64(100), transfer.SuggestedSpins)

	m.transfers.EXPECT().TransitionTx(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, tr store.TransferTransition) (bool, error) {
			assert.Equal(t, model.CreditStatusNew, tr.From)
			assert.Equal(t, model.CreditStatusCredited, tr.To)
			assert.Equal(t, model.CreditedByAuto, *tr.ResolvedBy)
			assert.Equal(t, fixedNow, tr.ResolvedAt)
			return true, nil
		})
	m.credits.EXPECT().InsertTx(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, rec *model.SpinCreditRecord) (bool, error) {
			assert.Equal(t, "acct-1", rec.Account)
			assert.Equal(t, int64(100), rec.SpinsCredited)
			assert.Equal(t, model.CreditedByAuto, rec.CreditedBy)
			return true, nil
		})
	m.accounts.EXPECT().AddSpinsTx(gomock.Any(), tx, "acct-1", int64(100)).Return(int64(150), nil)

	d, err := e.Evaluate(context.Background(), tx, transfer, cfg, "")
	require.NoError(t, err)
	assert.Equal(t, model.CreditOutcomeCredited, d.Outcome)
	assert.Equal(t, model.CreditStatusCredited, d.Status)
	assert.Equal(t, int64(100), d.Spins)
	assert.Equal(t, int64(150), d.Balance)
	assert.Equal(t, model.CreditedByAuto, d.CreditedBy)
	assert.Equal(t, model.CreditStatusCredited, transfer.CreditStatus)
}

func TestEvaluate_AboveLimitGoesPending(t *testing.T) {
	e, m := newTestEngine(t)
	tx := newFakeTx(t)
	cfg := testConfig()

	amount := cfg.AutoApprovalLimit.Add(decimal.NewFromInt(1))
	transfer := newTransfer("tx-big", amount, strPtr("acct-1"), model.CreditStatusNew)

	m.transfers.EXPECT().TransitionTx(gomock.Any(), tx, store.TransferTransition{
		TxHash: "tx-big",
		From:   model.CreditStatusNew,
		To:     model.CreditStatusPendingApproval,
	}).Return(true, nil)

	d, err := e.Evaluate(context.Background(), tx, transfer, cfg, "")
	require.NoError(t, err)
	assert.Equal(t, model.CreditOutcomePendingApproval, d.Outcome)
	assert.Equal(t, model.CreditStatusPendingApproval, d.Status)
	assert.Zero(t, d.Balance)
}

func TestEvaluate_UnattributedStaysNew(t *testing.T) {
	e, _ := newTestEngine(t)
	tx := newFakeTx(t)

	transfer := newTransfer("tx-anon", sui("5"), nil, model.CreditStatusNew)
	d, err := e.Evaluate(context.Background(), tx, transfer, testConfig(), "")
	require.NoError(t, err)
	assert.Equal(t, model.CreditOutcomeUnattributed, d.Outcome)
	assert.Equal(t, model.CreditStatusNew, d.Status)
	assert.Equal(t, model.CreditStatusNew, transfer.CreditStatus)
}

func TestEvaluate_ResolvedTransfersAreNoop(t *testing.T) {
	for _, status := range []model.CreditStatus{
		model.CreditStatusCredited,
		model.CreditStatusRejected,
		model.CreditStatusPendingApproval,
	} {
		t.Run(string(status), func(t *testing.T) {
			e, _ := newTestEngine(t)
			tx := newFakeTx(t)

			transfer := newTransfer("tx-done", sui("5"), strPtr("acct-1"), status)
			d, err := e.Evaluate(context.Background(), tx, transfer, testConfig(), "")
			require.NoError(t, err)
			assert.Equal(t, model.CreditOutcomeAlreadyHandled, d.Outcome)
			assert.Equal(t, status, d.Status)
		})
	}
}

func TestEvaluate_LostStatusRaceIsAlreadyHandled(t *testing.T) {
	e, m := newTestEngine(t)
	tx := newFakeTx(t)

	transfer := newTransfer("tx-race", sui("5"), strPtr("acct-1"), model.CreditStatusNew)
	m.transfers.EXPECT().TransitionTx(gomock.Any(), tx, gomock.Any()).Return(false, nil)

	d, err := e.Evaluate(context.Background(), tx, transfer, testConfig(), "")
	require.NoError(t, err)
	assert.Equal(t, model.CreditOutcomeAlreadyHandled, d.Outcome)
	assert.Equal(t, model.CreditStatusNew, transfer.CreditStatus)
}

func TestEvaluate_ZeroSpinPaymentIsCredited(t *testing.T) {
	e, m := newTestEngine(t)
	tx := newFakeTx(t)

	transfer := newTransfer("tx-dust", sui("0.4"), strPtr("acct-1"), model.CreditStatusNew)
	require.Zero(t, transfer.SuggestedSpins)

	m.transfers.EXPECT().TransitionTx(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	m.credits.EXPECT().InsertTx(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, rec *model.SpinCreditRecord) (bool, error) {
			assert.Zero(t, rec.SpinsCredited)
			return true, nil
		})
	m.accounts.EXPECT().AddSpinsTx(gomock.Any(), tx, "acct-1", int64(0)).Return(int64(3), nil)

	d, err := e.Evaluate(context.Background(), tx, transfer, testConfig(), "")
	require.NoError(t, err)
	assert.Equal(t, model.CreditOutcomeCredited, d.Outcome)
	assert.Zero(t, d.Spins)
}

func TestEvaluate_UsesStoredSuggestedSpins(t *testing.T) {
	e, m := newTestEngine(t)
	tx := newFakeTx(t)

	transfer := newTransfer("tx-old-rate", sui("10"), strPtr("acct-1"), model.CreditStatusNew)
	transfer.SuggestedSpins = 20 // observed under a 0.5 SUI rate
	cfg := testConfig()

	m.transfers.EXPECT().TransitionTx(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	m.credits.EXPECT().InsertTx(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	m.accounts.EXPECT().AddSpinsTx(gomock.Any(), tx, "acct-1", int64(20)).Return(int64(20), nil)

	d, err := e.Evaluate(context.Background(), tx, transfer, cfg, "")
	require.NoError(t, err)
	assert.Equal(t, int64(20), d.Spins)
}

func TestEvaluate_DuplicateCreditRecordFails(t *testing.T) {
	e, m := newTestEngine(t)
	tx := newFakeTx(t)

	transfer := newTransfer("tx-dup", sui("5"), strPtr("acct-1"), model.CreditStatusNew)
	m.transfers.EXPECT().TransitionTx(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	m.credits.EXPECT().InsertTx(gomock.Any(), tx, gomock.Any()).Return(false, nil)

	_, err := e.Evaluate(context.Background(), tx, transfer, testConfig(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestEvaluate_StorageErrorPropagates(t *testing.T) {
	e, m := newTestEngine(t)
	tx := newFakeTx(t)

	transfer := newTransfer("tx-err", sui("5"), strPtr("acct-1"), model.CreditStatusNew)
	boom := errors.New("connection reset")
	m.transfers.EXPECT().TransitionTx(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	m.credits.EXPECT().InsertTx(gomock.Any(), tx, gomock.Any()).Return(true, nil)
	m.accounts.EXPECT().AddSpinsTx(gomock.Any(), tx, "acct-1", int64(5)).Return(int64(0), boom)

	_, err := e.Evaluate(context.Background(), tx, transfer, testConfig(), "")
	require.ErrorIs(t, err, boom)
}

func TestValidateConfig(t *testing.T) {
	valid := testConfig()
	require.NoError(t, ValidateConfig(valid))

	zeroRate := valid
	zeroRate.ExchangeRate = decimal.Zero
	assert.ErrorIs(t, ValidateConfig(zeroRate), ErrInvalidConfig)

	negLimit := valid
	negLimit.AutoApprovalLimit = decimal.NewFromInt(-1)
	assert.ErrorIs(t, ValidateConfig(negLimit), ErrInvalidConfig)

	negLookback := valid
	negLookback.LookbackWindow = -time.Second
	assert.ErrorIs(t, ValidateConfig(negLookback), ErrInvalidConfig)

	subMistRate := valid
	subMistRate.ExchangeRate = decimal.RequireFromString("0.4")
	assert.ErrorIs(t, ValidateConfig(subMistRate), ErrInvalidConfig)

	fractionalRate := valid
	fractionalRate.ExchangeRate = decimal.RequireFromString("1000000000.5")
	assert.ErrorIs(t, ValidateConfig(fractionalRate), ErrInvalidConfig)

	fractionalLimit := valid
	fractionalLimit.AutoApprovalLimit = decimal.RequireFromString("1000000000.05")
	assert.ErrorIs(t, ValidateConfig(fractionalLimit), ErrInvalidConfig)

	trailingZeros := valid
	trailingZeros.ExchangeRate = decimal.RequireFromString("1000000000.000")
	assert.NoError(t, ValidateConfig(trailingZeros))
}
