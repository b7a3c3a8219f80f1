package credit

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/alert"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

func TestApprove_CreditsPendingTransfer(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	pending := newTransfer("tx-p", sui("250"), strPtr("acct-1"), model.CreditStatusPendingApproval)
	setupBeginTx(m.db, 1)
	m.transfers.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "tx-p").Return(pending, nil)
	m.expectCredit(t, "tx-p", model.CreditStatusPendingApproval, "acct-1", "admin-7", 250, 260)

	d, err := svc.Approve(ctx, "tx-p", "admin-7")
	require.NoError(t, err)
	assert.Equal(t, model.CreditOutcomeCredited, d.Outcome)
	assert.Equal(t, int64(250), d.Spins)
	assert.Equal(t, int64(260), d.Balance)
	assert.Equal(t, "admin-7", d.CreditedBy)

	events := m.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "tx-p", events[0].TxHash)
	assert.Equal(t, model.NetworkMainnet, events[0].Network)
	assert.Equal(t, "acct-1", events[0].Account)
	assert.Equal(t, int64(250), events[0].Spins)
	assert.Equal(t, int64(260), events[0].Balance)
	assert.Equal(t, fixedNow, events[0].CreditedAt)
}

func TestRejectThenApprove_ConflictsAndLeavesBalance(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	transfer := newTransfer("tx-r", sui("500"), strPtr("acct-1"), model.CreditStatusPendingApproval)
	setupBeginTx(m.db, 2)

	gomock.InOrder(
		m.transfers.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "tx-r").Return(transfer, nil),
		m.transfers.EXPECT().TransitionTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sql.Tx, tr store.TransferTransition) (bool, error) {
				assert.Equal(t, model.CreditStatusPendingApproval, tr.From)
				assert.Equal(t, model.CreditStatusRejected, tr.To)
				require.NotNil(t, tr.RejectionReason)
				assert.Equal(t, "sender flagged", *tr.RejectionReason)
				assert.Equal(t, "admin-1", *tr.ResolvedBy)
				return true, nil
			}),
	)
	rejected, err := svc.Reject(ctx, "tx-r", "admin-1", "sender flagged")
	require.NoError(t, err)
	assert.Equal(t, model.CreditStatusRejected, rejected.CreditStatus)
	assert.Equal(t, "sender flagged", *rejected.RejectionReason)

	// The row now reads back as rejected; no credit writes are expected,
	// so any AddSpinsTx call would fail the mock controller.
	m.transfers.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "tx-r").Return(transfer, nil)

	_, err = svc.Approve(ctx, "tx-r", "admin-2")
	require.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Empty(t, m.publisher.Events())
}

func TestApprove_Errors(t *testing.T) {
	tests := []struct {
		name    string
		lookup  func() (*model.ChainTransfer, error)
		wantErr error
	}{
		{
			name:    "unknown transfer",
			lookup:  func() (*model.ChainTransfer, error) { return nil, store.ErrNotFound },
			wantErr: ErrTransferNotFound,
		},
		{
			name: "already credited",
			lookup: func() (*model.ChainTransfer, error) {
				return newTransfer("tx", sui("1"), strPtr("a"), model.CreditStatusCredited), nil
			},
			wantErr: ErrAlreadyResolved,
		},
		{
			name: "still new",
			lookup: func() (*model.ChainTransfer, error) {
				return newTransfer("tx", sui("1"), strPtr("a"), model.CreditStatusNew), nil
			},
			wantErr: ErrNotPending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t)
			setupBeginTx(m.db, 1)
			m.transfers.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "tx").DoAndReturn(
				func(context.Context, *sql.Tx, string) (*model.ChainTransfer, error) { return tt.lookup() },
			)

			_, err := svc.Approve(context.Background(), "tx", "admin")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApprove_ConcurrentResolutionLoses(t *testing.T) {
	svc, m := newTestService(t)

	pending := newTransfer("tx-c", sui("300"), strPtr("acct-1"), model.CreditStatusPendingApproval)
	setupBeginTx(m.db, 1)
	m.transfers.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "tx-c").Return(pending, nil)
	m.transfers.EXPECT().TransitionTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	_, err := svc.Approve(context.Background(), "tx-c", "admin")
	require.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestReject_EmptyReasonStoresNull(t *testing.T) {
	svc, m := newTestService(t)

	pending := newTransfer("tx-e", sui("300"), strPtr("acct-1"), model.CreditStatusPendingApproval)
	setupBeginTx(m.db, 1)
	m.transfers.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "tx-e").Return(pending, nil)
	m.transfers.EXPECT().TransitionTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, tr store.TransferTransition) (bool, error) {
			assert.Nil(t, tr.RejectionReason)
			return true, nil
		})

	out, err := svc.Reject(context.Background(), "tx-e", "admin", "")
	require.NoError(t, err)
	assert.Nil(t, out.RejectionReason)
}

func TestReject_StorageErrorRollsBack(t *testing.T) {
	svc, m := newTestService(t)
	boom := errors.New("disk full")

	pending := newTransfer("tx-f", sui("300"), strPtr("acct-1"), model.CreditStatusPendingApproval)
	setupBeginTx(m.db, 1)
	m.transfers.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), "tx-f").Return(pending, nil)
	m.transfers.EXPECT().TransitionTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, boom)

	_, err := svc.Reject(context.Background(), "tx-f", "admin", "no")
	require.ErrorIs(t, err, boom)
}

func TestAnnounce_PendingApprovalAlerts(t *testing.T) {
	svc, m := newTestService(t)

	svc.Announce(context.Background(), model.CreditDecision{
		TxHash:       "tx-big",
		Outcome:      model.CreditOutcomePendingApproval,
		Account:      "acct-9",
		AmountNative: sui("250"),
		Spins:        250,
	})

	require.Len(t, m.alerter.alerts, 1)
	a := m.alerter.alerts[0]
	assert.Equal(t, alert.AlertTypePendingApproval, a.Type)
	assert.Equal(t, "tx-big", a.Key)
	assert.Equal(t, "mainnet", a.Network)
	assert.Contains(t, a.Message, "250 SUI")
	assert.Equal(t, "acct-9", a.Fields["account"])
	assert.Empty(t, m.publisher.Events())
}

func TestAnnounce_PublishFailureIsSwallowed(t *testing.T) {
	svc, m := newTestService(t)
	m.publisher.err = errors.New("redis down")

	assert.NotPanics(t, func() {
		svc.Announce(context.Background(), model.CreditDecision{TxHash: "tx", Outcome: model.CreditOutcomeCredited})
	})
}
