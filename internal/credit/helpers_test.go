package credit

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/alert"
	chainmocks "github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain/mocks"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/pipeline/classifier"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
	storemocks "github.com/Mohsinsiddi/fun-suidex-sub000/internal/store/mocks"
)

// fakeDriver / fakeConn / fakeTxImpl provide a minimal sql.Driver
// so we can call BeginTx and get a real *sql.Tx for testing.
type fakeDriver struct{}
type fakeConn struct{}
type fakeTxImpl struct{}

func (d *fakeDriver) Open(name string) (driver.Conn, error) { return &fakeConn{}, nil }
func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return &fakeTxImpl{}, nil }
func (tx *fakeTxImpl) Commit() error          { return nil }
func (tx *fakeTxImpl) Rollback() error        { return nil }

func init() {
	sql.Register("fake_credit", &fakeDriver{})
}

func openFakeDB() *sql.DB {
	db, _ := sql.Open("fake_credit", "")
	return db
}

func newFakeTx(t *testing.T) *sql.Tx {
	t.Helper()
	tx, err := openFakeDB().BeginTx(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback() })
	return tx
}

func setupBeginTx(mockDB *storemocks.MockTxBeginner, times int) {
	fakeDB := openFakeDB()
	mockDB.EXPECT().BeginTx(gomock.Any(), gomock.Nil()).
		DoAndReturn(func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
			return fakeDB.BeginTx(ctx, opts)
		}).Times(times)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	testCustodial = "0x00000000000000000000000000000000000000000000000000000000000c0ffe"
	testSender    = "0x000000000000000000000000000000000000000000000000000000000000beef"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sui(s string) decimal.Decimal {
	return model.SuiToMist(decimal.RequireFromString(s))
}

func strPtr(s string) *string { return &s }

// testConfig credits 1 spin per SUI and auto-approves up to 100 SUI.
func testConfig() model.CreditConfig {
	return model.CreditConfig{
		ExchangeRate:      sui("1"),
		AutoApprovalLimit: sui("100"),
		LookbackWindow:    72 * time.Hour,
		Version:           1,
	}
}

func newTransfer(txHash string, amount decimal.Decimal, account *string, status model.CreditStatus) *model.ChainTransfer {
	ts := fixedNow.Add(-time.Hour)
	return &model.ChainTransfer{
		Network:        model.NetworkMainnet,
		TxHash:         txHash,
		SenderAddress:  testSender,
		AmountNative:   amount,
		Checkpoint:     1000,
		ChainTimestamp: &ts,
		ObservedAt:     fixedNow,
		CreditStatus:   status,
		LinkedAccount:  account,
		SuggestedSpins: ComputeSpins(amount, testConfig().ExchangeRate),
		Source:         model.TransferSourceScanner,
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.CreditEvent
	err    error
}

func (p *recordingPublisher) PublishCredit(_ context.Context, ev model.CreditEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Events() []model.CreditEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.CreditEvent(nil), p.events...)
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []alert.Alert
}

func (a *recordingAlerter) Send(_ context.Context, al alert.Alert) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, al)
	return nil
}

type serviceMocks struct {
	db        *storemocks.MockTxBeginner
	transfers *storemocks.MockTransferRepository
	credits   *storemocks.MockCreditRecordRepository
	accounts  *storemocks.MockAccountRepository
	configs   *storemocks.MockCreditConfigRepository
	ledger    *chainmocks.MockLedgerClient
	publisher *recordingPublisher
	alerter   *recordingAlerter
}

func newTestService(t *testing.T) (*Service, *serviceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &serviceMocks{
		db:        storemocks.NewMockTxBeginner(ctrl),
		transfers: storemocks.NewMockTransferRepository(ctrl),
		credits:   storemocks.NewMockCreditRecordRepository(ctrl),
		accounts:  storemocks.NewMockAccountRepository(ctrl),
		configs:   storemocks.NewMockCreditConfigRepository(ctrl),
		ledger:    chainmocks.NewMockLedgerClient(ctrl),
		publisher: &recordingPublisher{},
		alerter:   &recordingAlerter{},
	}
	m.ledger.EXPECT().Network().Return("mainnet").AnyTimes()

	svc := NewService(
		m.db,
		Repositories{Transfers: m.transfers, Credits: m.credits, Accounts: m.accounts, Configs: m.configs},
		m.ledger,
		classifier.New(testCustodial, ""),
		testLogger(),
		WithPublisher(m.publisher),
		WithAlerter(m.alerter),
		WithClock(func() time.Time { return fixedNow }),
	)
	return svc, m
}

func (m *serviceMocks) expectConfig() {
	cfg := testConfig()
	m.configs.EXPECT().Get(gomock.Any()).Return(&cfg, nil)
}

// expectCredit wires the three writes of a successful credit.
func (m *serviceMocks) expectCredit(t *testing.T, txHash string, from model.CreditStatus, account, creditedBy string, spins, newBalance int64) {
	m.transfers.EXPECT().TransitionTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, tr store.TransferTransition) (bool, error) {
			require.Equal(t, txHash, tr.TxHash)
			require.Equal(t, from, tr.From)
			require.Equal(t, model.CreditStatusCredited, tr.To)
			require.NotNil(t, tr.ResolvedBy)
			require.Equal(t, creditedBy, *tr.ResolvedBy)
			return true, nil
		})
	m.credits.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, rec *model.SpinCreditRecord) (bool, error) {
			require.Equal(t, txHash, rec.TxHash)
			require.Equal(t, account, rec.Account)
			require.Equal(t, spins, rec.SpinsCredited)
			require.Equal(t, creditedBy, rec.CreditedBy)
			return true, nil
		})
	m.accounts.EXPECT().AddSpinsTx(gomock.Any(), gomock.Any(), account, spins).Return(newBalance, nil)
}
