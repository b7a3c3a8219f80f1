package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/credit"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/ratelimit"
)

type fakeClaimer struct {
	account string
	txHash  string
	receipt *credit.ClaimReceipt
	err     error
}

func (f *fakeClaimer) ClaimOwn(_ context.Context, account, txHash string) (*credit.ClaimReceipt, error) {
	f.account, f.txHash = account, txHash
	return f.receipt, f.err
}

type fakePayments struct {
	filter    model.TransferFilter
	transfers []model.ChainTransfer
	err       error
}

func (f *fakePayments) List(_ context.Context, filter model.TransferFilter) ([]model.ChainTransfer, int, error) {
	f.filter = filter
	return f.transfers, len(f.transfers), f.err
}

type fakeBalances struct {
	balances map[string]int64
}

func (f *fakeBalances) GetBalance(_ context.Context, account string) (*model.SpinBalance, error) {
	return &model.SpinBalance{AccountID: account, Spins: f.balances[account]}, nil
}

func sui(s string) decimal.Decimal {
	return model.SuiToMist(decimal.RequireFromString(s))
}

type env struct {
	srv      *Server
	claimer  *fakeClaimer
	payments *fakePayments
	balances *fakeBalances
}

func newEnv(opts ...Option) *env {
	e := &env{
		claimer:  &fakeClaimer{},
		payments: &fakePayments{},
		balances: &fakeBalances{balances: map[string]int64{"acct-1": 42}},
	}
	e.srv = NewServer(e.claimer, e.payments, e.balances, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	return e
}

func (e *env) do(method, target, account, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if account != "" {
		req.Header.Set(DefaultAccountHeader, account)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	e := newEnv()
	for _, tc := range []struct{ method, target string }{
		{http.MethodPost, "/api/v1/claims"},
		{http.MethodGet, "/api/v1/payments"},
		{http.MethodGet, "/api/v1/balance"},
	} {
		assert.Equal(t, http.StatusUnauthorized, e.do(tc.method, tc.target, "", "").Code, tc.target)
	}
	assert.Empty(t, e.claimer.account)
}

func TestClaim_Credited(t *testing.T) {
	e := newEnv()
	account := "acct-1"
	e.claimer.receipt = &credit.ClaimReceipt{
		Transfer: &model.ChainTransfer{
			TxHash:         "0xabc",
			AmountNative:   sui("2.7"),
			SuggestedSpins: 2,
			CreditStatus:   model.CreditStatusCredited,
			LinkedAccount:  &account,
		},
		Decision: model.CreditDecision{TxHash: "0xabc", Outcome: model.CreditOutcomeCredited, Spins: 2, Balance: 44},
	}

	rec := e.do(http.MethodPost, "/api/v1/claims", "acct-1", `{"tx_hash":" 0xabc "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acct-1", e.claimer.account)
	assert.Equal(t, "0xabc", e.claimer.txHash)

	var resp claimResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "credited", resp.Outcome)
	assert.Equal(t, "credited", resp.Payment.Status)
	assert.Equal(t, "2.7", resp.Payment.AmountSui)
	assert.Equal(t, int64(2), resp.Payment.Spins)
	require.NotNil(t, resp.Balance)
	assert.Equal(t, int64(44), *resp.Balance)
}

func TestClaim_PendingApprovalHasNoBalance(t *testing.T) {
	e := newEnv()
	e.claimer.receipt = &credit.ClaimReceipt{
		Transfer: &model.ChainTransfer{TxHash: "0xbig", AmountNative: sui("500"), SuggestedSpins: 500, CreditStatus: model.CreditStatusPendingApproval},
		Decision: model.CreditDecision{TxHash: "0xbig", Outcome: model.CreditOutcomePendingApproval},
	}

	rec := e.do(http.MethodPost, "/api/v1/claims", "acct-1", `{"tx_hash":"0xbig"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp claimResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "pending_approval", resp.Payment.Status)
	assert.Nil(t, resp.Balance)
}

func TestClaim_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{credit.ErrTransferNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: non_native_only", credit.ErrNotQualifying), http.StatusUnprocessableEntity},
		{credit.ErrOutsideLookback, http.StatusUnprocessableEntity},
		{credit.ErrAttributedElsewhere, http.StatusConflict},
		{errors.New("rpc timeout"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			e := newEnv()
			e.claimer.err = tc.err
			rec := e.do(http.MethodPost, "/api/v1/claims", "acct-1", `{"tx_hash":"0xabc"}`)
			assert.Equal(t, tc.code, rec.Code)
			assert.NotContains(t, rec.Body.String(), "rpc timeout")
		})
	}
}

func TestClaim_BadRequest(t *testing.T) {
	e := newEnv()
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/v1/claims", "acct-1", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/v1/claims", "acct-1", `nope`).Code)
	assert.Empty(t, e.claimer.txHash)
}

func TestClaim_RateLimitedPerAccount(t *testing.T) {
	e := newEnv(WithClaimLimiter(NewAccountLimiter(rate.Every(time.Hour), 1)))
	e.claimer.err = credit.ErrTransferNotFound

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/v1/claims", "acct-1", `{"tx_hash":"a"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, e.do(http.MethodPost, "/api/v1/claims", "acct-1", `{"tx_hash":"b"}`).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/v1/claims", "acct-2", `{"tx_hash":"c"}`).Code)
}

func TestListPayments_ScopedToCaller(t *testing.T) {
	e := newEnv()
	reason := "sent from an exchange"
	e.payments.transfers = []model.ChainTransfer{
		{TxHash: "0x1", AmountNative: sui("1"), SuggestedSpins: 1, CreditStatus: model.CreditStatusNew},
		{TxHash: "0x2", AmountNative: sui("3"), SuggestedSpins: 3, CreditStatus: model.CreditStatusRejected, RejectionReason: &reason},
	}

	rec := e.do(http.MethodGet, "/api/v1/payments?status=uncredited&limit=500&offset=5", "acct-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, e.payments.filter.Account)
	assert.Equal(t, "acct-1", *e.payments.filter.Account)
	require.NotNil(t, e.payments.filter.Status)
	assert.Equal(t, model.CreditStatusNew, *e.payments.filter.Status)
	assert.Equal(t, maxListLimit, e.payments.filter.Limit)
	assert.Equal(t, 5, e.payments.filter.Offset)

	var resp paymentListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Payments, 2)
	assert.Equal(t, "uncredited", resp.Payments[0].Status)
	assert.Nil(t, resp.Payments[0].RejectionReason)
	assert.Equal(t, "rejected", resp.Payments[1].Status)
	require.NotNil(t, resp.Payments[1].RejectionReason)
	assert.Equal(t, reason, *resp.Payments[1].RejectionReason)
}

func TestListPayments_BadParams(t *testing.T) {
	e := newEnv()
	for _, q := range []string{"status=new", "limit=0", "offset=-2"} {
		assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/v1/payments?"+q, "acct-1", "").Code, q)
	}
}

func TestBalance(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodGet, "/api/v1/balance", "acct-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"account_id":"acct-1","spins":42}`, rec.Body.String())

	rec = e.do(http.MethodGet, "/api/v1/balance", "acct-new", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"account_id":"acct-new","spins":0}`, rec.Body.String())
}

type staticAuth string

func (a staticAuth) Authenticate(*http.Request) (string, error) { return string(a), nil }

func TestCustomAuthenticator(t *testing.T) {
	e := newEnv(WithAuthenticator(staticAuth("acct-1")))
	rec := e.do(http.MethodGet, "/api/v1/balance", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"spins":42`)
}

func TestAccountLimiter_SweepsIdleEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newAccountLimiter(ratelimit.Config{
		Limit:      rate.Every(time.Second),
		Burst:      1,
		IdleTTL:    10 * time.Minute,
		SweepEvery: 16,
		Now:        func() time.Time { return now },
	})

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	now = now.Add(2 * time.Second)
	assert.True(t, l.Allow("a"), "token refills")

	now = now.Add(11 * time.Minute)
	for i := 0; i < 16; i++ {
		l.Allow("b")
	}
	assert.Equal(t, 1, l.Len())
}

func TestAccountLimiter_NilAllowsAll(t *testing.T) {
	var l *AccountLimiter
	assert.True(t, l.Allow("a"))
}
