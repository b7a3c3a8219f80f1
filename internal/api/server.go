// Package api serves the player-facing HTTP endpoints: claiming a payment,
// listing one's payments and reading the spin balance.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/credit"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
)

const (
	maxRequestBodyBytes = 16 << 10
	defaultListLimit    = 20
	maxListLimit        = 100
)

// Claimer credits a payment the caller says they sent.
type Claimer interface {
	ClaimOwn(ctx context.Context, account, txHash string) (*credit.ClaimReceipt, error)
}

// PaymentLister lists transfers for an account.
type PaymentLister interface {
	List(ctx context.Context, filter model.TransferFilter) ([]model.ChainTransfer, int, error)
}

// BalanceReader reads spin balances.
type BalanceReader interface {
	GetBalance(ctx context.Context, accountID string) (*model.SpinBalance, error)
}

type Option func(*Server)

// WithAuthenticator replaces the default header authenticator.
func WithAuthenticator(a Authenticator) Option {
	return func(s *Server) {
		if a != nil {
			s.auth = a
		}
	}
}

// WithClaimLimiter overrides the per-account claim rate limiter.
func WithClaimLimiter(l *AccountLimiter) Option {
	return func(s *Server) { s.limiter = l }
}

type Server struct {
	claims   Claimer
	payments PaymentLister
	balances BalanceReader
	auth     Authenticator
	limiter  *AccountLimiter
	logger   *slog.Logger
}

func NewServer(claims Claimer, payments PaymentLister, balances BalanceReader, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		claims:   claims,
		payments: payments,
		balances: balances,
		auth:     HeaderAuthenticator{},
		limiter:  NewAccountLimiter(DefaultClaimRate, DefaultClaimBurst),
		logger:   logger.With("component", "player_api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for the player API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/claims", s.authenticated(s.handleClaim))
	mux.HandleFunc("GET /api/v1/payments", s.authenticated(s.handleListPayments))
	mux.HandleFunc("GET /api/v1/balance", s.authenticated(s.handleBalance))
	return countRequests(mux)
}

type accountHandler func(w http.ResponseWriter, r *http.Request, account string)

func (s *Server) authenticated(next accountHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := s.auth.Authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		next(w, r, account)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// paymentResponse is the player's view of a transfer. Status is one of
// uncredited, pending_approval, credited or rejected.
type paymentResponse struct {
	TxHash          string     `json:"tx_hash"`
	AmountSui       string     `json:"amount_sui"`
	Spins           int64      `json:"spins"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	ObservedAt      time.Time  `json:"observed_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

func toPaymentResponse(t *model.ChainTransfer) paymentResponse {
	p := paymentResponse{
		TxHash:     t.TxHash,
		AmountSui:  model.MistToSui(t.AmountNative).String(),
		Spins:      t.SuggestedSpins,
		Status:     t.CreditStatus.PlayerLabel(),
		SentAt:     t.ChainTimestamp,
		ObservedAt: t.ObservedAt,
		ResolvedAt: t.ResolvedAt,
	}
	if t.CreditStatus == model.CreditStatusRejected {
		p.RejectionReason = t.RejectionReason
	}
	return p
}

// --- Claims ---

type claimRequest struct {
	TxHash string `json:"tx_hash"`
}

type claimResponse struct {
	Payment paymentResponse `json:"payment"`
	Outcome string          `json:"outcome"`
	Balance *int64          `json:"balance,omitempty"`
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request, account string) {
	if !s.limiter.Allow(account) {
		writeError(w, http.StatusTooManyRequests, "too many claims; try again shortly")
		return
	}

	var req claimRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.TxHash = strings.TrimSpace(req.TxHash)
	if req.TxHash == "" {
		writeError(w, http.StatusBadRequest, "tx_hash is required")
		return
	}

	receipt, err := s.claims.ClaimOwn(r.Context(), account, req.TxHash)
	if err != nil {
		s.writeClaimError(w, account, req.TxHash, err)
		return
	}

	resp := claimResponse{
		Payment: toPaymentResponse(receipt.Transfer),
		Outcome: string(receipt.Decision.Outcome),
	}
	if receipt.Decision.Credited() {
		balance := receipt.Decision.Balance
		resp.Balance = &balance
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeClaimError(w http.ResponseWriter, account, txHash string, err error) {
	switch {
	case errors.Is(err, credit.ErrTransferNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, credit.ErrNotQualifying):
		writeError(w, http.StatusUnprocessableEntity, "transaction is not a payment to the game wallet")
	case errors.Is(err, credit.ErrOutsideLookback):
		writeError(w, http.StatusUnprocessableEntity, "payment is too old to claim")
	case errors.Is(err, credit.ErrAttributedElsewhere):
		writeError(w, http.StatusConflict, "payment already claimed by another account")
	default:
		s.logger.Error("claim failed", "account", account, "tx_hash", txHash, "error", err)
		writeError(w, http.StatusInternalServerError, "claim could not be processed; try again later")
	}
}

// --- Payments ---

type paymentListResponse struct {
	Total    int               `json:"total"`
	Payments []paymentResponse `json:"payments"`
}

// playerStatuses maps the player-facing status filter to stored statuses.
var playerStatuses = map[string]model.CreditStatus{
	"uncredited":       model.CreditStatusNew,
	"pending_approval": model.CreditStatusPendingApproval,
	"credited":         model.CreditStatusCredited,
	"rejected":         model.CreditStatusRejected,
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request, account string) {
	filter := model.TransferFilter{Account: &account, Limit: defaultListLimit}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		status, ok := playerStatuses[v]
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid status value")
			return
		}
		filter.Status = &status
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = min(n, maxListLimit)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	transfers, total, err := s.payments.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("list payments failed", "account", account, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	resp := paymentListResponse{Total: total, Payments: make([]paymentResponse, len(transfers))}
	for i := range transfers {
		resp.Payments[i] = toPaymentResponse(&transfers[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Balance ---

type balanceResponse struct {
	AccountID string     `json:"account_id"`
	Spins     int64      `json:"spins"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request, account string) {
	b, err := s.balances.GetBalance(r.Context(), account)
	if err != nil {
		s.logger.Error("get balance failed", "account", account, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	resp := balanceResponse{AccountID: account, Spins: b.Spins}
	if !b.UpdatedAt.IsZero() {
		resp.UpdatedAt = &b.UpdatedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Metrics ---

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sr, r)
		metrics.HTTPRequestsTotal.WithLabelValues("api", r.Method, strconv.Itoa(sr.code)).Inc()
	})
}
