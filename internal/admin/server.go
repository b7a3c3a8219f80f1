package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/credit"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/pipeline"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/reconciliation"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store"
)

const (
	maxRequestBodyBytes = 1 << 20 // 1 MB
	maxBulkClaimHashes  = 500
	defaultListLimit    = 50
	maxListLimit        = 500

	// adminIDHeader names the operator on whose behalf a mutation runs.
	adminIDHeader  = "X-Admin-ID"
	defaultAdminID = "admin"
)

// TransferReader is the read side of the payment ledger.
type TransferReader interface {
	Get(ctx context.Context, txHash string) (*model.ChainTransfer, error)
	List(ctx context.Context, filter model.TransferFilter) ([]model.ChainTransfer, int, error)
	Stats(ctx context.Context) (model.TransferStats, error)
}

// CreditService is the administrative surface of the credit engine.
type CreditService interface {
	Approve(ctx context.Context, txHash, adminID string) (model.CreditDecision, error)
	Reject(ctx context.Context, txHash, adminID, reason string) (*model.ChainTransfer, error)
	ClaimMany(ctx context.Context, txHashes []string, opts credit.ClaimOptions) (credit.ClaimSummary, error)
	CurrentConfig(ctx context.Context) (model.CreditConfig, error)
	UpdateConfig(ctx context.Context, cfg model.CreditConfig, updatedBy string) (model.CreditConfig, error)
}

// CursorStore reads and rewinds the scan cursor.
type CursorStore interface {
	Get(ctx context.Context, network model.Network, address string) (*model.SyncCursor, error)
	Reset(ctx context.Context, network model.Network, address string, cursorValue *string) (*model.SyncCursor, error)
}

// AddressLinker links sender addresses to accounts.
type AddressLinker interface {
	Link(ctx context.Context, link *model.AccountAddress) error
}

// ScannerController exposes scanner health and pause/resume.
type ScannerController interface {
	HealthSnapshot() pipeline.HealthSnapshot
	Pause()
	Resume()
	Paused() bool
}

// Reconciler runs the ledger audit on demand and reports the last run.
type Reconciler interface {
	Reconcile(ctx context.Context) (*reconciliation.RunResult, error)
	Last() *reconciliation.RunResult
}

// Server provides the HTTP admin API for payment review and operations.
type Server struct {
	transfers TransferReader
	credits   CreditService
	cursors   CursorStore
	linker    AddressLinker
	scanner   ScannerController
	auditor   Reconciler
	network   model.Network
	custodial string
	token     string
	logger    *slog.Logger
}

// ServerOption configures optional dependencies for the admin server.
type ServerOption func(*Server)

// WithCursorStore enables stats cursor info and cursor reset.
func WithCursorStore(c CursorStore, network model.Network, custodialAddress string) ServerOption {
	return func(s *Server) {
		s.cursors = c
		s.network = network
		s.custodial = model.NormalizeAddress(custodialAddress)
	}
}

// WithAddressLinker enables the account-address endpoint.
func WithAddressLinker(l AddressLinker) ServerOption {
	return func(s *Server) { s.linker = l }
}

// WithScanner enables the health and pause/resume endpoints.
func WithScanner(sc ScannerController) ServerOption {
	return func(s *Server) { s.scanner = sc }
}

// WithReconciler enables the reconciliation endpoints.
func WithReconciler(rc Reconciler) ServerOption {
	return func(s *Server) { s.auditor = rc }
}

// NewServer creates an admin API server. Every route requires
// "Authorization: Bearer <token>"; an empty token rejects all requests.
func NewServer(transfers TransferReader, credits CreditService, token string, logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		transfers: transfers,
		credits:   credits,
		token:     token,
		logger:    logger.With("component", "admin"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for the admin API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/v1/transfers", s.handleListTransfers)
	mux.HandleFunc("GET /admin/v1/transfers/{txHash}", s.handleGetTransfer)
	mux.HandleFunc("POST /admin/v1/transfers/{txHash}/approve", s.handleApprove)
	mux.HandleFunc("POST /admin/v1/transfers/{txHash}/reject", s.handleReject)
	mux.HandleFunc("POST /admin/v1/claims/bulk", s.handleBulkClaim)
	mux.HandleFunc("GET /admin/v1/stats", s.handleStats)
	mux.HandleFunc("GET /admin/v1/credit-config", s.handleGetCreditConfig)
	mux.HandleFunc("PUT /admin/v1/credit-config", s.handleUpdateCreditConfig)
	mux.HandleFunc("POST /admin/v1/cursor/reset", s.handleCursorReset)
	mux.HandleFunc("POST /admin/v1/account-addresses", s.handleLinkAddress)
	mux.HandleFunc("GET /admin/v1/health", s.handleHealth)
	mux.HandleFunc("POST /admin/v1/scanner/pause", s.handlePause)
	mux.HandleFunc("POST /admin/v1/scanner/resume", s.handleResume)
	mux.HandleFunc("POST /admin/v1/reconciliation/run", s.handleReconcile)
	mux.HandleFunc("GET /admin/v1/reconciliation/last", s.handleLastReconciliation)
	return s.requireToken(mux)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || s.token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminID returns the operator recorded on resolutions and config writes.
func adminID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(adminIDHeader)); id != "" {
		return id
	}
	return defaultAdminID
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSONBody reads and decodes a JSON request body into v.
// Returns false (and writes an error response) if decoding fails.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func parsePaging(r *http.Request) (limit, offset int, ok bool) {
	limit, offset = defaultListLimit, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		limit = min(n, maxListLimit)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

// --- Transfers ---

type transferResponse struct {
	TxHash          string     `json:"tx_hash"`
	Network         string     `json:"network"`
	SenderAddress   string     `json:"sender_address"`
	AmountMist      string     `json:"amount_mist"`
	AmountSui       string     `json:"amount_sui"`
	Checkpoint      int64      `json:"checkpoint"`
	ChainTimestamp  *time.Time `json:"chain_timestamp,omitempty"`
	ObservedAt      time.Time  `json:"observed_at"`
	CreditStatus    string     `json:"credit_status"`
	LinkedAccount   *string    `json:"linked_account,omitempty"`
	SuggestedSpins  int64      `json:"suggested_spins"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	ResolvedBy      *string    `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	Source          string     `json:"source"`
}

func toTransferResponse(t *model.ChainTransfer) transferResponse {
	return transferResponse{
		TxHash:          t.TxHash,
		Network:         string(t.Network),
		SenderAddress:   t.SenderAddress,
		AmountMist:      t.AmountNative.String(),
		AmountSui:       model.MistToSui(t.AmountNative).String(),
		Checkpoint:      t.Checkpoint,
		ChainTimestamp:  t.ChainTimestamp,
		ObservedAt:      t.ObservedAt,
		CreditStatus:    string(t.CreditStatus),
		LinkedAccount:   t.LinkedAccount,
		SuggestedSpins:  t.SuggestedSpins,
		RejectionReason: t.RejectionReason,
		ResolvedBy:      t.ResolvedBy,
		ResolvedAt:      t.ResolvedAt,
		Source:          string(t.Source),
	}
}

type transferListResponse struct {
	Total     int                `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	Transfers []transferResponse `json:"transfers"`
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := parsePaging(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit and offset must be non-negative integers")
		return
	}
	filter := model.TransferFilter{Limit: limit, Offset: offset}

	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		status := model.CreditStatus(v)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status value")
			return
		}
		filter.Status = &status
	}
	if v := q.Get("unattributed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unattributed must be a boolean")
			return
		}
		filter.UnattributedOnly = b
	}
	if v := q.Get("account"); v != "" {
		filter.Account = &v
	}

	transfers, total, err := s.transfers.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("list transfers failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := transferListResponse{Total: total, Limit: limit, Offset: offset, Transfers: make([]transferResponse, len(transfers))}
	for i := range transfers {
		resp.Transfers[i] = toTransferResponse(&transfers[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTransfer(w http.ResponseWriter, r *http.Request) {
	t, err := s.transfers.Get(r.Context(), r.PathValue("txHash"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transfer not found")
		return
	}
	if err != nil {
		s.logger.Error("get transfer failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toTransferResponse(t))
}

// --- Approval ---

type resolutionResponse struct {
	TxHash       string `json:"tx_hash"`
	CreditStatus string `json:"credit_status"`
	Account      string `json:"account_id,omitempty"`
	Spins        int64  `json:"spins,omitempty"`
	Balance      int64  `json:"balance,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// writeResolutionError maps credit sentinel errors to HTTP status codes.
func (s *Server) writeResolutionError(w http.ResponseWriter, op, txHash string, err error) {
	switch {
	case errors.Is(err, credit.ErrTransferNotFound):
		writeError(w, http.StatusNotFound, "transfer not found")
	case errors.Is(err, credit.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, "transfer already resolved")
	case errors.Is(err, credit.ErrNotPending):
		writeError(w, http.StatusConflict, "transfer is not awaiting approval")
	default:
		s.logger.Error(op+" failed", "tx_hash", txHash, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	txHash := r.PathValue("txHash")
	d, err := s.credits.Approve(r.Context(), txHash, adminID(r))
	if err != nil {
		s.writeResolutionError(w, "approve", txHash, err)
		return
	}
	writeJSON(w, http.StatusOK, resolutionResponse{
		TxHash:       d.TxHash,
		CreditStatus: string(d.Status),
		Account:      d.Account,
		Spins:        d.Spins,
		Balance:      d.Balance,
	})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	txHash := r.PathValue("txHash")
	var req rejectRequest
	if r.ContentLength != 0 && !decodeJSONBody(w, r, &req) {
		return
	}

	t, err := s.credits.Reject(r.Context(), txHash, adminID(r), strings.TrimSpace(req.Reason))
	if err != nil {
		s.writeResolutionError(w, "reject", txHash, err)
		return
	}
	resp := resolutionResponse{TxHash: t.TxHash, CreditStatus: string(t.CreditStatus)}
	if t.RejectionReason != nil {
		resp.Reason = *t.RejectionReason
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Bulk claims ---

type bulkClaimRequest struct {
	TxHashes  []string `json:"tx_hashes"`
	AccountID *string  `json:"account_id"`
}

func (s *Server) handleBulkClaim(w http.ResponseWriter, r *http.Request) {
	var req bulkClaimRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if len(req.TxHashes) == 0 {
		writeError(w, http.StatusBadRequest, "tx_hashes is required")
		return
	}
	if len(req.TxHashes) > maxBulkClaimHashes {
		writeError(w, http.StatusBadRequest, "too many tx_hashes")
		return
	}
	opts := credit.ClaimOptions{Actor: adminID(r)}
	if req.AccountID != nil {
		account := strings.TrimSpace(*req.AccountID)
		if account == "" {
			writeError(w, http.StatusBadRequest, "account_id must not be empty")
			return
		}
		opts.AttributeTo = &account
	}

	summary, err := s.credits.ClaimMany(r.Context(), req.TxHashes, opts)
	if err != nil {
		s.logger.Error("bulk claim failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- Stats ---

type cursorResponse struct {
	Network        string     `json:"network"`
	Address        string     `json:"address"`
	CursorValue    *string    `json:"cursor_value"`
	Checkpoint     int64      `json:"checkpoint"`
	PagesProcessed int64      `json:"pages_processed"`
	Version        int64      `json:"version"`
	LastSyncedAt   *time.Time `json:"last_synced_at,omitempty"`
}

func toCursorResponse(c *model.SyncCursor) *cursorResponse {
	if c == nil {
		return nil
	}
	return &cursorResponse{
		Network:        string(c.Network),
		Address:        c.Address,
		CursorValue:    c.CursorValue,
		Checkpoint:     c.CheckpointSequence,
		PagesProcessed: c.PagesProcessed,
		Version:        c.Version,
		LastSyncedAt:   c.LastSyncedAt,
	}
}

type statsResponse struct {
	Transfers model.TransferStats `json:"transfers"`
	Cursor    *cursorResponse     `json:"cursor,omitempty"`
	Scanner   *string             `json:"scanner_status,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.transfers.Stats(r.Context())
	if err != nil {
		s.logger.Error("transfer stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	resp := statsResponse{Transfers: stats}

	if s.cursors != nil {
		c, err := s.cursors.Get(r.Context(), s.network, s.custodial)
		if err != nil {
			s.logger.Error("load cursor failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		resp.Cursor = toCursorResponse(c)
	}
	if s.scanner != nil {
		status := s.scanner.HealthSnapshot().Status
		resp.Scanner = &status
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Credit config ---

// creditConfigResponse expresses amounts in SUI; storage is in MIST.
type creditConfigResponse struct {
	ExchangeRateSui      string    `json:"exchange_rate_sui"`
	AutoApprovalLimitSui string    `json:"auto_approval_limit_sui"`
	LookbackWindowHours  float64   `json:"lookback_window_hours"`
	Version              int64     `json:"version"`
	UpdatedBy            string    `json:"updated_by,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func toCreditConfigResponse(cfg model.CreditConfig) creditConfigResponse {
	return creditConfigResponse{
		ExchangeRateSui:      model.MistToSui(cfg.ExchangeRate).String(),
		AutoApprovalLimitSui: model.MistToSui(cfg.AutoApprovalLimit).String(),
		LookbackWindowHours:  cfg.LookbackWindow.Hours(),
		Version:              cfg.Version,
		UpdatedBy:            cfg.UpdatedBy,
		UpdatedAt:            cfg.UpdatedAt,
	}
}

type updateCreditConfigRequest struct {
	ExchangeRateSui      *decimal.Decimal `json:"exchange_rate_sui"`
	AutoApprovalLimitSui *decimal.Decimal `json:"auto_approval_limit_sui"`
	LookbackWindowHours  *float64         `json:"lookback_window_hours"`
}

func (s *Server) handleGetCreditConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.credits.CurrentConfig(r.Context())
	if err != nil {
		s.logger.Error("load credit config failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toCreditConfigResponse(cfg))
}

// handleUpdateCreditConfig applies a partial update: omitted fields keep
// their current values.
func (s *Server) handleUpdateCreditConfig(w http.ResponseWriter, r *http.Request) {
	var req updateCreditConfigRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.ExchangeRateSui == nil && req.AutoApprovalLimitSui == nil && req.LookbackWindowHours == nil {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	cfg, err := s.credits.CurrentConfig(r.Context())
	if err != nil {
		s.logger.Error("load credit config failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if req.ExchangeRateSui != nil {
		cfg.ExchangeRate = model.SuiToMist(*req.ExchangeRateSui)
	}
	if req.AutoApprovalLimitSui != nil {
		cfg.AutoApprovalLimit = model.SuiToMist(*req.AutoApprovalLimitSui)
	}
	if req.LookbackWindowHours != nil {
		cfg.LookbackWindow = time.Duration(*req.LookbackWindowHours * float64(time.Hour))
	}

	updated, err := s.credits.UpdateConfig(r.Context(), cfg, adminID(r))
	if errors.Is(err, credit.ErrInvalidConfig) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("update credit config failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toCreditConfigResponse(updated))
}

// --- Cursor reset ---

type cursorResetRequest struct {
	CursorValue *string `json:"cursor_value"`
}

// handleCursorReset rewinds the scan cursor. Re-scanned transfers are
// deduplicated by tx hash, so rewinding is always safe.
func (s *Server) handleCursorReset(w http.ResponseWriter, r *http.Request) {
	if s.cursors == nil {
		writeError(w, http.StatusServiceUnavailable, "cursor store not available")
		return
	}
	var req cursorResetRequest
	if r.ContentLength != 0 && !decodeJSONBody(w, r, &req) {
		return
	}
	if req.CursorValue != nil && strings.TrimSpace(*req.CursorValue) == "" {
		req.CursorValue = nil
	}

	c, err := s.cursors.Reset(r.Context(), s.network, s.custodial, req.CursorValue)
	if err != nil {
		s.logger.Error("cursor reset failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.logger.Warn("scan cursor reset",
		"admin_id", adminID(r),
		"cursor_value", c.CursorValueOrEmpty(),
		"version", c.Version,
	)
	writeJSON(w, http.StatusOK, toCursorResponse(c))
}

// --- Account addresses ---

type linkAddressRequest struct {
	Address   string  `json:"address"`
	AccountID string  `json:"account_id"`
	Label     *string `json:"label"`
}

func (s *Server) handleLinkAddress(w http.ResponseWriter, r *http.Request) {
	if s.linker == nil {
		writeError(w, http.StatusServiceUnavailable, "account linking not available")
		return
	}
	var req linkAddressRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	req.Address = strings.TrimSpace(req.Address)
	req.AccountID = strings.TrimSpace(req.AccountID)
	if req.Address == "" || req.AccountID == "" {
		writeError(w, http.StatusBadRequest, "address and account_id are required")
		return
	}

	link := &model.AccountAddress{Address: req.Address, AccountID: req.AccountID, Label: req.Label}
	if err := s.linker.Link(r.Context(), link); err != nil {
		s.logger.Error("link account address failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.logger.Info("account address linked", "address", link.Address, "account_id", link.AccountID)
	writeJSON(w, http.StatusCreated, map[string]string{"address": link.Address, "account_id": link.AccountID})
}

// --- Scanner ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		writeError(w, http.StatusServiceUnavailable, "health provider not available")
		return
	}
	writeJSON(w, http.StatusOK, s.scanner.HealthSnapshot())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		writeError(w, http.StatusServiceUnavailable, "scanner not available")
		return
	}
	s.scanner.Pause()
	writeJSON(w, http.StatusOK, map[string]bool{"paused": s.scanner.Paused()})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		writeError(w, http.StatusServiceUnavailable, "scanner not available")
		return
	}
	s.scanner.Resume()
	writeJSON(w, http.StatusOK, map[string]bool{"paused": s.scanner.Paused()})
}

// --- Reconciliation ---

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if s.auditor == nil {
		writeError(w, http.StatusServiceUnavailable, "reconciliation not available")
		return
	}
	result, err := s.auditor.Reconcile(r.Context())
	if errors.Is(err, reconciliation.ErrRunInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("reconciliation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.logger.Info("reconciliation triggered", "admin", adminID(r), "run_id", result.RunID, "findings", len(result.Findings))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLastReconciliation(w http.ResponseWriter, r *http.Request) {
	if s.auditor == nil {
		writeError(w, http.StatusServiceUnavailable, "reconciliation not available")
		return
	}
	last := s.auditor.Last()
	if last == nil {
		writeError(w, http.StatusNotFound, "no reconciliation run yet")
		return
	}
	writeJSON(w, http.StatusOK, last)
}
