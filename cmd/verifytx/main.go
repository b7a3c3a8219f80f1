// Command verifytx fetches one transaction by digest and reports whether the
// indexer would treat it as a payment and how many spins it would earn.
//
//	verifytx -custodial 0x... [-rpc URL] [-db URL] <digest>
//
// With -db the stored credit configuration is used; otherwise -rate-sui and
// -limit-sui apply.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain/sui"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/credit"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/pipeline/classifier"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store/postgres"
)

const defaultRPCURL = "https://fullnode.testnet.sui.io:443"

// report is printed as JSON.
type report struct {
	Digest        string `json:"digest"`
	Network       string `json:"network"`
	Qualifies     bool   `json:"qualifies"`
	IgnoreReason  string `json:"ignore_reason,omitempty"`
	Sender        string `json:"sender,omitempty"`
	Checkpoint    int64  `json:"checkpoint,omitempty"`
	AmountSui     string `json:"amount_sui,omitempty"`
	Spins         int64  `json:"spins"`
	AutoApproved  bool   `json:"auto_approved"`
	RateSui       string `json:"exchange_rate_sui"`
	LimitSui      string `json:"auto_approval_limit_sui"`
	ConfigVersion int64  `json:"config_version,omitempty"`
}

func verify(ctx context.Context, ledger chain.LedgerClient, cls *classifier.Classifier, digest string, cfg model.CreditConfig) (*report, error) {
	tx, err := ledger.GetTransaction(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction %s: %w", digest, err)
	}

	r := &report{
		Digest:        digest,
		Network:       ledger.Network(),
		RateSui:       model.MistToSui(cfg.ExchangeRate).String(),
		LimitSui:      model.MistToSui(cfg.AutoApprovalLimit).String(),
		ConfigVersion: cfg.Version,
	}

	verdict := cls.Classify(*tx)
	if !verdict.Qualifies() {
		r.IgnoreReason = string(verdict.Reason)
		return r, nil
	}

	t := verdict.Transfer
	r.Qualifies = true
	r.Sender = t.SenderAddress
	r.Checkpoint = t.Checkpoint
	r.AmountSui = model.MistToSui(t.AmountNative).String()
	r.Spins = credit.ComputeSpins(t.AmountNative, cfg.ExchangeRate)
	r.AutoApproved = t.AmountNative.LessThanOrEqual(cfg.AutoApprovalLimit)
	return r, nil
}

func flagConfig(rateSui, limitSui string) (model.CreditConfig, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(rateSui))
	if err != nil || !rate.IsPositive() {
		return model.CreditConfig{}, fmt.Errorf("-rate-sui %q must be a positive decimal", rateSui)
	}
	limit, err := decimal.NewFromString(strings.TrimSpace(limitSui))
	if err != nil || limit.IsNegative() {
		return model.CreditConfig{}, fmt.Errorf("-limit-sui %q must be a non-negative decimal", limitSui)
	}
	return model.CreditConfig{
		ExchangeRate:      model.SuiToMist(rate),
		AutoApprovalLimit: model.SuiToMist(limit),
	}, nil
}

func storedConfig(ctx context.Context, dbURL string) (model.CreditConfig, error) {
	db, err := postgres.New(postgres.Config{URL: dbURL, MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: time.Minute})
	if err != nil {
		return model.CreditConfig{}, err
	}
	defer db.Close()

	cfg, err := postgres.NewCreditConfigRepo(db).Get(ctx)
	if err != nil {
		return model.CreditConfig{}, fmt.Errorf("load credit config: %w", err)
	}
	return *cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("verifytx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rpcURL := fs.String("rpc", envOr("SUI_RPC_URL", defaultRPCURL), "Sui JSON-RPC endpoint")
	network := fs.String("network", envOr("SUI_NETWORK", "testnet"), "Sui network name")
	custodial := fs.String("custodial", os.Getenv("CUSTODIAL_ADDRESS"), "custodial address receiving payments")
	coinType := fs.String("coin-type", model.NativeCoinType, "payment coin type")
	dbURL := fs.String("db", "", "read the stored credit config from this database")
	rateSui := fs.String("rate-sui", envOr("CREDIT_EXCHANGE_RATE_SUI", "1"), "SUI per spin")
	limitSui := fs.String("limit-sui", envOr("CREDIT_AUTO_APPROVAL_LIMIT_SUI", "100"), "auto-approval limit in SUI")
	timeout := fs.Duration("timeout", 30*time.Second, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: verifytx [flags] <digest>")
	}
	if strings.TrimSpace(*custodial) == "" {
		return errors.New("-custodial (or CUSTODIAL_ADDRESS) is required")
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var cfg model.CreditConfig
	var err error
	if *dbURL != "" {
		cfg, err = storedConfig(ctx, *dbURL)
	} else {
		cfg, err = flagConfig(*rateSui, *limitSui)
	}
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ledger := sui.NewAdapter(*rpcURL, sui.Config{Network: *network, RPS: 5, Burst: 5}, logger)

	r, err := verify(ctx, ledger, classifier.New(*custodial, *coinType), strings.TrimSpace(fs.Arg(0)), cfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "verifytx:", err)
		}
		os.Exit(1)
	}
}
