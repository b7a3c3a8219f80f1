package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/admin"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/alert"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/api"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/cache"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/chain/sui"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/config"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/credit"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/pipeline"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/pipeline/classifier"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/pipeline/scanner"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/reconciliation"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/store/postgres"
	redispkg "github.com/Mohsinsiddi/fun-suidex-sub000/internal/store/redis"
	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/tracing"
)

const (
	serviceName     = "spin-indexer"
	primaryPoolName = "primary"
	shutdownTimeout = 5 * time.Second
)

type dbStatsProvider interface {
	Stats() sql.DBStats
}

type dbPoolStatsGauges struct {
	open         *prometheus.GaugeVec
	inUse        *prometheus.GaugeVec
	idle         *prometheus.GaugeVec
	waitCount    *prometheus.GaugeVec
	waitDuration *prometheus.GaugeVec
}

func collectDBPoolStats(db dbStatsProvider, pool string, gauges dbPoolStatsGauges) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("db pool stats collection panicked: %v", r)
		}
	}()
	if db == nil {
		return fmt.Errorf("db stats provider is nil")
	}

	stats := db.Stats()
	gauges.open.WithLabelValues(pool).Set(float64(stats.OpenConnections))
	gauges.inUse.WithLabelValues(pool).Set(float64(stats.InUse))
	gauges.idle.WithLabelValues(pool).Set(float64(stats.Idle))
	gauges.waitCount.WithLabelValues(pool).Set(float64(stats.WaitCount))
	gauges.waitDuration.WithLabelValues(pool).Set(stats.WaitDuration.Seconds())
	return nil
}

func startDBPoolStatsPump(ctx context.Context, db dbStatsProvider, intervalMS int, logger *slog.Logger) {
	if db == nil || intervalMS <= 0 {
		return
	}

	gauges := dbPoolStatsGauges{
		open:         metrics.DBPoolOpen,
		inUse:        metrics.DBPoolInUse,
		idle:         metrics.DBPoolIdle,
		waitCount:    metrics.DBPoolWaitCount,
		waitDuration: metrics.DBPoolWaitDurationSeconds,
	}

	ticker := time.NewTicker(time.Duration(intervalMS) * time.Millisecond)

	go func() {
		defer ticker.Stop()

		if err := collectDBPoolStats(db, primaryPoolName, gauges); err != nil {
			logger.Warn("failed to collect initial db pool stats", "error", err)
		}

		for {
			select {
			case <-ctx.Done():
				logger.Info("db pool stats sampler stopped", "cause", "context_done")
				return
			case <-ticker.C:
				if err := collectDBPoolStats(db, primaryPoolName, gauges); err != nil {
					logger.Warn("failed to collect db pool stats", "error", err)
				}
			}
		}
	}()
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// scanLockKey scopes the distributed scan lock to one custodial address on
// one network.
func scanLockKey(network, address string) string {
	return fmt.Sprintf("spin:scan-lock:%s:%s", network, model.NormalizeAddress(address))
}

func buildAlerter(cfg config.AlertConfig, logger *slog.Logger) alert.Alerter {
	var sinks []alert.Alerter
	if url := strings.TrimSpace(cfg.SlackWebhookURL); url != "" {
		sinks = append(sinks, alert.NewSlackAlerter(url))
	}
	if url := strings.TrimSpace(cfg.WebhookURL); url != "" {
		sinks = append(sinks, alert.NewWebhookAlerter(url))
	}
	if len(sinks) == 0 {
		return &alert.NoopAlerter{}
	}
	return alert.NewMultiAlerter(cfg.Cooldown, logger, sinks...)
}

// coordination is the cross-instance plumbing: the scan lock and the credit
// event sink. Both fall back to process-local versions without Redis.
type coordination struct {
	lock      pipeline.ScanLock
	publisher credit.EventPublisher
	backend   string
	close     func() error
}

var connectRedis = redispkg.Connect

func resolveCoordination(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*coordination, error) {
	lockTTL := cfg.Scanner.LockTTL
	redisURL := strings.TrimSpace(cfg.Redis.URL)
	if redisURL == "" {
		logger.Warn("redis not configured; scan lock is process-local and credit events are not streamed")
		return &coordination{
			lock:    redispkg.NewMemoryLock(lockTTL),
			backend: "memory",
			close:   func() error { return nil },
		}, nil
	}

	client, err := connectRedis(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("initialize redis: %w", err)
	}
	publisher := redispkg.NewCreditPublisher(client, cfg.Redis.CreditStream, 0)
	logger.Info("redis coordination enabled", "credit_stream", publisher.Stream())
	return &coordination{
		lock:      redispkg.NewScanLock(client, scanLockKey(cfg.Sui.Network, cfg.Sui.CustodialAddress), lockTTL),
		publisher: publisher,
		backend:   "redis",
		close:     client.Close,
	}, nil
}

type pinger interface {
	PingContext(ctx context.Context) error
}

type scanHealthSource interface {
	HealthSnapshot() pipeline.HealthSnapshot
}

// healthMux serves liveness, readiness and Prometheus metrics. Readiness
// fails while the database is unreachable or the scanner is unhealthy.
func healthMux(db pinger, scan scanHealthSource, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Warn("failed to write health response", "error", err)
		}
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if db == nil {
			http.Error(w, "database not configured", http.StatusServiceUnavailable)
			return
		}
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		if scan != nil && scan.HealthSnapshot().Status == string(pipeline.HealthStatusUnhealthy) {
			http.Error(w, "scanner unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func runHTTPServer(ctx context.Context, name string, port int, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("server shutdown error", "server", name, "error", err)
		}
	}()

	logger.Info("server started", "server", name, "port", port)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	network := model.Network(cfg.Sui.Network)
	custodial := model.NormalizeAddress(cfg.Sui.CustodialAddress)

	logger.Info("starting spin indexer",
		"sui_rpc", cfg.Sui.RPCURL,
		"sui_network", network,
		"custodial_address", custodial,
		"coin_type", cfg.Sui.CoinType,
		"scan_interval", cfg.Scanner.Interval,
		"admin_port", cfg.Server.AdminPort,
		"api_port", cfg.Server.APIPort,
		"reconcile_interval", cfg.Reconcile.Interval,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	tracingEndpoint := ""
	if cfg.Tracing.Enabled {
		tracingEndpoint = cfg.Tracing.Endpoint
	}
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: serviceName,
		Network:     string(network),
		Endpoint:    tracingEndpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()
	if cfg.Tracing.Enabled {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}

	// PostgreSQL
	db, err := postgres.New(postgres.Config{
		URL:                cfg.DB.URL,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetime:    cfg.DB.ConnMaxLifetime,
		StatementTimeoutMS: cfg.DB.StatementTimeoutMS,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := db.RunMigrations(ctx, cfg.DB.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "dir", cfg.DB.MigrationsDir, "error", err)
		os.Exit(1)
	}

	cursors := postgres.NewCursorRepo(db)
	transfers := postgres.NewTransferRepo(db)
	accounts := postgres.NewAccountRepo(db)
	creditConfigs := postgres.NewCreditConfigRepo(db)
	creditRecords := postgres.NewCreditRecordRepo(db)

	seed, err := cfg.Credit.Model()
	if err != nil {
		logger.Error("invalid credit config", "error", err)
		os.Exit(1)
	}
	if err := creditConfigs.EnsureDefault(ctx, seed); err != nil {
		logger.Error("failed to seed credit config", "error", err)
		os.Exit(1)
	}

	// Redis (optional)
	coord, err := resolveCoordination(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize coordination backend", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := coord.close(); err != nil {
			logger.Warn("coordination backend close error", "backend", coord.backend, "error", err)
		}
	}()

	// Ledger and pipeline
	ledger := sui.NewAdapter(cfg.Sui.RPCURL, sui.Config{
		Network: string(network),
		RPS:     cfg.Sui.RPCRPS,
		Burst:   cfg.Sui.RPCBurst,
	}, logger)
	cls := classifier.New(custodial, cfg.Sui.CoinType)
	alerter := buildAlerter(cfg.Alert, logger)
	resolver := cache.NewAccountResolver(accounts, cfg.Cache.AccountCacheSize, cfg.Cache.AccountCacheTTL)

	creditSvc := credit.NewService(db, credit.Repositories{
		Transfers: transfers,
		Credits:   creditRecords,
		Accounts:  accounts,
		Configs:   creditConfigs,
	}, ledger, cls, logger,
		credit.WithPublisher(coord.publisher),
		credit.WithAlerter(alerter),
		credit.WithSenderResolver(resolver),
	)

	scan := pipeline.New(pipeline.Config{
		Network:            network,
		CustodialAddress:   custodial,
		Interval:           cfg.Scanner.Interval,
		MaxPagesPerCycle:   cfg.Scanner.MaxPagesPerCycle,
		CycleTimeout:       cfg.Scanner.CycleTimeout,
		UnhealthyThreshold: cfg.Scanner.UnhealthyThreshold,
	}, pipeline.Deps{
		DB:         db,
		Cursors:    cursors,
		Transfers:  transfers,
		Source:     scanner.New(ledger, custodial, cfg.Scanner.PageSize, logger),
		Classifier: cls,
		Resolver:   resolver,
		Crediter:   creditSvc,
		Lock:       coord.lock,
		Alerter:    alerter,
	}, logger)

	ledgerAudit := postgres.NewReconciliationRepo(db)
	auditor := reconciliation.NewService(db, ledgerAudit, string(network), alerter, logger)
	auditor.SetSnapshotRepository(ledgerAudit)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runHTTPServer(gCtx, "health", cfg.Server.HealthPort, healthMux(db, scan, logger), logger)
	})

	if cfg.Server.AdminPort > 0 {
		adminSrv := admin.NewServer(transfers, creditSvc, cfg.Server.AdminToken, logger,
			admin.WithCursorStore(cursors, network, custodial),
			admin.WithAddressLinker(resolver),
			admin.WithScanner(scan),
			admin.WithReconciler(auditor),
		)
		rl := admin.NewRateLimitMiddleware(logger)
		handler := admin.AuditMiddleware(logger, rl.Wrap(adminSrv.Handler()))
		g.Go(func() error {
			return runHTTPServer(gCtx, "admin", cfg.Server.AdminPort, handler, logger)
		})
	}

	if cfg.Server.APIPort > 0 {
		apiSrv := api.NewServer(creditSvc, transfers, accounts, logger)
		g.Go(func() error {
			return runHTTPServer(gCtx, "api", cfg.Server.APIPort, apiSrv.Handler(), logger)
		})
	}

	g.Go(func() error {
		return scan.Run(gCtx)
	})

	if cfg.Reconcile.Interval > 0 {
		g.Go(func() error {
			return auditor.RunPeriodic(gCtx, cfg.Reconcile.Interval)
		})
	}

	startDBPoolStatsPump(gCtx, db.DB, cfg.DB.PoolStatsIntervalMS, logger)

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("indexer exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("indexer shut down gracefully")
}
