package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	credhandler "github.com/Goodnessmbakara/BlockVerify/internal/credential/handler"
	"github.com/Goodnessmbakara/BlockVerify/internal/credential/metrics"
	credservice "github.com/Goodnessmbakara/BlockVerify/internal/credential/service"
	"github.com/Goodnessmbakara/BlockVerify/internal/credential/store"
	"github.com/Goodnessmbakara/BlockVerify/internal/ledger"
	"github.com/Goodnessmbakara/BlockVerify/internal/monitor"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/config"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/database"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/health"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/logger"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/tracer"
	httptransport "github.com/Goodnessmbakara/BlockVerify/internal/transport/http"
	"github.com/Goodnessmbakara/BlockVerify/internal/wallet"
	"github.com/Goodnessmbakara/BlockVerify/migrations"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	log := logger.New()
	cfg := config.FromEnv(log)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("initializing blockverify",
		"addr", cfg.Addr,
		"ledger_rpc_url", cfg.LedgerRPCURL,
		"environment", cfg.Environment,
	)

	// The signing key resolves exactly once, at startup. A malformed secret is
	// fatal here rather than on the first issuance request.
	keys := wallet.NewManager(cfg.WalletSecret, wallet.WithLogger(log))
	keypair, err := keys.Keypair()
	if err != nil {
		log.Error("invalid wallet secret", "error", err)
		os.Exit(1)
	}
	log.Info("signing account ready", "address", keypair.Address())

	credentialStore, pool := newStore(cfg, log)
	defer pool.Close()

	rpc := ledger.NewRPC(cfg.LedgerRPCURL,
		ledger.WithRPCLogger(log),
		ledger.WithConfirmTimeout(cfg.ConfirmTimeout),
	)

	svc := credservice.NewService(credentialStore, rpc, keys, cfg.LedgerMin,
		credservice.WithLogger(log),
		credservice.WithMetrics(metrics.New()),
		credservice.WithTracer(tracer.NewOTel()),
	)

	probes := monitor.New(credentialStore, rpc, keys, cfg.LedgerMin, monitor.WithLogger(log))

	router := httptransport.NewRouter(httptransport.Config{
		Credentials:    credhandler.New(svc, log),
		Health:         health.New(cfg.Environment, probes),
		JWTSigningKey:  cfg.JWTSigningKey,
		RequestTimeout: cfg.RequestTimeout,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// newStore selects the persistence backend: Postgres when DATABASE_URL is set,
// otherwise an in-memory store for local development.
func newStore(cfg config.Server, log *slog.Logger) (store.Store, *database.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, database.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Warn("database unavailable, falling back to in-memory store", "error", err)
		return store.NewInMemoryStore(), nil
	}
	if pool == nil {
		log.Warn("DATABASE_URL not set, credentials will not survive restarts")
		return store.NewInMemoryStore(), nil
	}

	if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
		log.Warn("migrations failed, falling back to in-memory store", "error", err)
		pool.Close()
		return store.NewInMemoryStore(), nil
	}

	log.Info("connected to database")
	return store.NewPostgres(pool.DB()), pool
}
