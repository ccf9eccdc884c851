// Package config loads process configuration from the environment.
package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	dErrors "github.com/Goodnessmbakara/BlockVerify/pkg/domain-errors"
)

// Server captures process-level configuration for the credential service.
type Server struct {
	Addr              string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	LedgerRPCURL      string
	LedgerMin         uint64 // minimum signing-account balance, in lamports, for a real anchor
	ConfirmTimeout    time.Duration
	RequestTimeout    time.Duration
	WalletSecret      string
	JWTSigningKey     string
	Environment       string
}

// DefaultLedgerMin covers one signature at the default fee schedule.
const DefaultLedgerMin = 5_000

// devJWTSigningKey is the fallback for local development only. Validate
// refuses it in production.
const devJWTSigningKey = "dev-secret-key-change-in-production"

// FromEnv builds a Server config from environment variables. Unparseable
// values fall back to their defaults and are logged, so operator typos stay
// visible instead of silently reverting behavior.
func FromEnv(log *slog.Logger) Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfg := Server{
		Addr:              envString("BLOCKVERIFY_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    envInt(log, "DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    envInt(log, "DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: envDuration(log, "DB_CONN_MAX_LIFETIME", 5*time.Minute),
		LedgerRPCURL:      envString("LEDGER_RPC_URL", "https://api.devnet.solana.com"),
		LedgerMin:         envUint(log, "LEDGER_MIN_BALANCE", DefaultLedgerMin),
		ConfirmTimeout:    envDuration(log, "LEDGER_CONFIRM_TIMEOUT", 30*time.Second),
		RequestTimeout:    envDuration(log, "REQUEST_TIMEOUT", 30*time.Second),
		WalletSecret:      os.Getenv("WALLET_SECRET_KEY"),
		JWTSigningKey:     os.Getenv("JWT_SIGNING_KEY"),
		Environment:       envString("BLOCKVERIFY_ENV", "development"),
	}

	if cfg.JWTSigningKey == "" {
		cfg.JWTSigningKey = devJWTSigningKey
		log.Warn("JWT_SIGNING_KEY not set, using the development key",
			"hint", "set JWT_SIGNING_KEY before exposing the issue endpoint",
		)
	}

	return cfg
}

// Validate rejects configurations that must never reach production. Called at
// startup; a failure is fatal.
func (s Server) Validate() error {
	if s.Environment == "production" && s.JWTSigningKey == devJWTSigningKey {
		return dErrors.New(dErrors.CodeInternal, "JWT_SIGNING_KEY must be set when BLOCKVERIFY_ENV=production")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(log *slog.Logger, key string, fallback uint64) uint64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Warn("ignoring unparseable configuration value",
			"var", key, "value", raw, "default", fallback, "error", err)
		return fallback
	}
	return parsed
}

func envInt(log *slog.Logger, key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		log.Warn("ignoring unparseable configuration value",
			"var", key, "value", raw, "default", fallback, "error", err)
		return fallback
	}
	return parsed
}

func envDuration(log *slog.Logger, key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn("ignoring unparseable configuration value",
			"var", key, "value", raw, "default", fallback, "error", err)
		return fallback
	}
	return parsed
}
