package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BLOCKVERIFY_ADDR", "DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
		"DB_CONN_MAX_LIFETIME", "LEDGER_RPC_URL", "LEDGER_MIN_BALANCE",
		"LEDGER_CONFIRM_TIMEOUT", "REQUEST_TIMEOUT", "WALLET_SECRET_KEY",
		"JWT_SIGNING_KEY", "BLOCKVERIFY_ENV",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv(nil)

	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, uint64(DefaultLedgerMin), cfg.LedgerMin)
	require.Equal(t, 30*time.Second, cfg.ConfirmTimeout)
	require.Equal(t, 25, cfg.DBMaxOpenConns)
	require.Equal(t, 5, cfg.DBMaxIdleConns)
	require.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
	require.Equal(t, "development", cfg.Environment)
	require.NotEmpty(t, cfg.JWTSigningKey)
}

func TestFromEnvParsesOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER_MIN_BALANCE", "10000")
	t.Setenv("LEDGER_CONFIRM_TIMEOUT", "45s")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")

	cfg := FromEnv(nil)

	require.Equal(t, uint64(10_000), cfg.LedgerMin)
	require.Equal(t, 45*time.Second, cfg.ConfirmTimeout)
	require.Equal(t, 50, cfg.DBMaxOpenConns)
}

func TestFromEnvLogsUnparseableValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER_MIN_BALANCE", "five thousand")
	t.Setenv("LEDGER_CONFIRM_TIMEOUT", "soon")

	var buf bytes.Buffer
	cfg := FromEnv(slog.New(slog.NewTextHandler(&buf, nil)))

	require.Equal(t, uint64(DefaultLedgerMin), cfg.LedgerMin)
	require.Equal(t, 30*time.Second, cfg.ConfirmTimeout)
	require.Contains(t, buf.String(), "LEDGER_MIN_BALANCE")
	require.Contains(t, buf.String(), "LEDGER_CONFIRM_TIMEOUT")
	require.Contains(t, buf.String(), "ignoring unparseable configuration value")
}

func TestFromEnvWarnsOnMissingJWTKey(t *testing.T) {
	clearEnv(t)

	var buf bytes.Buffer
	cfg := FromEnv(slog.New(slog.NewTextHandler(&buf, nil)))

	require.Equal(t, devJWTSigningKey, cfg.JWTSigningKey)
	require.Contains(t, buf.String(), "JWT_SIGNING_KEY not set")
}

func TestValidateRejectsDevKeyInProduction(t *testing.T) {
	clearEnv(t)
	t.Setenv("BLOCKVERIFY_ENV", "production")

	require.Error(t, FromEnv(nil).Validate())

	t.Setenv("JWT_SIGNING_KEY", "an-actual-secret")
	require.NoError(t, FromEnv(nil).Validate())
}
