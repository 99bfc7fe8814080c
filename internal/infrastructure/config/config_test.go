package config_test

import (
	"testing"
	"time"

	"github.com/iho/coopledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.TrialBalanceTolerance.String() != "0.05" {
		t.Fatalf("expected default tolerance 0.05, got %s", cfg.TrialBalanceTolerance)
	}

	if cfg.CloseLockTTL != 5*time.Minute || cfg.CloseTxTimeout != 2*time.Minute {
		t.Fatalf("unexpected close timings: lock=%s tx=%s", cfg.CloseLockTTL, cfg.CloseTxTimeout)
	}

	if cfg.OverdueSweepInterval != time.Hour {
		t.Fatalf("expected hourly overdue sweep, got %s", cfg.OverdueSweepInterval)
	}

	if cfg.RateLimitRPS != 50 || cfg.RateLimitBurst != 100 {
		t.Fatalf("unexpected rate limit defaults: rps=%v burst=%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	if cfg.RedisPoolSize != 10 || cfg.RedisTimeout != 3*time.Second || cfg.DatabaseRetries != 3 {
		t.Fatalf("unexpected connection defaults: pool=%d timeout=%s retries=%d", cfg.RedisPoolSize, cfg.RedisTimeout, cfg.DatabaseRetries)
	}

	if cfg.Ledger.DividendPayableCode != "2300" || cfg.Ledger.MemberSavingsCode != "2100" {
		t.Fatalf("unexpected ledger codes: %+v", cfg.Ledger)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("TRIAL_BALANCE_TOLERANCE", "0.01")
	t.Setenv("DIVIDEND_WORKERS", "2")
	t.Setenv("LEDGER_CASH_CODE", "1010")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.JWTSecret != "top-secret" || !cfg.AuthEnabled {
		t.Fatalf("expected auth settings to be set, got secret=%s enabled=%v", cfg.JWTSecret, cfg.AuthEnabled)
	}

	if cfg.TrialBalanceTolerance.String() != "0.01" {
		t.Fatalf("expected tolerance override, got %s", cfg.TrialBalanceTolerance)
	}

	if cfg.DividendWorkers != 2 {
		t.Fatalf("expected 2 dividend workers, got %d", cfg.DividendWorkers)
	}

	if cfg.Ledger.CashCode != "1010" {
		t.Fatalf("expected cash code override, got %s", cfg.Ledger.CashCode)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "duration", key: "HTTP_READ_TIMEOUT", value: "not-a-duration"},
		{name: "tolerance", key: "TRIAL_BALANCE_TOLERANCE", value: "abc"},
		{name: "negative tolerance", key: "TRIAL_BALANCE_TOLERANCE", value: "-0.01"},
		{name: "zero workers", key: "SNAPSHOT_WORKERS", value: "0"},
		{name: "negative rate", key: "RATE_LIMIT_RPS", value: "-1"},
		{name: "zero burst", key: "RATE_LIMIT_BURST", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadAuthWithoutSecret(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error when auth is enabled without a secret")
	}
}
