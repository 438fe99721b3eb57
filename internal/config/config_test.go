package config

import (
	"testing"
	"time"

	"github.com/dafibh/fortuna/loan-ledger/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, util.MonthlyPolicyCalendar, cfg.MonthlyPolicy)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, time.Hour, cfg.AccrualWorkerInterval)
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.S3.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
	t.Setenv("LEDGER_TIMEZONE", "Asia/Jakarta")
	t.Setenv("MONTHLY_PERIOD_POLICY", "anniversary")
	t.Setenv("AUTH0_DOMAIN", "ledger.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.loan-ledger.app")
	t.Setenv("S3_BUCKET", "receipts")
	t.Setenv("ACCRUAL_WORKER_INTERVAL", "15m")
	t.Setenv("PUBLIC_API_URL", "https://api.loan-ledger.app")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Jakarta", cfg.Location.String())
	assert.Equal(t, util.MonthlyPolicyAnniversary, cfg.MonthlyPolicy)
	assert.True(t, cfg.AuthEnabled())
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, 15*time.Minute, cfg.AccrualWorkerInterval)
	assert.Equal(t, "https://api.loan-ledger.app", cfg.PublicURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{}},
		{"bad timezone", map[string]string{"LEDGER_TIMEZONE": "Mars/Olympus"}},
		{"bad policy", map[string]string{"MONTHLY_PERIOD_POLICY": "lunar"}},
		{"bad rate limit", map[string]string{"RATE_LIMIT_PER_MINUTE": "lots"}},
		{"zero burst", map[string]string{"RATE_LIMIT_BURST": "-1"}},
		{"half auth", map[string]string{"AUTH0_DOMAIN": "ledger.auth0.com"}},
		{"bad interval", map[string]string{"ACCRUAL_WORKER_INTERVAL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name != "missing database url" {
				t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
			} else {
				t.Setenv("DATABASE_URL", "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
