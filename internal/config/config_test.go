package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricepoint-backend/internal/pricing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "PORT", "PRICEPOINT_DATABASE_DRIVER", "PRICEPOINT_DATABASE_DSN", "PRICEPOINT_PRICING_MODE"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, pricing.DefaultNumberRate, cfg.Pricing.NumberRate)
	assert.Equal(t, 3*time.Second, cfg.Client.GetTimeout())
	assert.Equal(t, 15*time.Second, cfg.Server.GetReadTimeout())

	calc := cfg.Pricing.Calculator()
	assert.Equal(t, pricing.ModeProduct, calc.Mode)
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/pp?sslmode=disable")
	t.Setenv("PORT", "9090")
	t.Setenv("PRICEPOINT_PRICING_MODE", "sum")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sum", cfg.Pricing.Mode)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pricepoint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
logging:
  level: debug
  format: text
telegram:
  chat_id: "-100"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "-100", cfg.Telegram.ChatID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"dsn", func(c *Config) { c.Database.DSN = "" }},
		{"mode", func(c *Config) { c.Pricing.Mode = "avg" }},
		{"rate", func(c *Config) { c.Pricing.NumberRate = -1 }},
		{"zero rate", func(c *Config) { c.Pricing.NumberRate = 0 }},
		{"timeout", func(c *Config) { c.Client.Timeout = "soon" }},
		{"level", func(c *Config) { c.Logging.Level = "loud" }},
		{"format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
