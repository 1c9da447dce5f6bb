package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml or .env is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []int{9001, 9002, 9003, 9999, 8888, 7000}, cfg.Server.FallbackPorts)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeoutSecs)
	assert.Equal(t, 60, cfg.Cache.TTLMinutes)
	assert.Equal(t, 5, cfg.Cache.NegativeTTLMinutes)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 15, cfg.Resolver.AdapterTimeoutSecs)
	assert.False(t, cfg.Resolver.ServeEstimatesOnly)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.True(t, cfg.Monitoring.Enabled)
	assert.Equal(t, 300, cfg.Monitoring.CheckIntervalSecs)
	assert.Equal(t, 1, cfg.Monitoring.OpenBreakerThreshold)

	assert.True(t, cfg.Providers.Yahoo.Enabled)
	assert.True(t, cfg.Providers.Logo.Enabled)
	assert.Equal(t, "https://www.alphavantage.co", cfg.Providers.AlphaVantage.BaseURL)
	assert.InDelta(t, 5, cfg.Providers.AlphaVantage.RatePerMinute, 0.001)
	assert.Equal(t, "sonar-pro", cfg.Providers.Perplexity.Model)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Providers.Anthropic.Model)
	assert.Equal(t, "https://logo.clearbit.com", cfg.Providers.Logo.ClearbitURL)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
  format: console
server:
  port: 9090
providers:
  gemini:
    enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Providers.Gemini.Enabled)
	// Defaults still apply for unset values
	assert.Equal(t, 60, cfg.Cache.TTLMinutes)
	assert.True(t, cfg.Providers.Mistral.Enabled)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DATASCRAPER_STORE_DRIVER", "redis")
	t.Setenv("DATASCRAPER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadLegacyEnvAliases(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PORT", "4000")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "av-key")
	t.Setenv("GOOGLE_CX", "cx-123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "av-key", cfg.Providers.AlphaVantage.Key)
	assert.Equal(t, "cx-123", cfg.Providers.Logo.GoogleCX)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("FINNHUB_API_KEY", "")
	os.Unsetenv("FINNHUB_API_KEY")
	t.Cleanup(func() { os.Unsetenv("FINNHUB_API_KEY") })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FINNHUB_API_KEY=fh-key\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fh-key", cfg.Providers.Finnhub.Key)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATASCRAPER_STORE_DRIVER", "cassandra")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Store.Driver = "memory"
		cfg.Server.Port = 3000
		cfg.Cache.TTLMinutes = 60
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"postgres without url", func(c *Config) { c.Store.Driver = "postgres" }, "store.database_url is required"},
		{"postgres with url", func(c *Config) {
			c.Store.Driver = "postgres"
			c.Store.DatabaseURL = "postgres://localhost/test"
		}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid server.port"},
		{"zero ttl", func(c *Config) { c.Cache.TTLMinutes = 0 }, "ttl_minutes must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProviderActive(t *testing.T) {
	assert.True(t, ProviderConfig{Enabled: true}.Active(false))
	assert.False(t, ProviderConfig{Enabled: true}.Active(true))
	assert.True(t, ProviderConfig{Enabled: true, Key: "k"}.Active(true))
	assert.False(t, ProviderConfig{Key: "k"}.Active(true))
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
