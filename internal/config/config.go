package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Resolver   ResolverConfig   `yaml:"resolver" mapstructure:"resolver"`
	Providers  ProvidersConfig  `yaml:"providers" mapstructure:"providers"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host                string `yaml:"host" mapstructure:"host"`
	Port                int    `yaml:"port" mapstructure:"port"`
	FallbackPorts       []int  `yaml:"fallback_ports" mapstructure:"fallback_ports"`
	DevMode             bool   `yaml:"dev_mode" mapstructure:"dev_mode"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
	RequestTimeoutSecs  int    `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// CacheConfig configures record freshness.
type CacheConfig struct {
	TTLMinutes         int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	NegativeTTLMinutes int `yaml:"negative_ttl_minutes" mapstructure:"negative_ttl_minutes"`
	RetentionHours     int `yaml:"retention_hours" mapstructure:"retention_hours"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath    string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns      int32  `yaml:"max_conns" mapstructure:"max_conns"`
	RedisAddr     string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" mapstructure:"redis_db"`
	MongoURI      string `yaml:"mongo_uri" mapstructure:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database" mapstructure:"mongo_database"`
}

// ResolverConfig configures the provider cascade.
type ResolverConfig struct {
	TiersFile               string `yaml:"tiers_file" mapstructure:"tiers_file"`
	AdapterTimeoutSecs      int    `yaml:"adapter_timeout_secs" mapstructure:"adapter_timeout_secs"`
	ServeEstimatesOnly      bool   `yaml:"serve_estimates_only" mapstructure:"serve_estimates_only"`
	BreakerFailureThreshold int    `yaml:"breaker_failure_threshold" mapstructure:"breaker_failure_threshold"`
	BreakerResetSecs        int    `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
	RefreshTimeoutSecs      int    `yaml:"refresh_timeout_secs" mapstructure:"refresh_timeout_secs"`
}

// ProviderConfig holds settings shared by every external source.
type ProviderConfig struct {
	Enabled       bool    `yaml:"enabled" mapstructure:"enabled"`
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	Model         string  `yaml:"model" mapstructure:"model"`
	RatePerMinute float64 `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
}

// Active reports whether the provider should be queried. Keyed providers
// also need a key.
func (p ProviderConfig) Active(needsKey bool) bool {
	if !p.Enabled {
		return false
	}
	return !needsKey || p.Key != ""
}

// LogoConfig configures the logo lookup chain.
type LogoConfig struct {
	ProviderConfig `yaml:",inline" mapstructure:",squash"`
	ClearbitURL    string `yaml:"clearbit_url" mapstructure:"clearbit_url"`
	GoogleKey      string `yaml:"google_key" mapstructure:"google_key"`
	GoogleCX       string `yaml:"google_cx" mapstructure:"google_cx"`
}

// ProvidersConfig holds one block per external source.
type ProvidersConfig struct {
	AlphaVantage       ProviderConfig `yaml:"alphavantage" mapstructure:"alphavantage"`
	Finnhub            ProviderConfig `yaml:"finnhub" mapstructure:"finnhub"`
	Yahoo              ProviderConfig `yaml:"yahoo" mapstructure:"yahoo"`
	CompaniesMarketCap ProviderConfig `yaml:"companiesmarketcap" mapstructure:"companiesmarketcap"`
	Mistral            ProviderConfig `yaml:"mistral" mapstructure:"mistral"`
	Gemini             ProviderConfig `yaml:"gemini" mapstructure:"gemini"`
	Perplexity         ProviderConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic          ProviderConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Wikipedia          ProviderConfig `yaml:"wikipedia" mapstructure:"wikipedia"`
	Website            ProviderConfig `yaml:"website" mapstructure:"website"`
	Logo               LogoConfig     `yaml:"logo" mapstructure:"logo"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// MonitoringConfig configures the background health checker.
type MonitoringConfig struct {
	Enabled              bool   `yaml:"enabled" mapstructure:"enabled"`
	CheckIntervalSecs    int    `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	WebhookURL           string `yaml:"webhook_url" mapstructure:"webhook_url"`
	OpenBreakerThreshold int    `yaml:"open_breaker_threshold" mapstructure:"open_breaker_threshold"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// envAliases binds the unprefixed variable names the service has always
// been configured with.
var envAliases = map[string]string{
	"server.host":                "HOST",
	"server.port":                "PORT",
	"store.database_url":         "DATABASE_URL",
	"store.redis_addr":           "REDIS_ADDR",
	"store.mongo_uri":            "MONGODB_URI",
	"providers.alphavantage.key": "ALPHA_VANTAGE_API_KEY",
	"providers.finnhub.key":      "FINNHUB_API_KEY",
	"providers.mistral.key":      "MISTRAL_API_KEY",
	"providers.gemini.key":       "GEMINI_API_KEY",
	"providers.perplexity.key":   "PERPLEXITY_API_KEY",
	"providers.anthropic.key":    "ANTHROPIC_API_KEY",
	"providers.logo.google_key":  "GOOGLE_API_KEY",
	"providers.logo.google_cx":   "GOOGLE_CX",
	"monitoring.webhook_url":     "ALERT_WEBHOOK_URL",
	"log.level":                  "LOG_LEVEL",
}

const envPrefix = "DATASCRAPER"

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.fallback_ports", []int{9001, 9002, 9003, 9999, 8888, 7000})
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("server.request_timeout_secs", 90)
	v.SetDefault("cache.ttl_minutes", 60)
	v.SetDefault("cache.negative_ttl_minutes", 5)
	v.SetDefault("cache.retention_hours", 24)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.sqlite_path", "data-scraper.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.mongo_database", "company_intel")
	v.SetDefault("resolver.adapter_timeout_secs", 15)
	v.SetDefault("resolver.breaker_failure_threshold", 5)
	v.SetDefault("resolver.breaker_reset_secs", 60)
	v.SetDefault("resolver.refresh_timeout_secs", 120)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.open_breaker_threshold", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	for _, name := range []string{
		"alphavantage", "finnhub", "yahoo", "companiesmarketcap", "mistral",
		"gemini", "perplexity", "anthropic", "wikipedia", "website", "logo",
	} {
		v.SetDefault("providers."+name+".enabled", true)
	}
	v.SetDefault("providers.alphavantage.base_url", "https://www.alphavantage.co")
	v.SetDefault("providers.alphavantage.rate_per_minute", 5)
	v.SetDefault("providers.finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("providers.finnhub.rate_per_minute", 60)
	v.SetDefault("providers.yahoo.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("providers.yahoo.rate_per_minute", 60)
	v.SetDefault("providers.companiesmarketcap.base_url", "https://companiesmarketcap.com")
	v.SetDefault("providers.companiesmarketcap.rate_per_minute", 20)
	v.SetDefault("providers.mistral.base_url", "https://api.mistral.ai/v1")
	v.SetDefault("providers.mistral.model", "mistral-medium")
	v.SetDefault("providers.mistral.rate_per_minute", 30)
	v.SetDefault("providers.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("providers.gemini.model", "gemini-1.5-flash")
	v.SetDefault("providers.gemini.rate_per_minute", 15)
	v.SetDefault("providers.perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("providers.perplexity.model", "sonar-pro")
	v.SetDefault("providers.perplexity.rate_per_minute", 30)
	v.SetDefault("providers.anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("providers.anthropic.rate_per_minute", 30)
	v.SetDefault("providers.wikipedia.base_url", "https://en.wikipedia.org")
	v.SetDefault("providers.wikipedia.rate_per_minute", 100)
	v.SetDefault("providers.website.rate_per_minute", 60)
	v.SetDefault("providers.logo.clearbit_url", "https://logo.clearbit.com")
	v.SetDefault("providers.logo.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("providers.logo.rate_per_minute", 60)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite", "redis", "mongo":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required for the postgres driver")
		}
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	if c.Cache.TTLMinutes <= 0 {
		return eris.New("config: cache.ttl_minutes must be positive")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
