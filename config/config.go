package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Binance   BinanceConfig   `mapstructure:"binance"`
	Collector CollectorConfig `mapstructure:"collector"`
	Log       LogConfig       `mapstructure:"log"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type BinanceConfig struct {
	REST        RESTConfig        `mapstructure:"rest"`
	WS          WSConfig          `mapstructure:"ws"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
}

type RESTConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 disables client-side pacing
}

type WSConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Enabled bool          `mapstructure:"enabled"`
}

// CredentialsConfig holds the API key pair. In prod the *_param fields name
// SSM parameters that take precedence over the inline values.
type CredentialsConfig struct {
	PublicKey      string `mapstructure:"public_key"`
	SecretKey      string `mapstructure:"secret_key"`
	PublicKeyParam string `mapstructure:"public_key_param"`
	SecretKeyParam string `mapstructure:"secret_key_param"`
}

// PairConfig names one base/quote pair to collect.
type PairConfig struct {
	Base  string `mapstructure:"base"`
	Quote string `mapstructure:"quote"`
}

type CollectorConfig struct {
	Pairs          []PairConfig  `mapstructure:"pairs"`        // explicit pairs; empty means every TRADING pair in quote_assets
	QuoteAssets    []string      `mapstructure:"quote_assets"` // quote filter applied to exchangeInfo
	Interval       string        `mapstructure:"interval"`     // e.g. "5m"
	Lookback       time.Duration `mapstructure:"lookback"`     // backfill depth for pairs with no stored candles
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	BackfillEvery  time.Duration `mapstructure:"backfill_every"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
}

type TelemetryConfig struct {
	OTLPEndpoint   string        `mapstructure:"otlp_endpoint"` // empty disables export
	ServiceName    string        `mapstructure:"service_name"`
	MetricInterval time.Duration `mapstructure:"metric_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("binance.rest.base_url", "https://api.binance.com")
	v.SetDefault("binance.rest.timeout", 10*time.Second)
	v.SetDefault("binance.ws.url", "wss://stream.binance.com:9443/ws")
	v.SetDefault("binance.ws.timeout", 10*time.Second)
	v.SetDefault("binance.ws.enabled", true)
	// registered so env overrides apply even when the file omits them
	for _, key := range []string{"public_key", "secret_key", "public_key_param", "secret_key_param"} {
		v.SetDefault("binance.credentials."+key, "")
	}
	for _, key := range []string{"host", "user", "password", "dbname", "host_param", "user_param", "password_param"} {
		v.SetDefault("postgres."+key, "")
	}

	v.SetDefault("collector.quote_assets", []string{"USDT"})
	v.SetDefault("collector.interval", "5m")
	v.SetDefault("collector.lookback", 24*time.Hour)
	v.SetDefault("collector.max_concurrency", 5)
	v.SetDefault("collector.backfill_every", 15*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "dev")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 7)

	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.tables.pairs", "traded_pairs")
	v.SetDefault("postgres.tables.orders", "orders")
	v.SetDefault("postgres.tables.portfolio", "portfolio")
	v.SetDefault("postgres.tables.market_data", "market_data")

	v.SetDefault("telemetry.service_name", "binancecollector")
	v.SetDefault("telemetry.metric_interval", 15*time.Second)
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	ex, _ := os.Executable()
	dir := filepath.Join(filepath.Dir(ex), "../config")
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		dir = filepath.Join(pwd, "../../config")
	}

	cfg, err := LoadFrom(filepath.Join(dir, "config.yaml"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// LoadFrom reads the YAML file at path. Environment variables with dots
// replaced by underscores (e.g. BINANCE_REST_BASE_URL) override file values.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
