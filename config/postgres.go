package config

import (
	"fmt"
	"time"
)

// PostgresConfig defines the configuration for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`

	// SSM parameter names resolved in prod (see ResolveSecrets).
	HostParam     string `mapstructure:"host_param"`
	UserParam     string `mapstructure:"user_param"`
	PasswordParam string `mapstructure:"password_param"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	Tables TablesConfig `mapstructure:"tables"`
}

// TablesConfig names the four tables the store works with.
type TablesConfig struct {
	Pairs      string `mapstructure:"pairs"`
	Orders     string `mapstructure:"orders"`
	Portfolio  string `mapstructure:"portfolio"`
	MarketData string `mapstructure:"market_data"`
}

// DSN returns the connection string for the configured database.
func (cfg PostgresConfig) DSN() string {
	return cfg.DSNFor(cfg.DBName)
}

// DSNFor returns the connection string for dbname on the configured server.
func (cfg PostgresConfig) DSNFor(dbname string) string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, dbname, cfg.SSLMode,
	)
	if cfg.TimeZone != "" {
		dsn += fmt.Sprintf(" TimeZone=%s", cfg.TimeZone)
	}
	return dsn
}
