package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"binancecollector/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNoResult is returned by reads that could not run and by
	// MostRecentClose when no rows match.
	ErrNoResult = errors.New("postgres: no result")

	// ErrUnavailable is returned by writes on a closed client. Reads that fail
	// against the database wrap it next to ErrNoResult, so an empty table and
	// a lost connection stay distinguishable.
	ErrUnavailable = errors.New("postgres: store unavailable")

	// ErrPartialFilter rejects portfolio/order reads that set only one of base
	// and quote; only both-or-neither filters are supported.
	ErrPartialFilter = errors.New("postgres: base and quote filters must be set together")
)

// PostgresClient is the market data store. It holds one gorm handle for its lifetime.
type PostgresClient struct {
	DB     *gorm.DB
	tables config.TablesConfig
	closed atomic.Bool
}

// NewClient connects to Postgres with dsn.
func NewClient(dsn string, tables config.TablesConfig) (*PostgresClient, error) {
	return Open(postgres.Open(dsn), tables)
}

// Open wraps any gorm dialector; tests use it with sqlite.
func Open(dialector gorm.Dialector, tables config.TablesConfig) (*PostgresClient, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &PostgresClient{DB: db, tables: withDefaultTables(tables)}, nil
}

func withDefaultTables(t config.TablesConfig) config.TablesConfig {
	if t.Pairs == "" {
		t.Pairs = "traded_pairs"
	}
	if t.Orders == "" {
		t.Orders = "orders"
	}
	if t.Portfolio == "" {
		t.Portfolio = "portfolio"
	}
	if t.MarketData == "" {
		t.MarketData = "market_data"
	}
	return t
}

// InitializeAndMigrate connects to Postgres, optionally creates the DB, applies
// pool settings and runs AutoMigrate for all four tables.
func InitializeAndMigrate(cfg config.PostgresConfig, createDB bool) (*PostgresClient, error) {
	if createDB {
		if err := CreateDatabase(cfg); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	client, err := NewClient(cfg.DSN(), cfg.Tables)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if sqlDB, err := client.DB.DB(); err == nil {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	if err := client.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return client, nil
}

// AutoMigrate creates or updates the four tables under their configured names.
func (p *PostgresClient) AutoMigrate() error {
	if !p.connected() {
		return ErrUnavailable
	}
	models := []struct {
		table string
		model interface{}
	}{
		{p.tables.Pairs, &TradedPairRecord{}},
		{p.tables.Orders, &OrderRecord{}},
		{p.tables.Portfolio, &PortfolioRecord{}},
		{p.tables.MarketData, &MarketDataRecord{}},
	}
	for _, m := range models {
		if err := p.DB.Table(m.table).AutoMigrate(m.model); err != nil {
			return fmt.Errorf("auto-migrate %s table: %w", m.table, err)
		}
	}
	return nil
}

// IsConnected pings the database.
func (p *PostgresClient) IsConnected(ctx context.Context) bool {
	if !p.connected() {
		return false
	}
	db, err := p.DB.DB()
	if err != nil {
		return false
	}
	return db.PingContext(ctx) == nil
}

func (p *PostgresClient) connected() bool {
	return p != nil && p.DB != nil && !p.closed.Load()
}

// readFailed wraps a read error from the database. The connection may have
// gone away without Close being called, so the caller sees both sentinels.
func readFailed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w: %w", op, ErrNoResult, ErrUnavailable, err)
}

func (p *PostgresClient) Tables() config.TablesConfig {
	return p.tables
}

func (p *PostgresClient) Close() error {
	if !p.connected() {
		return nil
	}
	p.closed.Store(true)
	db, err := p.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	return db.Close()
}
