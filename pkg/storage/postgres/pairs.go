package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"binancecollector/pkg/binance"

	"gorm.io/gorm/clause"
)

// ToTradedPairRecord snapshots the lot-size rules of sym at periodTimestamp.
// Symbols without a LOT_SIZE filter keep zero bounds; a malformed filter is an error.
func ToTradedPairRecord(sym binance.SymbolInfo, periodTimestamp int64) (TradedPairRecord, error) {
	lot, _, err := sym.LotSize()
	if err != nil {
		return TradedPairRecord{}, err
	}
	return TradedPairRecord{
		QuoteAsset:      sym.QuoteAsset,
		BaseAsset:       sym.BaseAsset,
		PeriodTimestamp: periodTimestamp,
		MinLotQty:       lot.MinQty,
		MaxLotQty:       lot.MaxQty,
		StepSizeQty:     lot.StepSize,
	}, nil
}

// InsertPairs stores a pairs snapshot. Rows already recorded for the same
// period are left untouched.
func (p *PostgresClient) InsertPairs(ctx context.Context, pairs []TradedPairRecord) (int64, error) {
	if !p.connected() {
		return 0, ErrUnavailable
	}
	if len(pairs) == 0 {
		return 0, nil
	}
	res := p.DB.WithContext(ctx).Table(p.tables.Pairs).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "base_asset"}, {Name: "quote_asset"}, {Name: "period_timestamp"}},
			DoNothing: true,
		}).
		CreateInBatches(&pairs, insertBatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("insert pairs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// QueryPairs returns every stored pair snapshot, newest period first.
func (p *PostgresClient) QueryPairs(ctx context.Context) ([]TradedPairRecord, error) {
	if !p.connected() {
		return nil, ErrNoResult
	}
	pairs := []TradedPairRecord{}
	err := p.DB.WithContext(ctx).Table(p.tables.Pairs).
		Order("period_timestamp DESC").Order("quote_asset DESC").
		Find(&pairs).Error
	if err != nil {
		return nil, readFailed("query pairs", err)
	}
	if pairs == nil {
		pairs = []TradedPairRecord{}
	}
	return pairs, nil
}

// MostRecentPeriodClose returns the latest pairs snapshot timestamp, or
// ErrNoResult when no snapshot was taken yet.
func (p *PostgresClient) MostRecentPeriodClose(ctx context.Context) (int64, error) {
	if !p.connected() {
		return 0, fmt.Errorf("%w: %w", ErrNoResult, ErrUnavailable)
	}
	var latest sql.NullInt64
	row := p.DB.WithContext(ctx).Table(p.tables.Pairs).Select("MAX(period_timestamp)").Row()
	if err := row.Scan(&latest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoResult
		}
		return 0, readFailed("most recent period close", err)
	}
	if !latest.Valid {
		return 0, ErrNoResult
	}
	return latest.Int64, nil
}
