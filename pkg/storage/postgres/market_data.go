package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"binancecollector/pkg/binance"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 500

// MarketDataID is the primary key of a stored candle.
func MarketDataID(interval, base, quote string, openTime int64) string {
	return interval + base + quote + strconv.FormatInt(openTime, 10)
}

// ToMarketDataRecord maps a candle of base/quote to its row.
func ToMarketDataRecord(base, quote string, c binance.Candle) MarketDataRecord {
	return MarketDataRecord{
		ID:               MarketDataID(c.Interval, base, quote, c.OpenTime),
		BaseAsset:        base,
		QuoteAsset:       quote,
		OpenTimestamp:    c.OpenTime,
		CloseTimestamp:   c.CloseTime,
		QuoteOpenPx:      c.Open,
		QuoteHighPx:      c.High,
		QuoteLowPx:       c.Low,
		QuoteClosePx:     c.Close,
		BaseVolume:       c.BaseVolume,
		QuoteVolume:      c.QuoteVolume,
		NumberOfTrades:   c.NumTrades,
		TakerBaseVolume:  c.TakerBaseVolume,
		TakerQuoteVolume: c.TakerQuoteVolume,
		Interval:         c.Interval,
	}
}

// InsertCandles stores candles of base/quote in one transaction and returns how
// many rows were new. Candles already present are skipped, so replays are safe.
func (p *PostgresClient) InsertCandles(ctx context.Context, base, quote string, candles []binance.Candle) (int64, error) {
	if !p.connected() {
		return 0, ErrUnavailable
	}
	if len(candles) == 0 {
		return 0, nil
	}

	// Map candles to rows keyed by interval, pair and open time
	records := make([]MarketDataRecord, len(candles))
	for i, c := range candles {
		records[i] = ToMarketDataRecord(base, quote, c)
	}

	// Insert in one transaction, skipping ids that already exist
	var inserted int64
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(p.tables.MarketData).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
			CreateInBatches(&records, insertBatchSize)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert candles %s%s: %w", base, quote, err)
	}
	return inserted, nil
}

// QueryCandles returns candles of base/quote at interval. With limit <= 0 every
// row is returned in storage order; otherwise the most recent limit rows are
// returned oldest first. An empty result is an empty slice, not an error.
func (p *PostgresClient) QueryCandles(ctx context.Context, base, quote, interval string, limit int) ([]MarketDataRecord, error) {
	if !p.connected() {
		return nil, ErrNoResult
	}

	q := p.DB.WithContext(ctx).Table(p.tables.MarketData).
		Where(map[string]interface{}{"base_asset": base, "quote_asset": quote, "interval": interval})
	if limit > 0 {
		q = q.Order("close_timestamp DESC").Limit(limit)
	}

	records := []MarketDataRecord{}
	if err := q.Find(&records).Error; err != nil {
		return nil, readFailed("query candles "+base+quote, err)
	}
	if records == nil {
		records = []MarketDataRecord{}
	}
	if limit > 0 {
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	}
	return records, nil
}

// MostRecentClose returns the latest close timestamp stored for base/quote.
// An empty interval matches any interval. ErrNoResult alone means no rows
// matched; ErrNoResult together with ErrUnavailable means the store could not
// be read.
func (p *PostgresClient) MostRecentClose(ctx context.Context, base, quote, interval string) (int64, error) {
	if !p.connected() {
		return 0, fmt.Errorf("%w: %w", ErrNoResult, ErrUnavailable)
	}

	cond := map[string]interface{}{"base_asset": base, "quote_asset": quote}
	if interval != "" {
		cond["interval"] = interval
	}

	var latest sql.NullInt64
	row := p.DB.WithContext(ctx).Table(p.tables.MarketData).Where(cond).Select("MAX(close_timestamp)").Row()
	if err := row.Scan(&latest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoResult
		}
		return 0, readFailed("most recent close "+base+quote, err)
	}
	if !latest.Valid {
		return 0, ErrNoResult
	}
	return latest.Int64, nil
}

// CountCandles returns the number of stored candles for base/quote at interval.
func (p *PostgresClient) CountCandles(ctx context.Context, base, quote, interval string) (int64, error) {
	if !p.connected() {
		return 0, ErrNoResult
	}
	var n int64
	err := p.DB.WithContext(ctx).Table(p.tables.MarketData).
		Where(map[string]interface{}{"base_asset": base, "quote_asset": quote, "interval": interval}).
		Count(&n).Error
	if err != nil {
		return 0, readFailed("count candles "+base+quote, err)
	}
	return n, nil
}
