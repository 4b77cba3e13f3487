package stream

import (
	"context"

	"binancecollector/pkg/binance"
)

// CandleSink persists closed candles. *postgres.PostgresClient satisfies it.
type CandleSink interface {
	InsertCandles(ctx context.Context, base, quote string, candles []binance.Candle) (int64, error)
}
