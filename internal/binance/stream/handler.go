package stream

import (
	"context"
	"errors"
	"time"

	"binancecollector/internal/binance/memorystore"
	"binancecollector/pkg/binance"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

const insertTimeout = 2 * time.Second

// MakeMessageHandler returns a function that handles incoming WebSocket messages.
// Closed klines of registered pairs are cached in store and persisted to sink;
// candles still forming are ignored. inserted may be nil.
func MakeMessageHandler(ctx context.Context, logger *zap.Logger, pairs *memorystore.PairStore,
	store *memorystore.CandleStore, sink CandleSink, inserted metric.Int64Counter) func(msg []byte) {
	if inserted == nil {
		inserted = noop.Int64Counter{}
	}
	return func(msg []byte) {
		ev, err := binance.ParseKlineEvent(msg)
		if errors.Is(err, binance.ErrNotKlineEvent) {
			return
		}
		if err != nil {
			logger.Warn("failed to parse kline event", zap.Error(err))
			return
		}
		if !ev.Closed {
			return
		}

		pair, ok := pairs.Lookup(ev.Symbol)
		if !ok {
			logger.Debug("kline for unregistered symbol", zap.String("symbol", ev.Symbol))
			return
		}

		store.Add(memorystore.PairCandle{Pair: pair, Candle: ev.Candle})

		if sink == nil {
			return
		}
		dbCtx, cancel := context.WithTimeout(ctx, insertTimeout)
		n, err := sink.InsertCandles(dbCtx, pair.Base, pair.Quote, []binance.Candle{ev.Candle})
		cancel()
		if err != nil {
			logger.Warn("failed to insert streamed candle",
				zap.String("symbol", ev.Symbol), zap.Int64("open_time", ev.Candle.OpenTime), zap.Error(err))
			return
		}
		inserted.Add(ctx, n, metric.WithAttributes(
			attribute.String("source", "stream"),
			attribute.String("interval", ev.Candle.Interval),
		))
	}
}
