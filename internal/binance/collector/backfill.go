package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"binancecollector/internal/binance/memorystore"
	"binancecollector/pkg/binance"
	"binancecollector/pkg/storage/postgres"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// KlineSource is satisfied by *binance.RESTClient.
type KlineSource interface {
	Klines(ctx context.Context, q binance.KlineQuery) ([]binance.Candle, error)
}

// CandleStore is the part of *postgres.PostgresClient the backfill needs.
type CandleStore interface {
	MostRecentClose(ctx context.Context, base, quote, interval string) (int64, error)
	InsertCandles(ctx context.Context, base, quote string, candles []binance.Candle) (int64, error)
}

// Backfiller closes the gap between the newest stored candle and now.
type Backfiller struct {
	Source   KlineSource
	Store    CandleStore
	Interval string
	Lookback time.Duration // depth for pairs with nothing stored
	Now      func() time.Time
	Logger   *zap.Logger
	Metrics  *Metrics
}

// Backfill pages closed candles of pair into the store and returns how many
// rows were new. Windows hold at most one full kline page each.
func (b *Backfiller) Backfill(ctx context.Context, pair memorystore.Pair) (int64, error) {
	meta, err := binance.ParseKlineInterval(b.Interval)
	if err != nil {
		return 0, err
	}
	now := b.now()
	nowMs := now.UnixMilli()

	// Resume after the newest stored candle
	start, err := b.startFrom(ctx, pair, now)
	if err != nil {
		return 0, err
	}

	window := meta.Duration * binance.MaxKlineLimit
	var total int64
	for from := start; from.Before(now); {
		to := from.Add(window - time.Millisecond)
		if to.After(now) {
			to = now
		}

		// Fetch one page of klines
		candles, err := b.Source.Klines(ctx, binance.KlineQuery{
			Base: pair.Base, Quote: pair.Quote, Interval: b.Interval, Start: from, End: to,
		})
		if err != nil {
			return total, fmt.Errorf("fetch klines %s [%d, %d]: %w", pair.Symbol(), from.UnixMilli(), to.UnixMilli(), err)
		}

		// Drop the candle that is still open
		closed := candles[:0]
		for _, c := range candles {
			if c.CloseTime < nowMs {
				closed = append(closed, c)
			}
		}
		if len(closed) > 0 {
			n, err := b.Store.InsertCandles(ctx, pair.Base, pair.Quote, closed)
			if err != nil {
				return total, fmt.Errorf("store klines %s: %w", pair.Symbol(), err)
			}
			total += n
		}

		from = to.Add(time.Millisecond)
	}

	if total > 0 {
		b.metrics().CandlesInserted.Add(ctx, total, metric.WithAttributes(
			attribute.String("source", "backfill"),
			attribute.String("interval", b.Interval),
		))
	}
	return total, nil
}

// startFrom resumes after the newest stored close, or looks back from now
// when nothing is stored yet. A failed read never falls back to the lookback.
func (b *Backfiller) startFrom(ctx context.Context, pair memorystore.Pair, now time.Time) (time.Time, error) {
	last, err := b.Store.MostRecentClose(ctx, pair.Base, pair.Quote, b.Interval)
	switch {
	case err == nil:
		return time.UnixMilli(last + 1), nil
	case errors.Is(err, postgres.ErrUnavailable):
		return time.Time{}, fmt.Errorf("resume point %s: %w", pair.Symbol(), err)
	case errors.Is(err, postgres.ErrNoResult):
		return now.Add(-b.Lookback), nil
	default:
		return time.Time{}, fmt.Errorf("resume point %s: %w", pair.Symbol(), err)
	}
}

// BackfillAll runs Backfill for every pair with at most maxConcurrency in
// flight. A failing pair does not stop the others; all failures are joined.
func (b *Backfiller) BackfillAll(ctx context.Context, pairs []memorystore.Pair, maxConcurrency int) error {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	p := pool.New().WithContext(ctx).WithMaxGoroutines(maxConcurrency)
	for _, pair := range pairs {
		p.Go(func(ctx context.Context) error {
			started := time.Now()
			n, err := b.Backfill(ctx, pair)
			attrs := metric.WithAttributes(attribute.String("symbol", pair.Symbol()))
			b.metrics().BackfillDuration.Record(ctx, time.Since(started).Seconds(), attrs)
			if err != nil {
				b.metrics().BackfillErrors.Add(ctx, 1, attrs)
				b.Logger.Warn("backfill failed", zap.String("symbol", pair.Symbol()), zap.Int64("inserted", n), zap.Error(err))
				return err
			}
			b.Logger.Info("backfill completed", zap.String("symbol", pair.Symbol()), zap.Int64("inserted", n))
			return nil
		})
	}
	return p.Wait()
}

func (b *Backfiller) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

var noopMetrics, _ = NewMetrics(nil)

func (b *Backfiller) metrics() *Metrics {
	if b.Metrics == nil {
		return noopMetrics
	}
	return b.Metrics
}
