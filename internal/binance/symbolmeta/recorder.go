package symbolmeta

import (
	"context"
	"time"

	"binancecollector/internal/binance/memorystore"
	"binancecollector/pkg/binance"
	"binancecollector/pkg/storage/postgres"

	"go.uber.org/zap"
)

// PairSink persists pair snapshots. *postgres.PostgresClient satisfies it.
type PairSink interface {
	InsertPairs(ctx context.Context, pairs []postgres.TradedPairRecord) (int64, error)
}

// PairRecorder registers loaded pairs in memory and stores a snapshot of
// their lot-size rules stamped with the load time.
type PairRecorder struct {
	Pairs  *memorystore.PairStore
	Sink   PairSink
	Now    func() time.Time
	Logger *zap.Logger
}

// Consume drains ch and returns the number of pairs that were new to the registry.
func (r *PairRecorder) Consume(ctx context.Context, ch <-chan binance.SymbolInfo) int {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	period := now().UnixMilli()

	var records []postgres.TradedPairRecord
	added := 0
	for sym := range ch {
		if r.Pairs.Add(memorystore.Pair{Base: sym.BaseAsset, Quote: sym.QuoteAsset}) {
			added++
		}
		rec, err := postgres.ToTradedPairRecord(sym, period)
		if err != nil {
			r.Logger.Warn("skipping pair snapshot", zap.String("symbol", sym.Symbol), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	if r.Sink != nil && len(records) > 0 {
		n, err := r.Sink.InsertPairs(ctx, records)
		if err != nil {
			r.Logger.Warn("failed to store pairs snapshot", zap.Int("pairs", len(records)), zap.Error(err))
		} else {
			r.Logger.Info("stored pairs snapshot", zap.Int64("inserted", n), zap.Int64("period_timestamp", period))
		}
	}
	r.Logger.Info("pair registry updated", zap.Int("added", added), zap.Int("total", r.Pairs.Len()))
	return added
}

// Proc adapts Consume to MidnightLoader.
func (r *PairRecorder) Proc(ctx context.Context) func(<-chan binance.SymbolInfo) {
	return func(ch <-chan binance.SymbolInfo) {
		r.Consume(ctx, ch)
	}
}
