package collector

import (
	"time"

	"binancecollector/internal/binance/memorystore"
)

// stalePairs returns the pairs whose newest streamed candle closed before
// cutoff, including pairs that have not streamed a closed candle at all.
func stalePairs(pairs []memorystore.Pair, candles *memorystore.CandleStore, cutoff time.Time) []memorystore.Pair {
	var stale []memorystore.Pair
	for _, p := range pairs {
		latest, ok := candles.Latest(p.Symbol())
		if !ok || latest.CloseTime < cutoff.UnixMilli() {
			stale = append(stale, p)
		}
	}
	return stale
}
