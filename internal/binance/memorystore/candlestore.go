package memorystore

import (
	"sync"

	"binancecollector/pkg/binance"
)

// DefaultCandlesPerSymbol bounds the per-symbol cache when no limit is given.
const DefaultCandlesPerSymbol = 1000

// CandleStore keeps the most recent closed candles per symbol in memory.
type CandleStore struct {
	globalMu sync.RWMutex
	data     map[string]*symbolCandleStore
	limit    int
}

type symbolCandleStore struct {
	mu      sync.Mutex
	candles []binance.Candle
}

// NewCandleStore keeps at most limit candles per symbol; limit <= 0 uses
// DefaultCandlesPerSymbol.
func NewCandleStore(limit int) *CandleStore {
	if limit <= 0 {
		limit = DefaultCandlesPerSymbol
	}
	return &CandleStore{
		data:  make(map[string]*symbolCandleStore),
		limit: limit,
	}
}

// Add appends c to its symbol's cache. A candle with the same open time and
// interval as the last cached one replaces it instead.
func (s *CandleStore) Add(c PairCandle) {
	symbol := c.Symbol()

	s.globalMu.RLock()
	store, ok := s.data[symbol]
	s.globalMu.RUnlock()

	if !ok {
		s.globalMu.Lock()
		if store, ok = s.data[symbol]; !ok {
			store = &symbolCandleStore{}
			s.data[symbol] = store
		}
		s.globalMu.Unlock()
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if n := len(store.candles); n > 0 {
		last := store.candles[n-1]
		if last.OpenTime == c.OpenTime && last.Interval == c.Interval {
			store.candles[n-1] = c.Candle
			return
		}
	}
	store.candles = append(store.candles, c.Candle)
	if over := len(store.candles) - s.limit; over > 0 {
		store.candles = append(store.candles[:0:0], store.candles[over:]...)
	}
}

// Latest returns the newest cached candle for symbol.
func (s *CandleStore) Latest(symbol string) (binance.Candle, bool) {
	s.globalMu.RLock()
	store, ok := s.data[symbol]
	s.globalMu.RUnlock()
	if !ok {
		return binance.Candle{}, false
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.candles) == 0 {
		return binance.Candle{}, false
	}
	return store.candles[len(store.candles)-1], true
}

// CountAll returns the total number of candles cached across all symbols.
func (s *CandleStore) CountAll() int {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	total := 0
	for _, store := range s.data {
		store.mu.Lock()
		total += len(store.candles)
		store.mu.Unlock()
	}
	return total
}
