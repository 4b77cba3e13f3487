package memorystore

import (
	"sync"

	"binancecollector/pkg/binance"
)

// PairStore is the registry of followed pairs, keyed by exchange symbol.
// Insertion order is kept so topics and backfills run in a stable order.
type PairStore struct {
	mu    sync.RWMutex
	order []string
	pairs map[string]Pair
}

func NewPairStore() *PairStore {
	return &PairStore{
		pairs: make(map[string]Pair),
	}
}

// Add registers p and reports whether it was new.
func (s *PairStore) Add(p Pair) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sym := p.Symbol()
	if _, ok := s.pairs[sym]; ok {
		return false
	}
	s.pairs[sym] = p
	s.order = append(s.order, sym)
	return true
}

// Lookup resolves an exchange symbol such as "BTCUSDT" to its pair.
func (s *PairStore) Lookup(symbol string) (Pair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pairs[symbol]
	return p, ok
}

func (s *PairStore) GetAll() []Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Pair, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, s.pairs[sym])
	}
	return out
}

// Topics returns the kline stream names of every pair at interval.
func (s *PairStore) Topics(interval string) []string {
	pairs := s.GetAll()
	topics := make([]string, len(pairs))
	for i, p := range pairs {
		topics[i] = binance.KlineTopic(p.Symbol(), interval)
	}
	return topics
}

func (s *PairStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
