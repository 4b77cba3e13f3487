package binance

import (
	"strconv"
	"sync"
)

// OrderIDGenerator derives client order ids as symbol+timestamp. Two ids for the
// same symbol in the same millisecond would collide, so repeats get a "-<n>" suffix.
type OrderIDGenerator struct {
	mu   sync.Mutex
	last map[string]issued
}

type issued struct {
	ts  int64
	seq int
}

func NewOrderIDGenerator() *OrderIDGenerator {
	return &OrderIDGenerator{last: make(map[string]issued)}
}

// Next returns the client order id for symbol at timestampMs.
func (g *OrderIDGenerator) Next(symbol string, timestampMs int64) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := symbol + strconv.FormatInt(timestampMs, 10)
	prev, ok := g.last[symbol]
	if !ok || prev.ts != timestampMs {
		g.last[symbol] = issued{ts: timestampMs}
		return id
	}
	prev.seq++
	g.last[symbol] = prev
	return id + "-" + strconv.Itoa(prev.seq)
}
