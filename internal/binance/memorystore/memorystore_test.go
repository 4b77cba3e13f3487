package memorystore

import (
	"sync"
	"testing"

	"binancecollector/pkg/binance"
)

func TestPairStore(t *testing.T) {
	s := NewPairStore()
	if !s.Add(Pair{Base: "BTC", Quote: "USDT"}) {
		t.Fatal("first add should be new")
	}
	if s.Add(Pair{Base: "BTC", Quote: "USDT"}) {
		t.Fatal("duplicate add reported as new")
	}
	s.Add(Pair{Base: "ETH", Quote: "BTC"})

	if p, ok := s.Lookup("ETHBTC"); !ok || p.Base != "ETH" || p.Quote != "BTC" {
		t.Fatalf("Lookup(ETHBTC) = %+v, %t", p, ok)
	}
	if _, ok := s.Lookup("DOGEUSDT"); ok {
		t.Fatal("unknown symbol resolved")
	}

	topics := s.Topics("5m")
	if len(topics) != 2 || topics[0] != "btcusdt@kline_5m" || topics[1] != "ethbtc@kline_5m" {
		t.Fatalf("topics = %v", topics)
	}
}

func pc(base, quote string, openTime int64, interval string) PairCandle {
	return PairCandle{
		Pair:   Pair{Base: base, Quote: quote},
		Candle: binance.Candle{OpenTime: openTime, CloseTime: openTime + 59999, Interval: interval},
	}
}

// go test -v --run TestCandleStore
func TestCandleStore(t *testing.T) {
	s := NewCandleStore(3)

	for i := int64(0); i < 5; i++ {
		s.Add(pc("BTC", "USDT", i*60000, "1m"))
	}
	s.Add(pc("ETH", "USDT", 0, "1m"))

	if s.CountAll() != 4 {
		t.Fatalf("CountAll() = %d, want 4", s.CountAll())
	}

	// same open time replaces the last entry
	s.Add(pc("ETH", "USDT", 0, "1m"))
	if s.CountAll() != 4 {
		t.Fatalf("CountAll() after replace = %d, want 4", s.CountAll())
	}

	latest, ok := s.Latest("BTCUSDT")
	if !ok || latest.OpenTime != 4*60000 {
		t.Fatalf("Latest() = %+v, %t", latest, ok)
	}
	if _, ok := s.Latest("XRPUSDT"); ok {
		t.Fatal("Latest() on unknown symbol")
	}
}

func TestCandleStoreConcurrentAdd(t *testing.T) {
	s := NewCandleStore(0)
	var wg sync.WaitGroup
	for _, base := range []string{"BTC", "ETH", "SOL", "BNB"} {
		wg.Add(1)
		go func(base string) {
			defer wg.Done()
			for i := int64(0); i < 100; i++ {
				s.Add(pc(base, "USDT", i*60000, "1m"))
			}
		}(base)
	}
	wg.Wait()

	if s.CountAll() != 400 {
		t.Fatalf("CountAll() = %d, want 400", s.CountAll())
	}
}
