package memorystore

import "binancecollector/pkg/binance"

// Pair is one base/quote market the collector follows.
type Pair struct {
	Base  string `json:"base"`  // e.g. "BTC"
	Quote string `json:"quote"` // e.g. "USDT"
}

// Symbol is the exchange symbol, base immediately followed by quote.
func (p Pair) Symbol() string {
	return p.Base + p.Quote
}

// PairCandle is a closed candle tagged with the pair it belongs to.
type PairCandle struct {
	Pair
	binance.Candle
}
