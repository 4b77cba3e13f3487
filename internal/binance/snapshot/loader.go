package snapshot

import (
	"context"
	"fmt"
	"time"

	"binancecollector/config"
	"binancecollector/pkg/binance"

	"go.uber.org/zap"
)

// ExchangeInfoSource is satisfied by *binance.RESTClient.
type ExchangeInfoSource interface {
	ExchangeInfo(ctx context.Context) (*binance.ExchangeInfo, error)
}

// PairLoader selects the pairs to collect from exchangeInfo.
type PairLoader struct {
	Client      ExchangeInfoSource
	Pairs       []config.PairConfig // explicit pairs; when set QuoteAssets is ignored
	QuoteAssets []string            // empty accepts every quote asset
	Timeout     time.Duration
	Logger      *zap.Logger
}

// LoadPairs fetches exchangeInfo and streams every selected TRADING symbol
// into ch. ch is always closed on return.
func (l *PairLoader) LoadPairs(ctx context.Context, ch chan<- binance.SymbolInfo) error {
	defer close(ch)

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	info, err := l.Client.ExchangeInfo(ctx)
	if err != nil {
		l.Logger.Error("failed to load exchange info", zap.Error(err))
		return fmt.Errorf("load exchange info: %w", err)
	}

	selected := l.Select(info.Symbols)
	l.Logger.Info("loaded pairs", zap.Int("count", len(selected)), zap.Int("listed", len(info.Symbols)))

	for _, sym := range selected {
		select {
		case ch <- sym:
		case <-ctx.Done():
			l.Logger.Warn("pair streaming interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		}
	}
	return nil
}

// Select keeps the trading symbols matching the configured pairs or quote assets.
func (l *PairLoader) Select(symbols []binance.SymbolInfo) []binance.SymbolInfo {
	wanted := make(map[string]bool, len(l.Pairs))
	for _, p := range l.Pairs {
		wanted[p.Base+"/"+p.Quote] = true
	}
	quotes := make(map[string]bool, len(l.QuoteAssets))
	for _, q := range l.QuoteAssets {
		quotes[q] = true
	}

	out := make([]binance.SymbolInfo, 0, len(symbols))
	for _, sym := range symbols {
		if !sym.Trading() {
			continue
		}
		switch {
		case len(wanted) > 0:
			if !wanted[sym.BaseAsset+"/"+sym.QuoteAsset] {
				continue
			}
		case len(quotes) > 0:
			if !quotes[sym.QuoteAsset] {
				continue
			}
		}
		out = append(out, sym)
	}
	return out
}
