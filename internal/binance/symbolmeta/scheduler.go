package symbolmeta

import (
	"context"
	"time"

	"binancecollector/internal/binance/snapshot"
	"binancecollector/pkg/binance"

	"go.uber.org/zap"
)

// MidnightLoader reruns a pair load every day at UTC midnight.
type MidnightLoader struct {
	Load func(ctx context.Context) <-chan binance.SymbolInfo
	Now  func() time.Time
}

// DefaultLoadFn streams loader's selection through a buffered channel.
func DefaultLoadFn(loader *snapshot.PairLoader) func(ctx context.Context) <-chan binance.SymbolInfo {
	return func(ctx context.Context) <-chan binance.SymbolInfo {
		symbolCh := make(chan binance.SymbolInfo, 100)

		go func() {
			if err := loader.LoadPairs(ctx, symbolCh); err != nil {
				loader.Logger.Error("failed to load pairs", zap.Error(err))
			}
		}()

		return symbolCh
	}
}

// NextMidnight returns the first UTC midnight strictly after now.
func NextMidnight(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// RunOnce performs one load and hands the stream to proc.
func (m *MidnightLoader) RunOnce(ctx context.Context, proc func(<-chan binance.SymbolInfo)) {
	proc(m.Load(ctx))
}

// Start schedules RunOnce at the next UTC midnight and every 24 hours after,
// until ctx is done. The startup load is left to the caller.
func (m *MidnightLoader) Start(ctx context.Context, proc func(<-chan binance.SymbolInfo)) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}

	go func() {
		wait := time.NewTimer(time.Until(NextMidnight(now())))
		defer wait.Stop()
		select {
		case <-wait.C:
		case <-ctx.Done():
			return
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			m.RunOnce(ctx, proc)
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
}
