package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"binancecollector/config"
	"binancecollector/internal/binance/memorystore"
	"binancecollector/internal/binance/snapshot"
	"binancecollector/internal/binance/stream"
	"binancecollector/internal/binance/symbolmeta"
	"binancecollector/logger"
	"binancecollector/pkg/binance"
	"binancecollector/pkg/storage/postgres"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const statusEvery = 30 * time.Second

// Run starts the Binance market data pipeline and blocks until ctx is done.
// Pairs are loaded from exchangeInfo (and reloaded daily), backfilled over
// REST on a schedule, and followed live over the kline stream.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, meter metric.Meter) error {
	log = log.With(zap.String("run_id", uuid.NewString()))

	meta, err := binance.ParseKlineInterval(cfg.Collector.Interval)
	if err != nil {
		return fmt.Errorf("collector interval: %w", err)
	}

	metrics, err := NewMetrics(meter)
	if err != nil {
		return err
	}

	// Initialize PostgreSQL Client
	store, err := postgres.InitializeAndMigrate(cfg.Postgres, true)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer store.Close()

	creds := binance.NewCredentials(cfg.Binance.Credentials.PublicKey, cfg.Binance.Credentials.SecretKey)
	restClient := binance.NewRESTClient(creds, cfg.Binance.REST.BaseURL, cfg.Binance.REST.Timeout,
		binance.WithLogger(logger.Component(log, "rest")),
		binance.WithRateLimit(cfg.Binance.REST.RequestsPerSecond),
	)

	// Load pairs once now, then at every UTC midnight
	pairs := memorystore.NewPairStore()
	loader := &snapshot.PairLoader{
		Client:      restClient,
		Pairs:       cfg.Collector.Pairs,
		QuoteAssets: cfg.Collector.QuoteAssets,
		Timeout:     cfg.Binance.REST.Timeout,
		Logger:      logger.Component(log, "snapshot"),
	}
	recorder := &symbolmeta.PairRecorder{Pairs: pairs, Sink: store, Logger: logger.Component(log, "symbolmeta")}
	midnight := &symbolmeta.MidnightLoader{Load: symbolmeta.DefaultLoadFn(loader)}

	midnight.RunOnce(ctx, recorder.Proc(ctx))
	if pairs.Len() == 0 {
		return errors.New("no pairs to collect")
	}
	midnight.Start(ctx, recorder.Proc(ctx))

	backfiller := &Backfiller{
		Source:   restClient,
		Store:    store,
		Interval: cfg.Collector.Interval,
		Lookback: cfg.Collector.Lookback,
		Logger:   logger.Component(log, "backfill"),
		Metrics:  metrics,
	}
	runBackfill := func() {
		if err := backfiller.BackfillAll(ctx, pairs.GetAll(), cfg.Collector.MaxConcurrency); err != nil {
			log.Warn("backfill pass finished with errors", zap.Error(err))
		}
	}
	runBackfill()

	candles := memorystore.NewCandleStore(0)
	var streamSince time.Time
	if cfg.Binance.WS.Enabled {
		interval := cfg.Collector.Interval
		wsClient := binance.NewWSClient(cfg.Binance.WS.URL,
			func() []string { return pairs.Topics(interval) },
			logger.Component(log, "ws"))
		wsClient.SetMessageHandler(stream.MakeMessageHandler(ctx, logger.Component(log, "stream"),
			pairs, candles, store, metrics.CandlesInserted))

		dialTimeout := cfg.Binance.WS.Timeout
		if dialTimeout <= 0 {
			dialTimeout = 10 * time.Second
		}
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		err := wsClient.Connect(dialCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("connect kline stream: %w", err)
		}
		defer wsClient.Close()
		go wsClient.Listen(ctx)
		streamSince = time.Now()
	}

	backfillEvery := cfg.Collector.BackfillEvery
	if backfillEvery <= 0 {
		backfillEvery = 15 * time.Minute
	}
	backfillTicker := time.NewTicker(backfillEvery)
	defer backfillTicker.Stop()
	statusTicker := time.NewTicker(statusEvery)
	defer statusTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("collector stopping", zap.Error(ctx.Err()))
			return nil
		case <-backfillTicker.C:
			runBackfill()
		case <-statusTicker.C:
			log.Info("collector status",
				zap.Int("pairs", pairs.Len()),
				zap.Int("cached_candles", candles.CountAll()),
				zap.Bool("db_connected", store.IsConnected(ctx)))

			// Backfill pairs the stream has gone quiet on
			staleAfter := 2 * meta.Duration
			if streamSince.IsZero() || time.Since(streamSince) < staleAfter {
				continue
			}
			if stale := stalePairs(pairs.GetAll(), candles, time.Now().Add(-staleAfter)); len(stale) > 0 {
				log.Warn("kline stream stale, backfilling", zap.Int("pairs", len(stale)))
				if err := backfiller.BackfillAll(ctx, stale, cfg.Collector.MaxConcurrency); err != nil {
					log.Warn("stale backfill finished with errors", zap.Error(err))
				}
			}
		}
	}
}
