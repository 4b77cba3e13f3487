package collector

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics are the collector's instruments.
type Metrics struct {
	CandlesInserted  metric.Int64Counter
	BackfillErrors   metric.Int64Counter
	BackfillDuration metric.Float64Histogram
}

// NewMetrics registers the instruments on meter; a nil meter yields no-ops.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("collector")
	}
	inserted, err := meter.Int64Counter("collector.candles.inserted",
		metric.WithDescription("Candles newly written to the market data store"))
	if err != nil {
		return nil, fmt.Errorf("create candles counter: %w", err)
	}
	failures, err := meter.Int64Counter("collector.backfill.errors",
		metric.WithDescription("Failed pair backfills"))
	if err != nil {
		return nil, fmt.Errorf("create backfill error counter: %w", err)
	}
	duration, err := meter.Float64Histogram("collector.backfill.duration",
		metric.WithDescription("Duration of one pair backfill"), metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create backfill duration histogram: %w", err)
	}
	return &Metrics{CandlesInserted: inserted, BackfillErrors: failures, BackfillDuration: duration}, nil
}
