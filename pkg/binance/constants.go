package binance

import (
	"fmt"
	"time"
)

// REST paths. They are fixed by the exchange and not configurable per call.
const (
	PathExchangeInfo = "/api/v3/exchangeInfo"
	PathOrder        = "/api/v3/order"
	PathOpenOrders   = "/api/v3/openOrders"
	PathKlines       = "/api/v3/klines"

	HeaderAPIKey = "X-MBX-APIKEY"

	// MaxKlineLimit is the largest page the klines endpoint serves.
	MaxKlineLimit = 1000
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type TimeInForce string

const (
	GoodTillCancel TimeInForce = "GTC"
	FillOrKill     TimeInForce = "FOK"
)

// TimeInForce returns the policy used for limit orders on this side:
// sells rest on the book, buys fill entirely or not at all.
func (s Side) TimeInForce() TimeInForce {
	if s == SideSell {
		return GoodTillCancel
	}
	return FillOrKill
}

const OrderTypeLimit = "LIMIT"

// KlineInterval is the interval value used in API requests and stored with every candle.
type KlineInterval string

// KlineIntervalMeta describes a kline interval.
type KlineIntervalMeta struct {
	APIValue string
	Duration time.Duration
}

const (
	Interval1Sec    KlineInterval = "1s"
	Interval1Min    KlineInterval = "1m"
	Interval3Min    KlineInterval = "3m"
	Interval5Min    KlineInterval = "5m"
	Interval15Min   KlineInterval = "15m"
	Interval30Min   KlineInterval = "30m"
	Interval1Hour   KlineInterval = "1h"
	Interval2Hour   KlineInterval = "2h"
	Interval4Hour   KlineInterval = "4h"
	Interval6Hour   KlineInterval = "6h"
	Interval8Hour   KlineInterval = "8h"
	Interval12Hour  KlineInterval = "12h"
	IntervalDaily   KlineInterval = "1d"
	Interval3Day    KlineInterval = "3d"
	IntervalWeekly  KlineInterval = "1w"
	IntervalMonthly KlineInterval = "1M"
)

var validKlineIntervals = map[KlineInterval]KlineIntervalMeta{
	Interval1Sec:    {APIValue: "1s", Duration: time.Second},
	Interval1Min:    {APIValue: "1m", Duration: time.Minute},
	Interval3Min:    {APIValue: "3m", Duration: 3 * time.Minute},
	Interval5Min:    {APIValue: "5m", Duration: 5 * time.Minute},
	Interval15Min:   {APIValue: "15m", Duration: 15 * time.Minute},
	Interval30Min:   {APIValue: "30m", Duration: 30 * time.Minute},
	Interval1Hour:   {APIValue: "1h", Duration: time.Hour},
	Interval2Hour:   {APIValue: "2h", Duration: 2 * time.Hour},
	Interval4Hour:   {APIValue: "4h", Duration: 4 * time.Hour},
	Interval6Hour:   {APIValue: "6h", Duration: 6 * time.Hour},
	Interval8Hour:   {APIValue: "8h", Duration: 8 * time.Hour},
	Interval12Hour:  {APIValue: "12h", Duration: 12 * time.Hour},
	IntervalDaily:   {APIValue: "1d", Duration: 24 * time.Hour},
	Interval3Day:    {APIValue: "3d", Duration: 3 * 24 * time.Hour},
	IntervalWeekly:  {APIValue: "1w", Duration: 7 * 24 * time.Hour},
	IntervalMonthly: {APIValue: "1M", Duration: 30 * 24 * time.Hour}, // paging estimate only
}

func (k KlineInterval) IsValid() bool {
	_, ok := validKlineIntervals[k]
	return ok
}

// ParseKlineInterval parses s into its interval metadata.
func ParseKlineInterval(s string) (KlineIntervalMeta, error) {
	meta, ok := validKlineIntervals[KlineInterval(s)]
	if !ok {
		return KlineIntervalMeta{}, fmt.Errorf("invalid kline interval: %q", s)
	}
	return meta, nil
}
