package postgres

import "github.com/shopspring/decimal"

// MarketDataRecord is one stored candle. ID is interval+base+quote+openTimestamp,
// so re-ingesting the same candle hits the primary key.
type MarketDataRecord struct {
	ID         string `gorm:"primaryKey;type:text"`
	BaseAsset  string `gorm:"type:varchar(20);not null;index:idx_market_data_pair"`
	QuoteAsset string `gorm:"type:varchar(20);not null;index:idx_market_data_pair"`

	OpenTimestamp  int64 `gorm:"not null"` // ms since epoch
	CloseTimestamp int64 `gorm:"not null;index:idx_market_data_close"`

	QuoteOpenPx  decimal.Decimal `gorm:"type:numeric;not null"`
	QuoteHighPx  decimal.Decimal `gorm:"type:numeric;not null"`
	QuoteLowPx   decimal.Decimal `gorm:"type:numeric;not null"`
	QuoteClosePx decimal.Decimal `gorm:"type:numeric;not null"`

	BaseVolume       decimal.Decimal `gorm:"type:numeric;not null"`
	QuoteVolume      decimal.Decimal `gorm:"type:numeric;not null"`
	NumberOfTrades   int64           `gorm:"not null"`
	TakerBaseVolume  decimal.Decimal `gorm:"type:numeric;not null"`
	TakerQuoteVolume decimal.Decimal `gorm:"type:numeric;not null"`

	Interval string `gorm:"type:varchar(10);not null;index:idx_market_data_pair"`
}

// TradedPairRecord is a snapshot of a pair's lot-size rules taken at PeriodTimestamp.
type TradedPairRecord struct {
	QuoteAsset      string          `gorm:"primaryKey;type:varchar(20)"`
	BaseAsset       string          `gorm:"primaryKey;type:varchar(20)"`
	MinLotQty       decimal.Decimal `gorm:"type:numeric"`
	MaxLotQty       decimal.Decimal `gorm:"type:numeric"`
	StepSizeQty     decimal.Decimal `gorm:"type:numeric"`
	PeriodTimestamp int64           `gorm:"primaryKey"`
	BotIsTrading    bool            `gorm:"not null"`
}

// OrderRecord is an order placed through the client, keyed by client order id.
type OrderRecord struct {
	ClientOrderID     string          `gorm:"primaryKey;type:varchar(64)"`
	OrderID           int64           `gorm:"index"`
	BaseAsset         string          `gorm:"type:varchar(20);not null;index:idx_orders_pair"`
	QuoteAsset        string          `gorm:"type:varchar(20);not null;index:idx_orders_pair"`
	Side              string          `gorm:"type:varchar(4);not null"`
	OrderType         string          `gorm:"type:varchar(20);not null"`
	TimeInForce       string          `gorm:"type:varchar(4)"`
	Price             decimal.Decimal `gorm:"type:numeric"`
	Quantity          decimal.Decimal `gorm:"type:numeric"`
	ExecutedQty       decimal.Decimal `gorm:"type:numeric"`
	Status            string          `gorm:"type:varchar(20)"`
	TransactTimestamp int64
}

// PortfolioRecord is the current position held in base, valued in quote.
type PortfolioRecord struct {
	BaseAsset        string          `gorm:"primaryKey;type:varchar(20)"`
	QuoteAsset       string          `gorm:"primaryKey;type:varchar(20)"`
	Quantity         decimal.Decimal `gorm:"type:numeric;not null"`
	AvgPrice         decimal.Decimal `gorm:"type:numeric"`
	UpdatedTimestamp int64
}
