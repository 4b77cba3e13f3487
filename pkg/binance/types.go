package binance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExchangeInfo is the subset of /api/v3/exchangeInfo used for pair metadata.
type ExchangeInfo struct {
	Timezone   string       `json:"timezone"`
	ServerTime int64        `json:"serverTime"`
	Symbols    []SymbolInfo `json:"symbols"`
}

type SymbolInfo struct {
	Symbol     string         `json:"symbol"`
	Status     string         `json:"status"`
	BaseAsset  string         `json:"baseAsset"`
	QuoteAsset string         `json:"quoteAsset"`
	Filters    []SymbolFilter `json:"filters"`
}

type SymbolFilter struct {
	FilterType string `json:"filterType"`
	MinQty     string `json:"minQty,omitempty"`
	MaxQty     string `json:"maxQty,omitempty"`
	StepSize   string `json:"stepSize,omitempty"`
	TickSize   string `json:"tickSize,omitempty"`
}

// LotSize holds the LOT_SIZE filter bounds of a symbol.
type LotSize struct {
	MinQty   decimal.Decimal
	MaxQty   decimal.Decimal
	StepSize decimal.Decimal
}

// LotSize returns the LOT_SIZE filter, or false when the symbol has none.
// A bound that does not parse is reported as ErrMalformedFilter.
func (s SymbolInfo) LotSize() (LotSize, bool, error) {
	for _, f := range s.Filters {
		if f.FilterType != "LOT_SIZE" {
			continue
		}
		var lot LotSize
		for _, b := range []struct {
			name string
			raw  string
			dst  *decimal.Decimal
		}{
			{"minQty", f.MinQty, &lot.MinQty},
			{"maxQty", f.MaxQty, &lot.MaxQty},
			{"stepSize", f.StepSize, &lot.StepSize},
		} {
			d, err := decimal.NewFromString(b.raw)
			if err != nil {
				return LotSize{}, true, fmt.Errorf("%w: %s LOT_SIZE %s %q", ErrMalformedFilter, s.Symbol, b.name, b.raw)
			}
			*b.dst = d
		}
		return lot, true, nil
	}
	return LotSize{}, false, nil
}

func (s SymbolInfo) Trading() bool {
	return s.Status == "TRADING"
}

// OrderResponse is returned by order placement and cancellation.
type OrderResponse struct {
	Symbol              string          `json:"symbol"`
	OrderID             int64           `json:"orderId"`
	ClientOrderID       string          `json:"clientOrderId"`
	OrigClientOrderID   string          `json:"origClientOrderId,omitempty"`
	TransactTime        int64           `json:"transactTime"`
	Price               decimal.Decimal `json:"price"`
	OrigQty             decimal.Decimal `json:"origQty"`
	ExecutedQty         decimal.Decimal `json:"executedQty"`
	CummulativeQuoteQty decimal.Decimal `json:"cummulativeQuoteQty"`
	Status              string          `json:"status"`
	TimeInForce         string          `json:"timeInForce"`
	Type                string          `json:"type"`
	Side                string          `json:"side"`
}

// OpenOrder is one element of /api/v3/openOrders.
type OpenOrder struct {
	Symbol        string          `json:"symbol"`
	OrderID       int64           `json:"orderId"`
	ClientOrderID string          `json:"clientOrderId"`
	Price         decimal.Decimal `json:"price"`
	OrigQty       decimal.Decimal `json:"origQty"`
	ExecutedQty   decimal.Decimal `json:"executedQty"`
	Status        string          `json:"status"`
	TimeInForce   string          `json:"timeInForce"`
	Type          string          `json:"type"`
	Side          string          `json:"side"`
	Time          int64           `json:"time"`
	UpdateTime    int64           `json:"updateTime"`
}
