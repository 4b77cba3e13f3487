package binance

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNoResult means the response body was absent, null or not valid JSON.
	// It is distinct from a successfully decoded empty collection.
	ErrNoResult = errors.New("binance: no result")

	// ErrMalformedKline means a kline row did not match the fixed 12-field layout.
	ErrMalformedKline = errors.New("binance: malformed kline")

	// ErrMalformedFilter means a symbol filter carried a bound that is not a decimal.
	ErrMalformedFilter = errors.New("binance: malformed symbol filter")
)

// APIError is an error payload reported by the exchange, passed through verbatim.
type APIError struct {
	Status int
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Body   []byte `json:"-"`
}

func (e *APIError) Error() string {
	return "binance api error " + strconv.Itoa(e.Code) + " (http " + strconv.Itoa(e.Status) + "): " + e.Msg
}

// KlineShapeError reports the offending row of a kline payload.
type KlineShapeError struct {
	Row    int
	Fields int
	Field  int
	Err    error
}

func (e *KlineShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kline row %d field %d: %v", e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("kline row %d has %d fields, want %d", e.Row, e.Fields, klineFields)
}

func (e *KlineShapeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedKline, e.Err}
	}
	return []error{ErrMalformedKline}
}
