package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar represents a single OHLCV sample for one instrument.
// Bars are produced by the market-data adapter and are never mutated
// after construction. Validation of bar contents and of sequence
// ordering happens in the consumer, which sees the whole sequence.
type PriceBar struct {
	Symbol    string          // Trading symbol (e.g., "ETHUSDT")
	OpenTime  time.Time       // Start time of the interval
	CloseTime time.Time       // End time of the interval
	Open      decimal.Decimal // Opening price
	High      decimal.Decimal // Highest price
	Low       decimal.Decimal // Lowest price
	Close     decimal.Decimal // Closing price
	Volume    decimal.Decimal // Trading volume
}
