package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
)

// MarketDataProvider supplies ordered price history and current prices.
// The implementation owns transport concerns (retry, backoff, rate limits);
// the core only sees clean sequences or an error.
type MarketDataProvider interface {
	// GetBars retrieves the most recent closed bars for a symbol, oldest
	// first, up to limit.
	GetBars(ctx context.Context, symbol, interval string, limit int) ([]*domain.PriceBar, error)
	// GetPrice retrieves the current mark price for a symbol.
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	// GetServerTime returns the exchange's clock, used as the evaluation
	// anchor for staleness checks.
	GetServerTime(ctx context.Context) (time.Time, error)
}

// AccountService exposes the current account balance from the ledger side.
type AccountService interface {
	// GetBalance returns the available account balance in quote currency.
	GetBalance(ctx context.Context) (decimal.Decimal, error)
}
