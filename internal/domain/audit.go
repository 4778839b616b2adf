package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditRecord is the structured record emitted once per evaluation call,
// suitable for an append-only audit sink. On error, Err carries the typed
// error's message; Inputs and Outputs are short human-readable summaries,
// not serialized state.
type AuditRecord struct {
	Symbol    string
	Timestamp time.Time
	Component string // "volatility", "planner", "adjuster", "rules"
	Inputs    string
	Outputs   string
	Err       string // Empty on success
}

// PortfolioSnapshot is an atomic view of aggregate capital-at-risk across
// all open positions, taken by the single-writer aggregator. Version
// increases monotonically with every position update so consumers can
// detect a stale read.
type PortfolioSnapshot struct {
	AggregateRisk  decimal.Decimal // Sum of per-position risk amounts
	AccountBalance decimal.Decimal // Equity the risk ceiling is measured against
	OpenPositions  int
	Version        uint64
}
