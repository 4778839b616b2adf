package indicators

import (
	"context"
	"time"

	"volGuardBot/internal/domain"
)

// Indicator represents a volatility indicator computed from price history.
// Implementations are pure: identical inputs yield identical outputs,
// which keeps evaluation deterministic and backtestable.
type Indicator interface {
	// Measure computes the indicator value for the given bars. asOf anchors
	// the staleness check so the function never reads the wall clock.
	Measure(ctx context.Context, bars []*domain.PriceBar, asOf time.Time) (domain.VolatilityMeasure, error)

	// RequiredDataPoints returns the minimum number of bars needed for calculation.
	RequiredDataPoints() int

	// Name returns the name of the indicator.
	Name() string
}

// IndicatorConfig holds common configuration for indicators.
type IndicatorConfig struct {
	Period int
}
