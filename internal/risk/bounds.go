package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/ports"
)

// Bounds is the stop-distance safety envelope shared by the planner and
// the adjuster: every stop, regardless of source, passes through the same
// check before it is allowed near a live position.
type Bounds struct {
	MinDistance decimal.Decimal // Lower bound, as a fraction of entry price
	MaxDistance decimal.Decimal // Upper bound, as a fraction of entry price
	NoiseFloor  decimal.Decimal // Distance allowed as an exact match outside the envelope
}

// Validate checks the envelope configuration itself.
func (b Bounds) Validate() error {
	if !b.MinDistance.IsPositive() || b.MaxDistance.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: distance bounds must be between 0.0 and 1.0 (exclusive), got [%s, %s]",
			ports.ErrConfigurationError, b.MinDistance, b.MaxDistance)
	}
	if b.MinDistance.GreaterThanOrEqual(b.MaxDistance) {
		return fmt.Errorf("%w: min distance %s must be below max distance %s",
			ports.ErrConfigurationError, b.MinDistance, b.MaxDistance)
	}
	if b.NoiseFloor.IsNegative() || b.NoiseFloor.GreaterThanOrEqual(b.MinDistance) {
		return fmt.Errorf("%w: noise floor %s must be non-negative and below min distance %s",
			ports.ErrConfigurationError, b.NoiseFloor, b.MinDistance)
	}
	return nil
}

// StopDistance returns |entry − stop| / entry as a fraction.
func StopDistance(entry, stop decimal.Decimal) decimal.Decimal {
	return entry.Sub(stop).Abs().Div(entry)
}

// CheckStopDistance validates that the distance between entry and stop is
// either exactly the noise floor (the breakeven escape hatch) or within
// [MinDistance, MaxDistance] inclusive. It returns the computed distance on
// success. A distance outside the envelope is rejected with an error naming
// the actual and allowed values; it is never silently clamped.
func (b Bounds) CheckStopDistance(entry, stop decimal.Decimal) (decimal.Decimal, error) {
	if !entry.IsPositive() || !stop.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: entry %s and stop %s must be positive", ports.ErrValueOutOfRange, entry, stop)
	}
	distance := StopDistance(entry, stop)
	if distance.Equal(b.NoiseFloor) {
		return distance, nil
	}
	if distance.LessThan(b.MinDistance) || distance.GreaterThan(b.MaxDistance) {
		return decimal.Zero, fmt.Errorf("%w: stop distance %s%% outside allowed [%s%%, %s%%]",
			ports.ErrValueOutOfRange,
			distance.Mul(decimal.NewFromInt(100)),
			b.MinDistance.Mul(decimal.NewFromInt(100)),
			b.MaxDistance.Mul(decimal.NewFromInt(100)))
	}
	return distance, nil
}
