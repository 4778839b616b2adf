package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VolatilityMeasure is the result of one volatility calculation.
// It is created once per calculation call and never mutated.
// Magnitude is strictly positive for any accepted input; a non-positive
// magnitude is an error condition inside the calculator, never a
// representable result.
type VolatilityMeasure struct {
	Magnitude  decimal.Decimal // Smoothed true-range magnitude, in price units
	Period     int             // Smoothing period used
	BarCount   int             // Number of bars the calculation consumed
	ComputedAt time.Time       // Evaluation time the calculation was anchored to
}

// FractionalChangeFrom returns |m − prev| / prev, the relative change of
// this measure against a previous one. Used by the stop adjuster to decide
// whether a recalculation is warranted.
func (m VolatilityMeasure) FractionalChangeFrom(prev decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		return decimal.NewFromInt(1)
	}
	return m.Magnitude.Sub(prev).Abs().Div(prev)
}
