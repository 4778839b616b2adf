package indicators

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
	"volGuardBot/internal/ports"
)

// ATRConfig holds configuration for the Average True Range indicator.
type ATRConfig struct {
	IndicatorConfig
	Staleness time.Duration   // Maximum age of the newest bar relative to asOf
	TickSize  decimal.Decimal // Instrument's minimum price increment, for final rounding
}

// ATR implements the Average True Range indicator using Wilder's smoothing.
// All arithmetic is fixed-precision decimal; the result is rounded to the
// instrument tick at the final step only, so rounding error never compounds
// through the smoothing chain.
type ATR struct {
	config ATRConfig
}

// NewATR creates a new Average True Range indicator instance.
func NewATR(config ATRConfig) (*ATR, error) {
	if config.Period <= 0 {
		return nil, fmt.Errorf("%w: ATR period must be positive, got %d", ports.ErrConfigurationError, config.Period)
	}
	if config.Staleness <= 0 {
		return nil, fmt.Errorf("%w: ATR staleness threshold must be positive, got %s", ports.ErrConfigurationError, config.Staleness)
	}
	if !config.TickSize.IsPositive() {
		return nil, fmt.Errorf("%w: ATR tick size must be positive, got %s", ports.ErrConfigurationError, config.TickSize)
	}
	return &ATR{config: config}, nil
}

// Measure computes the smoothed true-range magnitude for the given bars.
// Bars must be chronologically ordered; the newest bar must be younger than
// the staleness threshold relative to asOf. Staleness is a distinct error
// from insufficiency: it signals a live-feed problem, not a history problem.
func (a *ATR) Measure(ctx context.Context, bars []*domain.PriceBar, asOf time.Time) (domain.VolatilityMeasure, error) {
	period := a.config.Period
	if len(bars) < period+1 {
		return domain.VolatilityMeasure{}, fmt.Errorf("%w: need %d bars, got %d", ports.ErrDataInsufficient, period+1, len(bars))
	}

	if err := a.validateBars(bars); err != nil {
		return domain.VolatilityMeasure{}, err
	}

	newest := bars[len(bars)-1]
	if age := asOf.Sub(newest.CloseTime); age > a.config.Staleness {
		return domain.VolatilityMeasure{}, fmt.Errorf("%w: newest bar closed %s before evaluation time (threshold %s)",
			ports.ErrDataStale, age, a.config.Staleness)
	}

	// True range needs a previous close, so the first bar only seeds the chain.
	trueRanges := make([]decimal.Decimal, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		high := bars[i].High
		low := bars[i].Low
		prevClose := bars[i-1].Close

		// True Range is the greatest of:
		// 1. Current High - Current Low
		// 2. |Current High - Previous Close|
		// 3. |Current Low - Previous Close|
		tr := decimal.Max(high.Sub(low), high.Sub(prevClose).Abs(), low.Sub(prevClose).Abs())
		trueRanges = append(trueRanges, tr)
	}

	// Wilder's smoothing: simple average over the first window, then
	// exponential smoothing with weight 1/period for every later sample.
	periodDec := decimal.NewFromInt(int64(period))
	atr := decimal.Zero
	for i := 0; i < period; i++ {
		atr = atr.Add(trueRanges[i])
	}
	atr = atr.Div(periodDec)

	for i := period; i < len(trueRanges); i++ {
		atr = atr.Mul(periodDec.Sub(decimal.NewFromInt(1))).Add(trueRanges[i]).Div(periodDec)
	}

	magnitude := roundToTick(atr, a.config.TickSize)
	if !magnitude.IsPositive() {
		return domain.VolatilityMeasure{}, fmt.Errorf("%w: computed volatility %s is not positive", ports.ErrValueOutOfRange, magnitude)
	}

	return domain.VolatilityMeasure{
		Magnitude:  magnitude,
		Period:     period,
		BarCount:   len(bars),
		ComputedAt: asOf,
	}, nil
}

func (a *ATR) validateBars(bars []*domain.PriceBar) error {
	for i, bar := range bars {
		if !bar.Open.IsPositive() || !bar.High.IsPositive() || !bar.Low.IsPositive() || !bar.Close.IsPositive() {
			return fmt.Errorf("%w: non-positive price in bar %d (%s)", ports.ErrDataInvalid, i, bar.OpenTime.Format(time.RFC3339))
		}
		if bar.High.LessThan(bar.Low) {
			return fmt.Errorf("%w: high %s below low %s in bar %d", ports.ErrDataInvalid, bar.High, bar.Low, i)
		}
		if i > 0 && !bar.OpenTime.After(bars[i-1].OpenTime) {
			return fmt.Errorf("%w: non-chronological timestamps at bar %d", ports.ErrDataInvalid, i)
		}
	}
	return nil
}

// RequiredDataPoints returns the minimum number of bars needed for calculation.
func (a *ATR) RequiredDataPoints() int {
	return a.config.Period + 1
}

// Name returns the name of the indicator.
func (a *ATR) Name() string {
	return "ATR"
}

// roundToTick rounds a price magnitude to the nearest multiple of tick.
func roundToTick(v, tick decimal.Decimal) decimal.Decimal {
	return v.Div(tick).Round(0).Mul(tick)
}
