package risk

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
	"volGuardBot/internal/ports"
)

// AdjusterConfig holds configuration for the stop adjuster.
type AdjusterConfig struct {
	Bounds          Bounds
	StopMultiplier  decimal.Decimal // ATR multiple for the recomputed volatility stop
	RecalcThreshold decimal.Decimal // Fractional volatility change that triggers recalculation
	TickSize        decimal.Decimal
}

// Adjuster decides whether an open position's protective stop should move.
// It recalculates only when volatility has shifted past the configured
// threshold, compares every candidate through the planner's bounds routine,
// and only ever tightens protection: a candidate that would widen risk is
// discarded.
type Adjuster struct {
	config AdjusterConfig
	logger ports.Logger
}

// NewAdjuster creates a new stop adjuster.
func NewAdjuster(cfg AdjusterConfig, logger ports.Logger) (*Adjuster, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required for adjuster", ports.ErrConfigurationError)
	}
	if err := cfg.Bounds.Validate(); err != nil {
		return nil, err
	}
	if !cfg.StopMultiplier.IsPositive() {
		return nil, fmt.Errorf("%w: stop multiplier must be positive, got %s", ports.ErrConfigurationError, cfg.StopMultiplier)
	}
	if cfg.RecalcThreshold.IsNegative() {
		return nil, fmt.Errorf("%w: recalculation threshold cannot be negative, got %s", ports.ErrConfigurationError, cfg.RecalcThreshold)
	}
	if !cfg.TickSize.IsPositive() {
		return nil, fmt.Errorf("%w: tick size must be positive, got %s", ports.ErrConfigurationError, cfg.TickSize)
	}
	return &Adjuster{config: cfg, logger: logger}, nil
}

// Adjustment is the adjuster's explicit outcome. Changed=false with a
// reason is a deliberate "no change" decision, distinct from a hold
// activation and from silence.
type Adjustment struct {
	Changed bool
	NewStop decimal.Decimal
	Winner  domain.StopCandidate // Meaningful only when Changed
	Reason  string
}

// Adjust evaluates whether the position's stop should move. vol is the
// freshly measured volatility; structural holds any caller-supplied
// candidates (e.g., a breakeven price). Errors are reserved for malformed
// input; every well-formed call returns an explicit decision.
func (a *Adjuster) Adjust(ctx context.Context, pos *domain.PositionState, vol domain.VolatilityMeasure, structural []domain.StopCandidate) (*Adjustment, error) {
	if pos == nil {
		return nil, fmt.Errorf("%w: position state is required", ports.ErrInvalidRequest)
	}
	if !vol.Magnitude.IsPositive() {
		return nil, fmt.Errorf("%w: volatility magnitude must be positive, got %s", ports.ErrInvalidRequest, vol.Magnitude)
	}
	if !pos.CurrentStop.IsPositive() {
		return nil, fmt.Errorf("%w: position has no active stop", ports.ErrInvalidRequest)
	}

	change := vol.FractionalChangeFrom(pos.StopVol)
	if change.LessThanOrEqual(a.config.RecalcThreshold) && len(structural) == 0 {
		return &Adjustment{
			Changed: false,
			Reason: fmt.Sprintf("volatility change %s below recalculation threshold %s",
				change.StringFixed(4), a.config.RecalcThreshold.StringFixed(4)),
		}, nil
	}

	candidates := make([]domain.StopCandidate, 0, len(structural)+1)
	if change.GreaterThan(a.config.RecalcThreshold) {
		candidates = append(candidates, a.volatilityCandidate(pos, vol))
	}
	candidates = append(candidates, structural...)

	// Every candidate passes the same envelope the planner enforces;
	// one that fails is dropped, never clamped.
	best := domain.StopCandidate{}
	found := false
	for _, c := range candidates {
		if !c.Source.IsValid() || !c.Price.IsPositive() {
			return nil, fmt.Errorf("%w: malformed stop candidate (source %q, price %s)", ports.ErrInvalidRequest, c.Source, c.Price)
		}
		if _, err := a.config.Bounds.CheckStopDistance(pos.EntryPrice, c.Price); err != nil {
			a.logger.Debug(ctx, "Stop candidate rejected by bounds", map[string]interface{}{
				"symbol": pos.Symbol, "source": string(c.Source), "price": c.Price.String(), "reason": err.Error(),
			})
			continue
		}
		if !found || moreProtective(pos.Side, c.Price, best.Price) {
			best = c
			found = true
		}
	}

	if !found {
		return &Adjustment{Changed: false, Reason: "no candidate passed the stop distance bounds"}, nil
	}
	if !moreProtective(pos.Side, best.Price, pos.CurrentStop) {
		return &Adjustment{
			Changed: false,
			Reason: fmt.Sprintf("best candidate %s (%s) not more protective than current stop %s",
				best.Price, best.Source, pos.CurrentStop),
		}, nil
	}

	margin := best.Price.Sub(pos.CurrentStop).Abs()
	return &Adjustment{
		Changed: true,
		NewStop: best.Price,
		Winner:  best,
		Reason: fmt.Sprintf("%s candidate %s replaces stop %s (margin %s, %d candidates compared)",
			best.Source, best.Price, pos.CurrentStop, margin, len(candidates)),
	}, nil
}

// volatilityCandidate trails the stop a multiplier of current volatility
// behind the current price.
func (a *Adjuster) volatilityCandidate(pos *domain.PositionState, vol domain.VolatilityMeasure) domain.StopCandidate {
	offset := vol.Magnitude.Mul(a.config.StopMultiplier)
	var price decimal.Decimal
	if pos.Side == domain.Short {
		price = pos.CurrentPrice.Add(offset)
	} else {
		price = pos.CurrentPrice.Sub(offset)
	}
	price = roundToTick(price, a.config.TickSize)
	return domain.StopCandidate{
		Price:       price,
		Source:      domain.StopSourceVolatility,
		Volatility:  vol.Magnitude,
		Multiplier:  a.config.StopMultiplier,
		DistancePct: StopDistance(pos.EntryPrice, price),
	}
}

// moreProtective reports whether candidate beats incumbent for the given
// side: a long is better protected by a higher stop, a short by a lower one.
func moreProtective(side domain.Side, candidate, incumbent decimal.Decimal) bool {
	if side == domain.Short {
		return candidate.LessThan(incumbent)
	}
	return candidate.GreaterThan(incumbent)
}
