package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
	"volGuardBot/internal/ports"
)

// Config holds the thresholds for the trade-management rules.
type Config struct {
	BreakevenMultiple    decimal.Decimal // Favorable ATR multiple that arms the breakeven move
	ScaleInMultiple      decimal.Decimal // Favorable ATR multiple that allows an add-on
	ScaleInFraction      decimal.Decimal // Add-on size as a fraction of current quantity
	MaxScaleIns          int             // Hard cap on add-ons per position
	CatastrophicMultiple decimal.Decimal // Adverse ATR multiple that forces a full close
	PortfolioRiskCeiling decimal.Decimal // Max aggregate risk as a fraction of balance
	NoiseFloorPct        decimal.Decimal // Offset applied to the breakeven stop price
	TickSize             decimal.Decimal
}

// Evaluator composes the three trade-management rules in fixed priority
// order: catastrophic exit, then breakeven, then scale-in. Each rule is a
// pure function of the position state and (for scale-in) a portfolio
// snapshot; "condition not met" is always a hold activation with a reason,
// never an error. Errors are reserved for malformed input.
type Evaluator struct {
	config Config
	logger ports.Logger
}

// NewEvaluator creates a new rule evaluator.
func NewEvaluator(cfg Config, logger ports.Logger) (*Evaluator, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required for evaluator", ports.ErrConfigurationError)
	}
	if !cfg.BreakevenMultiple.IsPositive() || !cfg.ScaleInMultiple.IsPositive() || !cfg.CatastrophicMultiple.IsPositive() {
		return nil, fmt.Errorf("%w: rule multiples must be positive", ports.ErrConfigurationError)
	}
	if cfg.CatastrophicMultiple.LessThanOrEqual(cfg.BreakevenMultiple) {
		return nil, fmt.Errorf("%w: catastrophic multiple %s must exceed breakeven multiple %s",
			ports.ErrConfigurationError, cfg.CatastrophicMultiple, cfg.BreakevenMultiple)
	}
	one := decimal.NewFromInt(1)
	if !cfg.ScaleInFraction.IsPositive() || cfg.ScaleInFraction.GreaterThan(one) {
		return nil, fmt.Errorf("%w: scale-in fraction must be in (0, 1], got %s", ports.ErrConfigurationError, cfg.ScaleInFraction)
	}
	if cfg.MaxScaleIns < 0 {
		return nil, fmt.Errorf("%w: max scale-ins cannot be negative", ports.ErrConfigurationError)
	}
	if !cfg.PortfolioRiskCeiling.IsPositive() || cfg.PortfolioRiskCeiling.GreaterThan(one) {
		return nil, fmt.Errorf("%w: portfolio risk ceiling must be in (0, 1], got %s", ports.ErrConfigurationError, cfg.PortfolioRiskCeiling)
	}
	if cfg.NoiseFloorPct.IsNegative() {
		return nil, fmt.Errorf("%w: noise floor cannot be negative", ports.ErrConfigurationError)
	}
	if !cfg.TickSize.IsPositive() {
		return nil, fmt.Errorf("%w: tick size must be positive", ports.ErrConfigurationError)
	}
	return &Evaluator{config: cfg, logger: logger}, nil
}

// Evaluate runs the rules in priority order and returns the first
// activation that is not a hold. When every rule holds, the combined hold
// names each rule's blocking condition.
func (e *Evaluator) Evaluate(ctx context.Context, pos *domain.PositionState, snap domain.PortfolioSnapshot) (*domain.RuleActivation, error) {
	if err := validateState(pos); err != nil {
		return nil, err
	}

	catastrophic, err := e.CatastrophicExit(pos)
	if err != nil {
		return nil, err
	}
	if catastrophic.Action != domain.ActionHold {
		return catastrophic, nil
	}

	breakeven, err := e.Breakeven(pos)
	if err != nil {
		return nil, err
	}
	if breakeven.Action != domain.ActionHold {
		return breakeven, nil
	}

	scaleIn, err := e.ScaleIn(pos, snap)
	if err != nil {
		return nil, err
	}
	if scaleIn.Action != domain.ActionHold {
		return scaleIn, nil
	}

	reasons := []string{
		"catastrophic-exit: " + catastrophic.Reason,
		"breakeven: " + breakeven.Reason,
		"scale-in: " + scaleIn.Reason,
	}
	return domain.Hold("evaluator", strings.Join(reasons, "; ")), nil
}

// validateState rejects malformed position state; every rule shares this.
func validateState(pos *domain.PositionState) error {
	if pos == nil {
		return fmt.Errorf("%w: position state is required", ports.ErrInvalidRequest)
	}
	if !pos.CurrentVolatility.IsPositive() {
		return fmt.Errorf("%w: current volatility missing or non-positive for %s", ports.ErrInvalidRequest, pos.Symbol)
	}
	if !pos.EntryPrice.IsPositive() || !pos.CurrentPrice.IsPositive() {
		return fmt.Errorf("%w: prices must be positive for %s", ports.ErrInvalidRequest, pos.Symbol)
	}
	if pos.Quantity < 1 {
		return fmt.Errorf("%w: position quantity must be at least 1, got %d", ports.ErrInvalidRequest, pos.Quantity)
	}
	return nil
}
