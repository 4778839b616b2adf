package risk

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
	"volGuardBot/internal/ports"
)

// PlannerConfig holds configuration for the position planner.
type PlannerConfig struct {
	Bounds   Bounds
	TickSize decimal.Decimal
}

// Planner converts an entry decision into a fully validated PositionPlan.
// It is the single gate every stop passes through before a trade is
// allowed: it never assumes the caller pre-validated anything, and it
// fails with a typed error rather than returning a degraded plan.
type Planner struct {
	config PlannerConfig
	logger ports.Logger
}

// NewPlanner creates a new position planner.
func NewPlanner(cfg PlannerConfig, logger ports.Logger) (*Planner, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required for planner", ports.ErrConfigurationError)
	}
	if err := cfg.Bounds.Validate(); err != nil {
		return nil, err
	}
	if !cfg.TickSize.IsPositive() {
		return nil, fmt.Errorf("%w: tick size must be positive, got %s", ports.ErrConfigurationError, cfg.TickSize)
	}
	return &Planner{config: cfg, logger: logger}, nil
}

// PlanRequest carries the inputs for one plan calculation.
type PlanRequest struct {
	Symbol            string
	Side              domain.Side
	EntryPrice        decimal.Decimal
	StopPrice         decimal.Decimal
	StopSource        domain.StopSource
	AccountBalance    decimal.Decimal
	RiskFraction      decimal.Decimal
	TargetRewardRatio decimal.Decimal
}

// Plan validates the stop against the distance envelope, sizes the position
// against the account risk budget, and derives the profit target. The
// recorded reward ratio is the one realized by the tick-rounded target, not
// the requested one.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*domain.PositionPlan, error) {
	if err := p.validateRequest(req); err != nil {
		return nil, err
	}

	distance, err := p.config.Bounds.CheckStopDistance(req.EntryPrice, req.StopPrice)
	if err != nil {
		return nil, err
	}
	if distance.IsZero() {
		// A zero-distance stop is representable through the noise floor but
		// cannot size a position: the per-unit risk would be zero.
		return nil, fmt.Errorf("%w: stop equals entry, cannot size position", ports.ErrValueOutOfRange)
	}

	riskAmount := req.AccountBalance.Mul(req.RiskFraction)
	perUnitRisk := req.EntryPrice.Sub(req.StopPrice).Abs()
	quantity := riskAmount.Div(perUnitRisk).Floor().IntPart()
	if quantity < 1 {
		return nil, fmt.Errorf("%w: risk budget %s too small for stop distance %s%% at entry %s",
			ports.ErrValueOutOfRange, riskAmount, distance.Mul(decimal.NewFromInt(100)), req.EntryPrice)
	}

	target := p.targetPrice(req.Side, req.EntryPrice, perUnitRisk, req.TargetRewardRatio)

	qtyDec := decimal.NewFromInt(quantity)
	realizedRisk := perUnitRisk.Mul(qtyDec)
	realizedReward := target.Sub(req.EntryPrice).Abs().Mul(qtyDec)
	realizedRatio := realizedReward.Div(realizedRisk)

	plan := &domain.PositionPlan{
		Symbol:       req.Symbol,
		Side:         req.Side,
		EntryPrice:   req.EntryPrice,
		StopPrice:    req.StopPrice,
		TargetPrice:  target,
		Quantity:     quantity,
		RiskAmount:   realizedRisk,
		RewardAmount: realizedReward,
		RewardRatio:  realizedRatio,
		StopSource:   req.StopSource,
	}

	p.logger.Debug(ctx, "Position plan accepted", map[string]interface{}{
		"symbol":   req.Symbol,
		"entry":    req.EntryPrice.String(),
		"stop":     req.StopPrice.String(),
		"target":   target.String(),
		"quantity": quantity,
		"source":   string(req.StopSource),
		"distance": distance.String(),
	})
	return plan, nil
}

func (p *Planner) validateRequest(req PlanRequest) error {
	if req.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ports.ErrInvalidRequest)
	}
	if req.Side != domain.Long && req.Side != domain.Short {
		return fmt.Errorf("%w: unknown side %q", ports.ErrInvalidRequest, req.Side)
	}
	if !req.StopSource.IsValid() {
		return fmt.Errorf("%w: unknown stop source %q", ports.ErrInvalidRequest, req.StopSource)
	}
	if !req.EntryPrice.IsPositive() || !req.StopPrice.IsPositive() {
		return fmt.Errorf("%w: entry and stop prices must be positive", ports.ErrInvalidRequest)
	}
	if !req.AccountBalance.IsPositive() {
		return fmt.Errorf("%w: account balance must be positive", ports.ErrInvalidRequest)
	}
	one := decimal.NewFromInt(1)
	if !req.RiskFraction.IsPositive() || req.RiskFraction.GreaterThanOrEqual(one) {
		return fmt.Errorf("%w: risk fraction must be between 0.0 and 1.0 (exclusive)", ports.ErrInvalidRequest)
	}
	if !req.TargetRewardRatio.IsPositive() {
		return fmt.Errorf("%w: target reward ratio must be positive", ports.ErrInvalidRequest)
	}
	// The stop must sit on the loss side of the entry.
	if req.Side == domain.Long && req.StopPrice.GreaterThanOrEqual(req.EntryPrice) {
		return fmt.Errorf("%w: long stop %s must be below entry %s", ports.ErrInvalidRequest, req.StopPrice, req.EntryPrice)
	}
	if req.Side == domain.Short && req.StopPrice.LessThanOrEqual(req.EntryPrice) {
		return fmt.Errorf("%w: short stop %s must be above entry %s", ports.ErrInvalidRequest, req.StopPrice, req.EntryPrice)
	}
	return nil
}

func (p *Planner) targetPrice(side domain.Side, entry, perUnitRisk, ratio decimal.Decimal) decimal.Decimal {
	move := perUnitRisk.Mul(ratio)
	var target decimal.Decimal
	if side == domain.Short {
		target = entry.Sub(move)
	} else {
		target = entry.Add(move)
	}
	return roundToTick(target, p.config.TickSize)
}

// roundToTick rounds a price to the nearest multiple of tick.
func roundToTick(v, tick decimal.Decimal) decimal.Decimal {
	return v.Div(tick).Round(0).Mul(tick)
}
