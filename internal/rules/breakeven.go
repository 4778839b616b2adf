package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
)

const ruleBreakeven = "breakeven"

// Breakeven fires exactly once per position: when favorable movement
// exceeds the configured multiple of current volatility and the breakeven
// flag is not yet set, it returns move-stop to the volume-weighted entry
// price. Once the flag is set every later call holds regardless of price;
// that idempotence is a hard invariant, not an optimization, and it lives
// on the explicit BreakevenSet field rather than being inferred from
// price history.
func (e *Evaluator) Breakeven(pos *domain.PositionState) (*domain.RuleActivation, error) {
	if err := validateState(pos); err != nil {
		return nil, err
	}

	if pos.BreakevenSet {
		return domain.Hold(ruleBreakeven, "breakeven stop already activated for this position"), nil
	}

	favorable := pos.FavorableMove()
	trigger := pos.CurrentVolatility.Mul(e.config.BreakevenMultiple)
	if favorable.LessThan(trigger) {
		return domain.Hold(ruleBreakeven,
			fmt.Sprintf("favorable move %s below trigger %s (%sx volatility %s)",
				favorable, trigger, e.config.BreakevenMultiple, pos.CurrentVolatility)), nil
	}

	newStop := e.breakevenPrice(pos)
	return &domain.RuleActivation{
		Action: domain.ActionMoveStop,
		Rule:   ruleBreakeven,
		Reason: fmt.Sprintf("favorable move %s reached %sx volatility %s, moving stop to entry %s",
			favorable, e.config.BreakevenMultiple, pos.CurrentVolatility, newStop),
		NewStop: newStop,
	}, nil
}

// breakevenPrice is the entry price shifted by the configured noise floor
// toward the loss side, so the resulting stop distance is exactly the
// noise floor and passes the shared bounds check. With a zero noise floor
// the stop lands on the entry itself.
func (e *Evaluator) breakevenPrice(pos *domain.PositionState) decimal.Decimal {
	one := decimal.NewFromInt(1)
	var price decimal.Decimal
	if pos.Side == domain.Short {
		price = pos.EntryPrice.Mul(one.Add(e.config.NoiseFloorPct))
	} else {
		price = pos.EntryPrice.Mul(one.Sub(e.config.NoiseFloorPct))
	}
	return price.Div(e.config.TickSize).Round(0).Mul(e.config.TickSize)
}
