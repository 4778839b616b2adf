package rules

import (
	"fmt"

	"volGuardBot/internal/domain"
)

const ruleCatastrophic = "catastrophic-exit"

// CatastrophicExit fires when adverse movement exceeds the configured
// multiple of current volatility, and returns close-position for the full
// quantity. It overrides every other rule and carries no one-shot guard:
// it may fire on every evaluation until the position is actually closed,
// which is safe because closing everything is idempotent in effect.
func (e *Evaluator) CatastrophicExit(pos *domain.PositionState) (*domain.RuleActivation, error) {
	if err := validateState(pos); err != nil {
		return nil, err
	}

	adverse := pos.AdverseMove()
	trigger := pos.CurrentVolatility.Mul(e.config.CatastrophicMultiple)
	if adverse.LessThan(trigger) {
		return domain.Hold(ruleCatastrophic,
			fmt.Sprintf("adverse move %s below trigger %s (%sx volatility %s)",
				adverse, trigger, e.config.CatastrophicMultiple, pos.CurrentVolatility)), nil
	}

	return &domain.RuleActivation{
		Action: domain.ActionClosePosition,
		Rule:   ruleCatastrophic,
		Reason: fmt.Sprintf("adverse move %s reached %sx volatility %s, liquidating %d units",
			adverse, e.config.CatastrophicMultiple, pos.CurrentVolatility, pos.Quantity),
		CloseQuantity: pos.Quantity,
	}, nil
}
