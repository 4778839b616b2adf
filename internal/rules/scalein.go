package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
	"volGuardBot/internal/ports"
)

const ruleScaleIn = "scale-in"

// ScaleIn proposes adding to a winning position. Three conditions must all
// hold: favorable movement above the configured volatility multiple, the
// scale-in count below its cap, and projected aggregate portfolio risk
// within the ceiling. Whichever condition fails first names itself in the
// hold reason. The proposed quantity is a configured fraction of the
// CURRENT quantity, so repeated scale-ins compound; the caller recomputes
// the volume-weighted entry after the fill and later evaluations use that
// as the new baseline.
func (e *Evaluator) ScaleIn(pos *domain.PositionState, snap domain.PortfolioSnapshot) (*domain.RuleActivation, error) {
	if err := validateState(pos); err != nil {
		return nil, err
	}
	if !pos.CurrentStop.IsPositive() {
		// Without a stop there is no per-unit risk figure to project.
		return nil, fmt.Errorf("%w: position %s has no active stop", ports.ErrInvalidRequest, pos.Symbol)
	}

	favorable := pos.FavorableMove()
	trigger := pos.CurrentVolatility.Mul(e.config.ScaleInMultiple)
	if favorable.LessThan(trigger) {
		return domain.Hold(ruleScaleIn,
			fmt.Sprintf("favorable move %s above average entry below trigger %s (%sx volatility %s)",
				favorable, trigger, e.config.ScaleInMultiple, pos.CurrentVolatility)), nil
	}

	if pos.ScaleInCount >= e.config.MaxScaleIns {
		return domain.Hold(ruleScaleIn,
			fmt.Sprintf("scale-in count %d already at maximum %d", pos.ScaleInCount, e.config.MaxScaleIns)), nil
	}

	addQty := decimal.NewFromInt(pos.Quantity).Mul(e.config.ScaleInFraction).Floor().IntPart()
	if addQty < 1 {
		return domain.Hold(ruleScaleIn,
			fmt.Sprintf("add-on of %s times quantity %d rounds to zero units", e.config.ScaleInFraction, pos.Quantity)), nil
	}

	addRisk := pos.CurrentPrice.Sub(pos.CurrentStop).Abs().Mul(decimal.NewFromInt(addQty))
	projected := snap.AggregateRisk.Add(addRisk)
	ceiling := snap.AccountBalance.Mul(e.config.PortfolioRiskCeiling)
	if projected.GreaterThan(ceiling) {
		return domain.Hold(ruleScaleIn,
			fmt.Sprintf("projected portfolio risk %s exceeds ceiling %s (snapshot v%d)",
				projected, ceiling, snap.Version)), nil
	}

	return &domain.RuleActivation{
		Action: domain.ActionAddPosition,
		Rule:   ruleScaleIn,
		Reason: fmt.Sprintf("favorable move %s reached %sx volatility %s, adding %d units (projected risk %s within ceiling %s)",
			favorable, e.config.ScaleInMultiple, pos.CurrentVolatility, addQty, projected, ceiling),
		AddQuantity: addQty,
	}, nil
}
