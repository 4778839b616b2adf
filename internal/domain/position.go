package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionState is the mutable state of one open position. It is owned
// exclusively by the evaluation cycle for that position: one goroutine
// reads and writes it, and it is updated only after a price tick or
// after a rule action is confirmed executed. It is destroyed when the
// position closes.
type PositionState struct {
	Symbol      string
	Side        Side
	EntryPrice  decimal.Decimal // Volume-weighted average entry after scale-ins
	CurrentStop decimal.Decimal // Active protective stop price
	StopSource  StopSource      // Provenance of the active stop
	StopVol     decimal.Decimal // Volatility magnitude the active stop was derived from

	CurrentPrice      decimal.Decimal
	CurrentVolatility decimal.Decimal

	Quantity     int64
	ScaleInCount int  // Number of add-ons executed so far
	BreakevenSet bool // One-shot flag: breakeven rule has fired

	Protection ProtectionStatus // Zero value Unknown forces worst-case handling
	OpenedAt   time.Time
	UpdatedAt  time.Time
}

// FavorableMove returns how far price has moved in the position's favor,
// in price units. Negative when the position is under water.
func (p *PositionState) FavorableMove() decimal.Decimal {
	if p.Side == Short {
		return p.EntryPrice.Sub(p.CurrentPrice)
	}
	return p.CurrentPrice.Sub(p.EntryPrice)
}

// AdverseMove returns how far price has moved against the position,
// in price units. Negative when the position is in profit.
func (p *PositionState) AdverseMove() decimal.Decimal {
	return p.FavorableMove().Neg()
}

// RiskAmount returns the capital at risk if the current stop is hit.
func (p *PositionState) RiskAmount() decimal.Decimal {
	perUnit := p.EntryPrice.Sub(p.CurrentStop).Abs()
	return perUnit.Mul(decimal.NewFromInt(p.Quantity))
}

// ApplyFill folds an executed add-on into the state: quantity grows and
// the entry price becomes the volume-weighted average of the old and new
// fills. Subsequent rule evaluations use the new average as baseline.
func (p *PositionState) ApplyFill(fillPrice decimal.Decimal, fillQty int64) {
	oldQty := decimal.NewFromInt(p.Quantity)
	addQty := decimal.NewFromInt(fillQty)
	totalQty := oldQty.Add(addQty)
	if totalQty.IsZero() {
		return
	}
	weighted := p.EntryPrice.Mul(oldQty).Add(fillPrice.Mul(addQty))
	p.EntryPrice = weighted.Div(totalQty)
	p.Quantity += fillQty
	p.ScaleInCount++
	p.UpdatedAt = time.Now()
}
