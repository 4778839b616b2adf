package domain

import "github.com/shopspring/decimal"

// PositionPlan is the accepted blueprint for one trade: a validated stop,
// an integer quantity sized against account risk, and a profit target.
// It is created once at entry-decision time and never mutated; re-sizing
// a position means producing a new plan.
type PositionPlan struct {
	Symbol       string
	Side         Side
	EntryPrice   decimal.Decimal
	StopPrice    decimal.Decimal
	TargetPrice  decimal.Decimal
	Quantity     int64           // Whole shares/contracts; always >= 1
	RiskAmount   decimal.Decimal // Capital at risk if the stop is hit
	RewardAmount decimal.Decimal // Capital gained if the target is hit
	RewardRatio  decimal.Decimal // Realized reward:risk after tick rounding
	StopSource   StopSource      // Provenance of the accepted stop
}
