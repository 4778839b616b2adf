package domain

import "github.com/shopspring/decimal"

// RuleAction is the closed set of decisions a trade-management rule can return.
type RuleAction string

const (
	ActionHold          RuleAction = "hold"
	ActionMoveStop      RuleAction = "move-stop"
	ActionAddPosition   RuleAction = "add-position"
	ActionClosePosition RuleAction = "close-position"
)

// RuleActivation is the outcome of one rule evaluation. A fresh value is
// produced on every call and retained only for audit logging. The payload
// fields are meaningful only for the action that uses them: NewStop for
// move-stop, AddQuantity for add-position, CloseQuantity for close-position.
type RuleActivation struct {
	Action        RuleAction
	Rule          string // Name of the rule that produced the activation
	Reason        string // Human-readable explanation, including hold reasons
	NewStop       decimal.Decimal
	AddQuantity   int64
	CloseQuantity int64
}

// Hold builds a hold activation with the given reason. "Condition not met"
// is always expressed this way, never as an error.
func Hold(rule, reason string) *RuleActivation {
	return &RuleActivation{Action: ActionHold, Rule: rule, Reason: reason}
}
