package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
)

// OrderService is the boundary to the order-submission collaborator.
// The core hands it accepted plans and rule activations; it owns order
// lifecycle, fills, and exchange acknowledgements. The tracking service
// behind it is the sole writer of executed fills back into PositionState.
type OrderService interface {
	// SubmitPlan places the entry order and its protective stop.
	SubmitPlan(ctx context.Context, plan *domain.PositionPlan) error
	// ReplaceStop moves the protective stop for an open position.
	ReplaceStop(ctx context.Context, symbol string, newStop decimal.Decimal) error
	// SubmitAdd places an add-on order for an open position.
	SubmitAdd(ctx context.Context, symbol string, quantity int64) error
	// CloseAll liquidates the full open quantity for a symbol.
	CloseAll(ctx context.Context, symbol string, quantity int64) error
}
