package paperbroker

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
	"volGuardBot/internal/ports"
)

// Broker implements ports.OrderService without touching an exchange: it
// records every intended order and acknowledges it immediately. The real
// order-submission service lives outside this engine; this adapter keeps
// the binary runnable and the dispatch path exercised end to end.
type Broker struct {
	logger ports.Logger

	mu     sync.Mutex
	orders []Order
}

// Order is one recorded instruction.
type Order struct {
	Kind     string // "plan", "replace-stop", "add", "close"
	Symbol   string
	Quantity int64
	Price    decimal.Decimal
}

// New creates a paper broker.
func New(logger ports.Logger) (*Broker, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for paper broker")
	}
	return &Broker{logger: logger}, nil
}

// SubmitPlan records the entry order and its protective stop.
func (b *Broker) SubmitPlan(ctx context.Context, plan *domain.PositionPlan) error {
	b.record(Order{Kind: "plan", Symbol: plan.Symbol, Quantity: plan.Quantity, Price: plan.EntryPrice})
	b.logger.Info(ctx, "Paper order: entry with protective stop", map[string]interface{}{
		"symbol": plan.Symbol, "quantity": plan.Quantity, "entry": plan.EntryPrice.String(),
		"stop": plan.StopPrice.String(), "target": plan.TargetPrice.String(),
	})
	return nil
}

// ReplaceStop records a stop move.
func (b *Broker) ReplaceStop(ctx context.Context, symbol string, newStop decimal.Decimal) error {
	b.record(Order{Kind: "replace-stop", Symbol: symbol, Price: newStop})
	b.logger.Info(ctx, "Paper order: replace stop", map[string]interface{}{"symbol": symbol, "stop": newStop.String()})
	return nil
}

// SubmitAdd records an add-on order.
func (b *Broker) SubmitAdd(ctx context.Context, symbol string, quantity int64) error {
	b.record(Order{Kind: "add", Symbol: symbol, Quantity: quantity})
	b.logger.Info(ctx, "Paper order: add to position", map[string]interface{}{"symbol": symbol, "quantity": quantity})
	return nil
}

// CloseAll records a full liquidation.
func (b *Broker) CloseAll(ctx context.Context, symbol string, quantity int64) error {
	b.record(Order{Kind: "close", Symbol: symbol, Quantity: quantity})
	b.logger.Warn(ctx, "Paper order: close position", map[string]interface{}{"symbol": symbol, "quantity": quantity})
	return nil
}

func (b *Broker) record(o Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = append(b.orders, o)
}

// Orders returns a copy of everything recorded so far.
func (b *Broker) Orders() []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Order, len(b.orders))
	copy(out, b.orders)
	return out
}
