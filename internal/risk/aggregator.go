package risk

import (
	"sync"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
)

// Aggregator tracks aggregate capital-at-risk across all open positions.
// It is a single-writer structure: only the control loop mutates it, while
// rule evaluations consume versioned snapshots. The version bumps on every
// mutation so a consumer can tell whether its snapshot predates a change.
type Aggregator struct {
	mu      sync.Mutex
	risks   map[string]decimal.Decimal
	balance decimal.Decimal
	version uint64
}

// NewAggregator creates an empty portfolio risk aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{risks: make(map[string]decimal.Decimal)}
}

// SetBalance records the current account balance used as the ceiling base.
func (a *Aggregator) SetBalance(balance decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = balance
	a.version++
}

// SetPositionRisk records the capital-at-risk for one open position,
// replacing any previous figure for that symbol.
func (a *Aggregator) SetPositionRisk(symbol string, risk decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.risks[symbol] = risk
	a.version++
}

// RemovePosition drops a closed position from the aggregate.
func (a *Aggregator) RemovePosition(symbol string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.risks, symbol)
	a.version++
}

// Snapshot returns an atomic view of the aggregate risk.
func (a *Aggregator) Snapshot() domain.PortfolioSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := decimal.Zero
	for _, r := range a.risks {
		total = total.Add(r)
	}
	return domain.PortfolioSnapshot{
		AggregateRisk:  total,
		AccountBalance: a.balance,
		OpenPositions:  len(a.risks),
		Version:        a.version,
	}
}
