package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"volGuardBot/config"
	"volGuardBot/internal/domain"
	"volGuardBot/internal/indicators"
	"volGuardBot/internal/monitoring"
	"volGuardBot/internal/ports"
	"volGuardBot/internal/risk"
	"volGuardBot/internal/rules"
)

// RiskService owns the evaluation cycle for every managed position: it
// measures volatility, keeps protective stops adjusted, and applies the
// trade-management rules, dispatching the resulting actions to the order
// service. It does not decide what to trade; entries arrive through
// OpenPosition from the embedding system.
//
// For a single position the stages are strictly sequential (volatility,
// then rules, then adjuster) because each consumes the previous stage's
// output. Each PositionState is owned by its symbol's evaluation pass and
// never mutated concurrently; the only shared state is the read-only
// configuration and the single-writer risk aggregator.
type RiskService struct {
	cfg        *config.Config
	logger     ports.Logger
	market     ports.MarketDataProvider
	account    ports.AccountService
	orders     ports.OrderService
	audit      ports.AuditStore
	states     ports.StateStore
	atr        *indicators.ATR
	planner    *risk.Planner
	adjuster   *risk.Adjuster
	evaluator  *rules.Evaluator
	aggregator *risk.Aggregator

	mu        sync.Mutex // Protects the positions map itself, not the states
	positions map[string]*domain.PositionState
}

// NewRiskService creates the application service and its calculation
// components from the validated configuration.
func NewRiskService(
	cfg *config.Config,
	logger ports.Logger,
	market ports.MarketDataProvider,
	account ports.AccountService,
	orders ports.OrderService,
	audit ports.AuditStore,
	states ports.StateStore,
) (*RiskService, error) {
	if cfg == nil || logger == nil || market == nil || account == nil || orders == nil || audit == nil || states == nil {
		return nil, fmt.Errorf("missing required dependencies for RiskService")
	}

	atr, err := indicators.NewATR(indicators.ATRConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: cfg.VolatilityPeriod},
		Staleness:       cfg.Staleness,
		TickSize:        cfg.TickSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build volatility calculator: %w", err)
	}

	bounds := risk.Bounds{
		MinDistance: cfg.MinStopDistance,
		MaxDistance: cfg.MaxStopDistance,
		NoiseFloor:  cfg.NoiseFloorPct,
	}
	planner, err := risk.NewPlanner(risk.PlannerConfig{Bounds: bounds, TickSize: cfg.TickSize}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build planner: %w", err)
	}
	adjuster, err := risk.NewAdjuster(risk.AdjusterConfig{
		Bounds:          bounds,
		StopMultiplier:  cfg.StopMultiplier,
		RecalcThreshold: cfg.RecalcThreshold,
		TickSize:        cfg.TickSize,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build adjuster: %w", err)
	}
	evaluator, err := rules.NewEvaluator(rules.Config{
		BreakevenMultiple:    cfg.BreakevenMultiple,
		ScaleInMultiple:      cfg.ScaleInMultiple,
		ScaleInFraction:      cfg.ScaleInFraction,
		MaxScaleIns:          cfg.MaxScaleIns,
		CatastrophicMultiple: cfg.CatastrophicMultiple,
		PortfolioRiskCeiling: cfg.PortfolioRiskCeiling,
		NoiseFloorPct:        cfg.NoiseFloorPct,
		TickSize:             cfg.TickSize,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule evaluator: %w", err)
	}

	return &RiskService{
		cfg:        cfg,
		logger:     logger,
		market:     market,
		account:    account,
		orders:     orders,
		audit:      audit,
		states:     states,
		atr:        atr,
		planner:    planner,
		adjuster:   adjuster,
		evaluator:  evaluator,
		aggregator: risk.NewAggregator(),
		positions:  make(map[string]*domain.PositionState),
	}, nil
}

// Start restores persisted positions and runs the evaluation loop until
// the context is canceled or a shutdown signal arrives.
func (s *RiskService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting risk service", map[string]interface{}{"symbols": s.cfg.Symbols})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
		cancel()
	}()

	if err := s.restorePositions(ctx); err != nil {
		return fmt.Errorf("failed to restore persisted positions: %w", err)
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Risk service stopped")
			return nil
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// restorePositions loads snapshots for every configured symbol. A snapshot
// tagged ProtectionUnknown gets a protective stop re-applied before the
// position is trusted with anything else.
func (s *RiskService) restorePositions(ctx context.Context) error {
	for _, symbol := range s.cfg.Symbols {
		state, err := s.states.Load(ctx, symbol)
		if err != nil {
			return err
		}
		if state == nil {
			continue
		}
		if state.Protection == domain.ProtectionUnknown {
			s.logger.Warn(ctx, "Restored position with unknown protection, re-applying stop", map[string]interface{}{"symbol": symbol})
			if err := s.reprotect(ctx, state); err != nil {
				return fmt.Errorf("cannot re-protect restored position %s: %w", symbol, err)
			}
		}
		s.mu.Lock()
		s.positions[symbol] = state
		s.mu.Unlock()
		s.aggregator.SetPositionRisk(symbol, state.RiskAmount())
		s.logger.Info(ctx, "Position restored", map[string]interface{}{
			"symbol": symbol, "quantity": state.Quantity, "stop": state.CurrentStop.String(),
		})
	}
	return nil
}

// runCycle performs one evaluation pass over every managed symbol.
func (s *RiskService) runCycle(ctx context.Context) {
	balance, err := s.account.GetBalance(ctx)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to fetch account balance, skipping cycle")
		return
	}
	s.aggregator.SetBalance(balance)

	for _, symbol := range s.cfg.Symbols {
		s.mu.Lock()
		pos := s.positions[symbol]
		s.mu.Unlock()
		if pos == nil {
			continue
		}
		if err := s.evaluatePosition(ctx, pos); err != nil {
			s.logger.Error(ctx, err, "Evaluation pass failed", map[string]interface{}{"symbol": symbol})
		}
	}

	snap := s.aggregator.Snapshot()
	riskFloat, _ := snap.AggregateRisk.Float64()
	monitoring.UpdatePortfolio(riskFloat, snap.OpenPositions)
}

// evaluatePosition runs the full sequential pipeline for one open
// position: volatility measurement, rule evaluation, then stop adjustment.
func (s *RiskService) evaluatePosition(ctx context.Context, pos *domain.PositionState) error {
	price, err := s.market.GetPrice(ctx, pos.Symbol)
	if err != nil {
		return fmt.Errorf("price fetch failed: %w", err)
	}
	pos.CurrentPrice = price
	pos.UpdatedAt = time.Now()

	bars, _, vol, volErr := s.measureVolatility(ctx, pos.Symbol)
	if volErr == nil {
		pos.CurrentVolatility = vol.Magnitude
	}

	if pos.Protection == domain.ProtectionUnknown {
		if err := s.reprotect(ctx, pos); err != nil {
			return fmt.Errorf("cannot re-protect position: %w", err)
		}
	}

	// Rules need a current volatility; without one the stop in place keeps
	// protecting the position and we try again next cycle.
	if !pos.CurrentVolatility.IsPositive() {
		s.logger.Warn(ctx, "No usable volatility, holding position under existing stop", map[string]interface{}{"symbol": pos.Symbol})
		return nil
	}

	snap := s.aggregator.Snapshot()
	activation, err := s.evaluator.Evaluate(ctx, pos, snap)
	s.recordAudit(ctx, pos.Symbol, "rules",
		fmt.Sprintf("price=%s entry=%s vol=%s scaleIns=%d breakeven=%t", price, pos.EntryPrice, pos.CurrentVolatility, pos.ScaleInCount, pos.BreakevenSet),
		describeActivation(activation), err)
	if err != nil {
		monitoring.RecordEvaluation("rules", "error")
		return fmt.Errorf("rule evaluation failed: %w", err)
	}
	monitoring.RecordEvaluation("rules", "ok")
	monitoring.RecordRuleActivation(activation.Rule, string(activation.Action))

	if activation.Action != domain.ActionHold {
		return s.dispatch(ctx, pos, activation)
	}

	// No rule fired; see whether the stop itself should move.
	if volErr != nil {
		s.logger.Warn(ctx, "Skipping stop adjustment, volatility unavailable", map[string]interface{}{
			"symbol": pos.Symbol, "cause": volErr.Error(),
		})
		return nil
	}
	return s.adjustStop(ctx, pos, vol, bars)
}

// measureVolatility fetches bars and computes the ATR measure, emitting
// the audit record either way.
func (s *RiskService) measureVolatility(ctx context.Context, symbol string) ([]*domain.PriceBar, time.Time, domain.VolatilityMeasure, error) {
	needed := s.atr.RequiredDataPoints()
	if s.cfg.StructuralBars+1 > needed {
		needed = s.cfg.StructuralBars + 1
	}
	bars, err := s.market.GetBars(ctx, symbol, s.cfg.BarInterval, needed)
	if err != nil {
		s.recordAudit(ctx, symbol, "volatility", fmt.Sprintf("interval=%s limit=%d", s.cfg.BarInterval, needed), "", err)
		monitoring.RecordEvaluation("volatility", "fetch-error")
		return nil, time.Time{}, domain.VolatilityMeasure{}, err
	}

	asOf, err := s.market.GetServerTime(ctx)
	if err != nil {
		s.logger.Warn(ctx, "Server time unavailable, using local clock", map[string]interface{}{"symbol": symbol})
		asOf = time.Now()
	}

	vol, err := s.atr.Measure(ctx, bars, asOf)
	inputs := fmt.Sprintf("bars=%d period=%d asOf=%s", len(bars), s.cfg.VolatilityPeriod, asOf.Format(time.RFC3339))
	if err != nil {
		s.recordAudit(ctx, symbol, "volatility", inputs, "", err)
		monitoring.RecordEvaluation("volatility", "error")
		return bars, asOf, domain.VolatilityMeasure{}, err
	}
	s.recordAudit(ctx, symbol, "volatility", inputs, fmt.Sprintf("magnitude=%s", vol.Magnitude), nil)
	monitoring.RecordEvaluation("volatility", "ok")
	return bars, asOf, vol, nil
}

// adjustStop runs the stop adjuster with the structural candidates the
// current bars support and applies a changed stop.
func (s *RiskService) adjustStop(ctx context.Context, pos *domain.PositionState, vol domain.VolatilityMeasure, bars []*domain.PriceBar) error {
	var structural []domain.StopCandidate
	if c, ok := s.structuralCandidate(pos, bars); ok {
		structural = append(structural, c)
	}

	adj, err := s.adjuster.Adjust(ctx, pos, vol, structural)
	s.recordAudit(ctx, pos.Symbol, "adjuster",
		fmt.Sprintf("stop=%s stopVol=%s vol=%s candidates=%d", pos.CurrentStop, pos.StopVol, vol.Magnitude, len(structural)),
		describeAdjustment(adj), err)
	if err != nil {
		monitoring.RecordEvaluation("adjuster", "error")
		return fmt.Errorf("stop adjustment failed: %w", err)
	}
	monitoring.RecordEvaluation("adjuster", "ok")
	if !adj.Changed {
		s.logger.Debug(ctx, "Stop unchanged", map[string]interface{}{"symbol": pos.Symbol, "reason": adj.Reason})
		return nil
	}

	if err := s.orders.ReplaceStop(ctx, pos.Symbol, adj.NewStop); err != nil {
		return fmt.Errorf("failed to move stop: %w", err)
	}
	pos.CurrentStop = adj.NewStop
	pos.StopSource = adj.Winner.Source
	if adj.Winner.Source == domain.StopSourceVolatility {
		pos.StopVol = adj.Winner.Volatility
	}
	s.logger.Info(ctx, "Stop moved", map[string]interface{}{
		"symbol": pos.Symbol, "stop": adj.NewStop.String(), "reason": adj.Reason,
	})
	monitoring.RecordStopSource(string(adj.Winner.Source))
	return s.commit(ctx, pos)
}

// dispatch executes a non-hold rule activation against the order service
// and folds the confirmed effect back into the position state.
func (s *RiskService) dispatch(ctx context.Context, pos *domain.PositionState, act *domain.RuleActivation) error {
	switch act.Action {
	case domain.ActionClosePosition:
		if err := s.orders.CloseAll(ctx, pos.Symbol, act.CloseQuantity); err != nil {
			// The rule fires again next cycle; closing is idempotent in effect.
			return fmt.Errorf("catastrophic close failed: %w", err)
		}
		s.logger.Warn(ctx, "Position liquidated", map[string]interface{}{"symbol": pos.Symbol, "reason": act.Reason})
		s.mu.Lock()
		delete(s.positions, pos.Symbol)
		s.mu.Unlock()
		s.aggregator.RemovePosition(pos.Symbol)
		return s.states.Delete(ctx, pos.Symbol)

	case domain.ActionMoveStop:
		if err := s.orders.ReplaceStop(ctx, pos.Symbol, act.NewStop); err != nil {
			return fmt.Errorf("failed to move stop to breakeven: %w", err)
		}
		pos.CurrentStop = act.NewStop
		pos.StopSource = domain.StopSourceStructural
		pos.BreakevenSet = true
		s.logger.Info(ctx, "Breakeven stop placed", map[string]interface{}{"symbol": pos.Symbol, "stop": act.NewStop.String()})
		monitoring.RecordStopSource(string(domain.StopSourceStructural))
		return s.commit(ctx, pos)

	case domain.ActionAddPosition:
		if err := s.orders.SubmitAdd(ctx, pos.Symbol, act.AddQuantity); err != nil {
			return fmt.Errorf("failed to submit add-on: %w", err)
		}
		pos.ApplyFill(pos.CurrentPrice, act.AddQuantity)
		s.logger.Info(ctx, "Scaled into position", map[string]interface{}{
			"symbol": pos.Symbol, "added": act.AddQuantity, "quantity": pos.Quantity, "avgEntry": pos.EntryPrice.String(),
		})
		return s.commit(ctx, pos)
	}
	return nil
}

// commit persists the state and refreshes the aggregate risk figure.
func (s *RiskService) commit(ctx context.Context, pos *domain.PositionState) error {
	pos.Protection = domain.ProtectionActive
	pos.UpdatedAt = time.Now()
	s.aggregator.SetPositionRisk(pos.Symbol, pos.RiskAmount())
	return s.states.Save(ctx, pos)
}

// OpenPosition sizes and protects a new position for an entry decision
// made outside this service. The stop comes from the fail-safe chain, and
// no plan leaves without passing the planner's validation: a position is
// never opened unprotected.
func (s *RiskService) OpenPosition(ctx context.Context, symbol string, side domain.Side) (*domain.PositionPlan, error) {
	s.mu.Lock()
	existing := s.positions[symbol]
	s.mu.Unlock()
	if existing != nil {
		return nil, fmt.Errorf("%w: position already open for %s", ports.ErrInvalidRequest, symbol)
	}

	price, err := s.market.GetPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("price fetch failed: %w", err)
	}
	balance, err := s.account.GetBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("balance fetch failed: %w", err)
	}
	s.aggregator.SetBalance(balance)

	candidate, stopVol, err := s.protectiveStop(ctx, symbol, side, price)
	if err != nil {
		return nil, err
	}

	plan, err := s.planner.Plan(ctx, risk.PlanRequest{
		Symbol:            symbol,
		Side:              side,
		EntryPrice:        price,
		StopPrice:         candidate.Price,
		StopSource:        candidate.Source,
		AccountBalance:    balance,
		RiskFraction:      s.cfg.RiskFraction,
		TargetRewardRatio: s.cfg.TargetRewardRatio,
	})
	s.recordAudit(ctx, symbol, "planner",
		fmt.Sprintf("entry=%s stop=%s source=%s balance=%s", price, candidate.Price, candidate.Source, balance),
		describePlan(plan), err)
	if err != nil {
		monitoring.RecordEvaluation("planner", "error")
		return nil, fmt.Errorf("plan rejected: %w", err)
	}
	monitoring.RecordEvaluation("planner", "ok")
	monitoring.RecordStopSource(string(candidate.Source))

	// The ceiling applies at entry as well as at scale-in time.
	snap := s.aggregator.Snapshot()
	projected := snap.AggregateRisk.Add(plan.RiskAmount)
	ceiling := balance.Mul(s.cfg.PortfolioRiskCeiling)
	if projected.GreaterThan(ceiling) {
		monitoring.RecordEvaluation("planner", "limit")
		return nil, fmt.Errorf("%w: projected portfolio risk %s exceeds ceiling %s (snapshot v%d)",
			ports.ErrLimitExceeded, projected, ceiling, snap.Version)
	}

	if err := s.orders.SubmitPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("order submission failed: %w", err)
	}

	now := time.Now()
	pos := &domain.PositionState{
		Symbol:            symbol,
		Side:              side,
		EntryPrice:        plan.EntryPrice,
		CurrentStop:       plan.StopPrice,
		StopSource:        plan.StopSource,
		StopVol:           stopVol,
		CurrentPrice:      price,
		CurrentVolatility: stopVol,
		Quantity:          plan.Quantity,
		Protection:        domain.ProtectionActive,
		OpenedAt:          now,
		UpdatedAt:         now,
	}
	s.mu.Lock()
	s.positions[symbol] = pos
	s.mu.Unlock()
	if err := s.commit(ctx, pos); err != nil {
		return nil, fmt.Errorf("failed to persist new position: %w", err)
	}
	return plan, nil
}

// protectiveStop runs the fail-safe stop chain: volatility-based first,
// then the structural low of recent bars, then the fixed-percentage
// fallback, which always passes bounds by configuration. Each fallback
// step logs why the previous source was unusable.
func (s *RiskService) protectiveStop(ctx context.Context, symbol string, side domain.Side, price decimal.Decimal) (domain.StopCandidate, decimal.Decimal, error) {
	bars, _, vol, volErr := s.measureVolatility(ctx, symbol)

	if volErr == nil {
		offset := vol.Magnitude.Mul(s.cfg.StopMultiplier)
		var stop decimal.Decimal
		if side == domain.Short {
			stop = price.Add(offset)
		} else {
			stop = price.Sub(offset)
		}
		stop = stop.Div(s.cfg.TickSize).Round(0).Mul(s.cfg.TickSize)
		candidate := domain.StopCandidate{
			Price:       stop,
			Source:      domain.StopSourceVolatility,
			Volatility:  vol.Magnitude,
			Multiplier:  s.cfg.StopMultiplier,
			DistancePct: risk.StopDistance(price, stop),
		}
		_, boundsErr := s.plannerBounds().CheckStopDistance(price, stop)
		if boundsErr == nil {
			return candidate, vol.Magnitude, nil
		}
		s.logger.Warn(ctx, "Volatility stop outside bounds, falling back to structural low", map[string]interface{}{
			"symbol": symbol, "stop": stop.String(), "cause": boundsErr.Error(),
		})
	} else {
		s.logger.Warn(ctx, "Volatility unavailable, falling back to structural low", map[string]interface{}{
			"symbol": symbol, "cause": volErr.Error(),
		})
	}

	if len(bars) > 0 {
		pseudo := &domain.PositionState{Symbol: symbol, Side: side, EntryPrice: price, CurrentPrice: price}
		if c, ok := s.structuralCandidate(pseudo, bars); ok {
			if _, err := s.plannerBounds().CheckStopDistance(price, c.Price); err == nil {
				return c, decimal.Zero, nil
			}
			s.logger.Warn(ctx, "Structural stop outside bounds, falling back to fixed percentage", map[string]interface{}{
				"symbol": symbol, "stop": c.Price.String(),
			})
		}
	}

	one := decimal.NewFromInt(1)
	var stop decimal.Decimal
	if side == domain.Short {
		stop = price.Mul(one.Add(s.cfg.FallbackStopPct))
	} else {
		stop = price.Mul(one.Sub(s.cfg.FallbackStopPct))
	}
	stop = stop.Div(s.cfg.TickSize).Round(0).Mul(s.cfg.TickSize)
	return domain.StopCandidate{
		Price:       stop,
		Source:      domain.StopSourceFallback,
		DistancePct: risk.StopDistance(price, stop),
	}, decimal.Zero, nil
}

// reprotect applies the fail-safe chain to a position whose protection is
// unknown, replacing whatever stop may or may not be working.
func (s *RiskService) reprotect(ctx context.Context, pos *domain.PositionState) error {
	price := pos.CurrentPrice
	if !price.IsPositive() {
		p, err := s.market.GetPrice(ctx, pos.Symbol)
		if err != nil {
			return fmt.Errorf("price fetch failed: %w", err)
		}
		price = p
		pos.CurrentPrice = p
	}
	if !pos.EntryPrice.IsPositive() {
		// A corrupted snapshot may have lost the entry; anchor the bounds
		// to the only trustworthy price we have.
		pos.EntryPrice = price
	}
	if pos.Quantity < 1 {
		pos.Quantity = 1
	}

	candidate, stopVol, err := s.protectiveStop(ctx, pos.Symbol, pos.Side, price)
	if err != nil {
		return err
	}
	if err := s.orders.ReplaceStop(ctx, pos.Symbol, candidate.Price); err != nil {
		return fmt.Errorf("failed to place protective stop: %w", err)
	}
	pos.CurrentStop = candidate.Price
	pos.StopSource = candidate.Source
	pos.StopVol = stopVol
	s.logger.Info(ctx, "Protective stop re-applied", map[string]interface{}{
		"symbol": pos.Symbol, "stop": candidate.Price.String(), "source": string(candidate.Source),
	})
	monitoring.RecordStopSource(string(candidate.Source))
	return s.commit(ctx, pos)
}

// structuralCandidate derives a stop from the extreme of the recent bars:
// the lowest low for a long, the highest high for a short.
func (s *RiskService) structuralCandidate(pos *domain.PositionState, bars []*domain.PriceBar) (domain.StopCandidate, bool) {
	if len(bars) == 0 {
		return domain.StopCandidate{}, false
	}
	window := bars
	if len(window) > s.cfg.StructuralBars {
		window = window[len(window)-s.cfg.StructuralBars:]
	}
	extreme := window[0].Low
	if pos.Side == domain.Short {
		extreme = window[0].High
	}
	for _, b := range window[1:] {
		if pos.Side == domain.Short {
			if b.High.GreaterThan(extreme) {
				extreme = b.High
			}
		} else if b.Low.LessThan(extreme) {
			extreme = b.Low
		}
	}
	return domain.StopCandidate{
		Price:       extreme,
		Source:      domain.StopSourceStructural,
		DistancePct: risk.StopDistance(pos.EntryPrice, extreme),
	}, true
}

func (s *RiskService) plannerBounds() risk.Bounds {
	return risk.Bounds{
		MinDistance: s.cfg.MinStopDistance,
		MaxDistance: s.cfg.MaxStopDistance,
		NoiseFloor:  s.cfg.NoiseFloorPct,
	}
}

// recordAudit appends one evaluation record; audit failures are logged
// and never block a decision.
func (s *RiskService) recordAudit(ctx context.Context, symbol, component, inputs, outputs string, evalErr error) {
	rec := &domain.AuditRecord{
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
		Component: component,
		Inputs:    inputs,
		Outputs:   outputs,
	}
	if evalErr != nil {
		rec.Err = evalErr.Error()
	}
	if err := s.audit.Append(ctx, rec); err != nil {
		s.logger.Error(ctx, err, "Failed to append audit record", map[string]interface{}{"symbol": symbol, "component": component})
	}
}

func describeActivation(act *domain.RuleActivation) string {
	if act == nil {
		return ""
	}
	return fmt.Sprintf("action=%s rule=%s reason=%q", act.Action, act.Rule, act.Reason)
}

func describeAdjustment(adj *risk.Adjustment) string {
	if adj == nil {
		return ""
	}
	if !adj.Changed {
		return fmt.Sprintf("changed=false reason=%q", adj.Reason)
	}
	return fmt.Sprintf("changed=true newStop=%s reason=%q", adj.NewStop, adj.Reason)
}

func describePlan(plan *domain.PositionPlan) string {
	if plan == nil {
		return ""
	}
	return fmt.Sprintf("quantity=%d stop=%s target=%s ratio=%s", plan.Quantity, plan.StopPrice, plan.TargetPrice, plan.RewardRatio)
}
