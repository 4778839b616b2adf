package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
	"volGuardBot/internal/ports"
)

func newTestAdjuster(t *testing.T) *Adjuster {
	t.Helper()
	a, err := NewAdjuster(AdjusterConfig{
		Bounds:          testBounds(),
		StopMultiplier:  dec("2.0"),
		RecalcThreshold: dec("0.15"),
		TickSize:        dec("0.01"),
	}, nopLogger{})
	if err != nil {
		t.Fatalf("NewAdjuster failed: %v", err)
	}
	return a
}

func openLongPosition() *domain.PositionState {
	return &domain.PositionState{
		Symbol:       "ETHUSDT",
		Side:         domain.Long,
		EntryPrice:   dec("100.00"),
		CurrentStop:  dec("94.00"),
		StopSource:   domain.StopSourceVolatility,
		StopVol:      dec("3.00"),
		CurrentPrice: dec("100.00"),
		Quantity:     16,
		Protection:   domain.ProtectionActive,
		OpenedAt:     time.Now().Add(-time.Hour),
		UpdatedAt:    time.Now(),
	}
}

func measure(magnitude string) domain.VolatilityMeasure {
	return domain.VolatilityMeasure{
		Magnitude:  dec(magnitude),
		Period:     14,
		BarCount:   15,
		ComputedAt: time.Now(),
	}
}

func TestAdjuster_Adjust_BelowThresholdNoChange(t *testing.T) {
	a := newTestAdjuster(t)
	pos := openLongPosition()

	// 3.00 -> 3.30 is a 10% change, under the 15% threshold.
	adj, err := a.Adjust(context.Background(), pos, measure("3.30"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj.Changed {
		t.Fatalf("expected no change, got new stop %s", adj.NewStop)
	}
	if adj.Reason == "" {
		t.Error("a no-change decision must carry a reason")
	}
}

func TestAdjuster_Adjust_VolatilityDropTightensStop(t *testing.T) {
	a := newTestAdjuster(t)
	pos := openLongPosition()
	pos.CurrentPrice = dec("103.00")

	// 3.00 -> 1.50 is a 50% change; trailing stop 103 - 2*1.5 = 100.00,
	// exactly the zero noise floor from entry, and above the current 94.
	adj, err := a.Adjust(context.Background(), pos, measure("1.50"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !adj.Changed {
		t.Fatalf("expected a stop move, got: %s", adj.Reason)
	}
	if !adj.NewStop.Equal(dec("100.00")) {
		t.Errorf("expected new stop 100.00, got %s", adj.NewStop)
	}
	if adj.Winner.Source != domain.StopSourceVolatility {
		t.Errorf("expected volatility winner, got %q", adj.Winner.Source)
	}
}

func TestAdjuster_Adjust_NeverLoosensProtection(t *testing.T) {
	a := newTestAdjuster(t)
	pos := openLongPosition()

	// Volatility doubled; the recomputed stop 100 - 2*6 = 88 sits below the
	// current 94 and would widen risk, so it must be discarded.
	adj, err := a.Adjust(context.Background(), pos, measure("6.00"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj.Changed {
		t.Fatalf("stop must never loosen, got new stop %s", adj.NewStop)
	}
}

func TestAdjuster_Adjust_StructuralCandidateWins(t *testing.T) {
	a := newTestAdjuster(t)
	pos := openLongPosition()

	structural := []domain.StopCandidate{{
		Price:  dec("96.00"),
		Source: domain.StopSourceStructural,
	}}

	// Volatility unchanged: only the structural candidate is in play.
	adj, err := a.Adjust(context.Background(), pos, measure("3.00"), structural)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !adj.Changed {
		t.Fatalf("expected structural stop move, got: %s", adj.Reason)
	}
	if !adj.NewStop.Equal(dec("96.00")) {
		t.Errorf("expected new stop 96.00, got %s", adj.NewStop)
	}
	if adj.Winner.Source != domain.StopSourceStructural {
		t.Errorf("expected structural winner, got %q", adj.Winner.Source)
	}
}

func TestAdjuster_Adjust_MostProtectiveCandidateWins(t *testing.T) {
	a := newTestAdjuster(t)
	pos := openLongPosition()
	pos.CurrentPrice = dec("104.00")

	structural := []domain.StopCandidate{{
		Price:  dec("96.00"),
		Source: domain.StopSourceStructural,
	}}

	// Volatility candidate 104 - 2*1.5 = 101 sits above entry, distance 1%
	// still inside the envelope. For a long the higher stop wins over 96.
	adj, err := a.Adjust(context.Background(), pos, measure("1.50"), structural)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !adj.Changed {
		t.Fatalf("expected a stop move, got: %s", adj.Reason)
	}
	if !adj.NewStop.Equal(dec("101.00")) {
		t.Errorf("expected most protective stop 101.00, got %s", adj.NewStop)
	}
}

func TestAdjuster_Adjust_CandidateOutsideBoundsDropped(t *testing.T) {
	a := newTestAdjuster(t)
	pos := openLongPosition()
	pos.CurrentPrice = dec("95.00")

	// Recomputed stop 95 - 2*6 = 83, 17% from entry, outside the envelope.
	// With no other candidate the decision is an explicit no-change.
	adj, err := a.Adjust(context.Background(), pos, measure("6.00"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj.Changed {
		t.Fatalf("out-of-bounds candidate must be dropped, got stop %s", adj.NewStop)
	}
}

func TestAdjuster_Adjust_ShortSide(t *testing.T) {
	a := newTestAdjuster(t)
	pos := openLongPosition()
	pos.Side = domain.Short
	pos.CurrentStop = dec("106.00")
	pos.CurrentPrice = dec("97.00")

	// Short trailing stop 97 + 2*1.5 = 100.00, below the current 106.
	adj, err := a.Adjust(context.Background(), pos, measure("1.50"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !adj.Changed {
		t.Fatalf("expected a stop move, got: %s", adj.Reason)
	}
	if !adj.NewStop.Equal(dec("100.00")) {
		t.Errorf("expected new stop 100.00, got %s", adj.NewStop)
	}
}

func TestAdjuster_Adjust_MalformedInput(t *testing.T) {
	a := newTestAdjuster(t)

	if _, err := a.Adjust(context.Background(), nil, measure("3.00"), nil); !errors.Is(err, ports.ErrInvalidRequest) {
		t.Errorf("nil position: expected ErrInvalidRequest, got %v", err)
	}

	pos := openLongPosition()
	if _, err := a.Adjust(context.Background(), pos, measure("0"), nil); !errors.Is(err, ports.ErrInvalidRequest) {
		t.Errorf("zero volatility: expected ErrInvalidRequest, got %v", err)
	}

	pos.CurrentStop = decimal.Zero
	if _, err := a.Adjust(context.Background(), pos, measure("3.00"), nil); !errors.Is(err, ports.ErrInvalidRequest) {
		t.Errorf("missing stop: expected ErrInvalidRequest, got %v", err)
	}

	pos = openLongPosition()
	bad := []domain.StopCandidate{{Price: dec("96.00"), Source: domain.StopSource("astrology")}}
	if _, err := a.Adjust(context.Background(), pos, measure("3.00"), bad); !errors.Is(err, ports.ErrInvalidRequest) {
		t.Errorf("malformed candidate: expected ErrInvalidRequest, got %v", err)
	}
}
