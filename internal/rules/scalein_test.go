package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
	"volGuardBot/internal/ports"
)

func TestScaleIn_AddsFractionOfCurrentQuantity(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.CurrentPrice = dec("104.50") // favorable 4.5 = 1.5x3

	act, err := e.ScaleIn(pos, roomySnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionAddPosition {
		t.Fatalf("expected add-position, got %s (%s)", act.Action, act.Reason)
	}
	if act.AddQuantity != 5 {
		t.Errorf("expected add of 5 units (half of 10), got %d", act.AddQuantity)
	}
}

func TestScaleIn_BelowTriggerHolds(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.CurrentPrice = dec("104.49")

	act, err := e.ScaleIn(pos, roomySnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionHold {
		t.Fatalf("expected hold, got %s", act.Action)
	}
	if !strings.Contains(act.Reason, "below trigger") {
		t.Errorf("hold reason %q must name the trigger condition", act.Reason)
	}
}

func TestScaleIn_CountCapHolds(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.CurrentPrice = dec("106.00")
	pos.ScaleInCount = 2 // at MaxScaleIns

	act, err := e.ScaleIn(pos, roomySnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionHold {
		t.Fatalf("expected hold at count cap, got %s", act.Action)
	}
	if !strings.Contains(act.Reason, "maximum") {
		t.Errorf("hold reason %q must name the count cap", act.Reason)
	}
}

func TestScaleIn_PortfolioCeilingHolds(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.CurrentPrice = dec("106.00")

	// Ceiling 0.06 x 10000 = 600; projected add risk is 5 x |106-94| = 60
	// on top of an aggregate already at 580.
	snap := roomySnapshot()
	snap.AggregateRisk = dec("580")

	act, err := e.ScaleIn(pos, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionHold {
		t.Fatalf("expected hold at portfolio ceiling, got %s", act.Action)
	}
	if !strings.Contains(act.Reason, "ceiling") {
		t.Errorf("hold reason %q must name the ceiling", act.Reason)
	}
}

func TestScaleIn_SubUnitAddHolds(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.CurrentPrice = dec("106.00")
	pos.Quantity = 1 // half a unit rounds to zero

	act, err := e.ScaleIn(pos, roomySnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionHold {
		t.Fatalf("expected hold for sub-unit add, got %s", act.Action)
	}
}

func TestScaleIn_MissingStopIsError(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.CurrentPrice = dec("106.00")
	pos.CurrentStop = decimal.Zero

	if _, err := e.ScaleIn(pos, roomySnapshot()); !errors.Is(err, ports.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest without a stop, got %v", err)
	}
}

func TestScaleIn_CompoundsAcrossFills(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.Quantity = 16
	pos.CurrentPrice = dec("106.00")

	act, err := e.ScaleIn(pos, roomySnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.AddQuantity != 8 {
		t.Fatalf("expected first add of 8, got %d", act.AddQuantity)
	}

	// After the fill the entry averages up and the quantity grows; the next
	// eligible add is half of the NEW quantity.
	pos.ApplyFill(dec("106.00"), act.AddQuantity)
	if pos.Quantity != 24 {
		t.Fatalf("expected quantity 24 after fill, got %d", pos.Quantity)
	}
	if pos.ScaleInCount != 1 {
		t.Fatalf("expected scale-in count 1 after fill, got %d", pos.ScaleInCount)
	}
	if !pos.EntryPrice.Equal(dec("102")) {
		t.Fatalf("expected volume-weighted entry 102, got %s", pos.EntryPrice)
	}

	// Favorable move is now measured from 102, so price must run further
	// before the rule re-arms.
	act, err = e.ScaleIn(pos, roomySnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionHold {
		t.Fatalf("expected hold from the new baseline, got %s (%s)", act.Action, act.Reason)
	}

	pos.CurrentPrice = dec("106.50") // favorable 4.5 from entry 102
	act, err = e.ScaleIn(pos, roomySnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionAddPosition {
		t.Fatalf("expected add-position, got %s (%s)", act.Action, act.Reason)
	}
	if act.AddQuantity != 12 {
		t.Errorf("expected compounding add of 12 (half of 24), got %d", act.AddQuantity)
	}
}
