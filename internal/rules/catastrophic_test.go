package rules

import (
	"testing"

	"volGuardBot/internal/domain"
)

func TestCatastrophicExit_ClosesFullQuantity(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.CurrentPrice = dec("91.00") // adverse 9 >= 3x3

	act, err := e.CatastrophicExit(pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionClosePosition {
		t.Fatalf("expected close-position, got %s (%s)", act.Action, act.Reason)
	}
	if act.CloseQuantity != 10 {
		t.Errorf("expected full quantity 10, got %d", act.CloseQuantity)
	}
}

func TestCatastrophicExit_ExactTriggerFires(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.CurrentPrice = dec("91.00") // adverse exactly 9 = 3x3

	act, err := e.CatastrophicExit(pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionClosePosition {
		t.Fatalf("trigger boundary is inclusive, got %s", act.Action)
	}
}

func TestCatastrophicExit_BelowTriggerHolds(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.CurrentPrice = dec("91.01") // adverse 8.99, just under

	act, err := e.CatastrophicExit(pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionHold {
		t.Fatalf("expected hold below trigger, got %s", act.Action)
	}
}

func TestCatastrophicExit_RepeatFiresUntilClosed(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.CurrentPrice = dec("90.00")

	// No one-shot guard: every evaluation of a still-open position fires.
	for i := 0; i < 3; i++ {
		act, err := e.CatastrophicExit(pos)
		if err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
		if act.Action != domain.ActionClosePosition {
			t.Fatalf("call %d: expected close-position, got %s", i, act.Action)
		}
	}
}

func TestCatastrophicExit_ShortSide(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.Side = domain.Short
	pos.CurrentStop = dec("106.00")
	pos.CurrentPrice = dec("109.00") // adverse 9 for a short

	act, err := e.CatastrophicExit(pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionClosePosition {
		t.Fatalf("expected close-position, got %s (%s)", act.Action, act.Reason)
	}
}

func TestCatastrophicExit_ProfitableHolds(t *testing.T) {
	e := newTestEvaluator(t)
	pos := longPosition()
	pos.CurrentPrice = dec("110.00")

	act, err := e.CatastrophicExit(pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if act.Action != domain.ActionHold {
		t.Fatalf("profitable position must hold, got %s", act.Action)
	}
}
