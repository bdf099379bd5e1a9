package renko

import (
	"testing"

	"BrickWatch/internal/model"
)

func upBrick() model.RenkoBrick   { return model.RenkoBrick{Direction: model.TrendUp} }
func downBrick() model.RenkoBrick { return model.RenkoBrick{Direction: model.TrendDown} }

func TestZone_Thresholds(t *testing.T) {
	tests := []struct {
		strength int
		allowed  int
	}{
		{0, 0},
		{1, 0},
		{2, 0},
		{3, 0},
		{4, 1},
		{9, 1},
		{10, 2},
		{28, 3},
	}
	for _, tt := range tests {
		if got := zone(tt.strength); got != tt.allowed {
			t.Errorf("zone(%d): expected %d, got %d", tt.strength, tt.allowed, got)
		}
	}
}

func TestFullReset_FirstBrickSetsTrend(t *testing.T) {
	e := NewFullResetHysteresis()
	sig := e.Evaluate(upBrick())
	if sig != model.SignalHold {
		t.Errorf("first brick: expected HOLD, got %s", sig)
	}
	s := e.State()
	if s.Trend != model.TrendUp || s.Strength != 1 || s.Breakout != 0 {
		t.Errorf("expected UP/1/0, got %s/%d/%d", s.Trend, s.Strength, s.Breakout)
	}
}

func TestFullReset_ReversalHysteresis(t *testing.T) {
	e := NewFullResetHysteresis()
	e.SetState(EvalState{Trend: model.TrendUp, Strength: 9})

	// zone(9) = 1: one contrary brick is tolerated
	if sig := e.Evaluate(downBrick()); sig != model.SignalHold {
		t.Fatalf("first contrary brick: expected HOLD, got %s", sig)
	}
	if s := e.State(); s.Trend != model.TrendUp || s.Breakout != 1 {
		t.Fatalf("expected UP trend with breakout 1, got %s/%d", s.Trend, s.Breakout)
	}

	// the second one confirms the reversal
	if sig := e.Evaluate(downBrick()); sig != model.SignalSell {
		t.Fatalf("second contrary brick: expected SELL, got %s", sig)
	}
	s := e.State()
	if s.Trend != model.TrendDown || s.Strength != 2 || s.Breakout != 0 {
		t.Errorf("after flip: expected DOWN/2/0, got %s/%d/%d", s.Trend, s.Strength, s.Breakout)
	}
}

func TestFullReset_ConfirmationWipesBreakout(t *testing.T) {
	e := NewFullResetHysteresis()
	e.SetState(EvalState{Trend: model.TrendUp, Strength: 9})

	e.Evaluate(downBrick())
	if sig := e.Evaluate(upBrick()); sig != model.SignalHold {
		t.Fatalf("confirming brick: expected HOLD, got %s", sig)
	}
	s := e.State()
	if s.Strength != 10 || s.Breakout != 0 {
		t.Errorf("expected strength 10 and breakout wiped, got %d/%d", s.Strength, s.Breakout)
	}
}

func TestDecay_ContraryBricksErodeStrength(t *testing.T) {
	e := NewDecayHysteresis()
	e.SetState(EvalState{Trend: model.TrendUp, Strength: 10})

	// zone(10) = 2 would tolerate two contraries under full-reset, but decay
	// erodes strength so the second contrary brick already flips.
	if sig := e.Evaluate(downBrick()); sig != model.SignalHold {
		t.Fatalf("first contrary brick: expected HOLD, got %s", sig)
	}
	if s := e.State(); s.Strength != 9 {
		t.Fatalf("expected strength eroded to 9, got %d", s.Strength)
	}
	if sig := e.Evaluate(downBrick()); sig != model.SignalSell {
		t.Fatalf("second contrary brick: expected SELL, got %s", sig)
	}
	s := e.State()
	if s.Trend != model.TrendDown || s.Strength != 2 || s.Breakout != 0 {
		t.Errorf("after flip: expected DOWN/2/0, got %s/%d/%d", s.Trend, s.Strength, s.Breakout)
	}
}

func TestDecay_StrengthFlooredAtZero(t *testing.T) {
	e := NewDecayHysteresis()
	e.SetState(EvalState{Trend: model.TrendUp, Strength: 0})
	e.Evaluate(downBrick())
	if s := e.State(); s.Strength < 0 {
		t.Errorf("strength went negative: %d", s.Strength)
	}
}

func TestNewEvaluator_PolicyNames(t *testing.T) {
	if name := NewEvaluator("decay").Name(); name != "decay" {
		t.Errorf("expected decay evaluator, got %s", name)
	}
	if name := NewEvaluator("full-reset").Name(); name != "full-reset" {
		t.Errorf("expected full-reset evaluator, got %s", name)
	}
	if name := NewEvaluator("").Name(); name != "full-reset" {
		t.Errorf("expected full-reset default, got %s", name)
	}
}
