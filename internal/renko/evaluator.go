package renko

import (
	"math"

	"BrickWatch/internal/model"
)

// EvalState is the trend evaluator's counters. Strength counts bricks
// confirming the current trend, Breakout counts consecutive contrary bricks.
type EvalState struct {
	Trend    model.Trend `json:"trend"`
	Strength int         `json:"strength"`
	Breakout int         `json:"breakout"`
}

// Evaluator consumes emitted bricks one at a time and decides whether the
// brick confirms the trend, is tolerated noise, or flips the trend.
type Evaluator interface {
	// Evaluate mutates the evaluator state and returns BUY or SELL on a
	// confirmed reversal, HOLD otherwise.
	Evaluate(brick model.RenkoBrick) model.Signal
	State() EvalState
	SetState(s EvalState)
	Name() string
}

// zone returns how many contrary bricks an established trend tolerates
// before a reversal is confirmed: floor(log3(x-1)) for x > 1, else 0.
// The stronger the trend, the more contrary bricks are absorbed as noise.
func zone(x int) int {
	if x > 1 {
		return int(math.Log(float64(x-1)) / math.Log(3))
	}
	return 0
}

func signalFor(t model.Trend) model.Signal {
	switch t {
	case model.TrendUp:
		return model.SignalBuy
	case model.TrendDown:
		return model.SignalSell
	}
	return model.SignalHold
}

// FullResetHysteresis is the reference policy: a confirming brick bumps
// strength and wipes any partial breakout; contrary bricks only count toward
// the breakout and never erode strength.
type FullResetHysteresis struct {
	s EvalState
}

func NewFullResetHysteresis() *FullResetHysteresis { return &FullResetHysteresis{} }

func (e *FullResetHysteresis) Name() string         { return "full-reset" }
func (e *FullResetHysteresis) State() EvalState     { return e.s }
func (e *FullResetHysteresis) SetState(s EvalState) { e.s = s }

func (e *FullResetHysteresis) Evaluate(brick model.RenkoBrick) model.Signal {
	if e.s.Trend == model.TrendNone {
		e.s.Trend = brick.Direction
	}

	if brick.Direction == e.s.Trend {
		e.s.Strength++
		e.s.Breakout = 0
	} else {
		e.s.Breakout++
	}

	if e.s.Breakout > zone(e.s.Strength) {
		e.s.Trend = e.s.Trend.Reverse()
		e.s.Strength = e.s.Breakout
		e.s.Breakout = 0
		return signalFor(e.s.Trend)
	}
	return model.SignalHold
}

// DecayHysteresis is the alternative policy: each contrary brick also
// decrements strength, floored at zero, so long trends give ground faster.
type DecayHysteresis struct {
	s EvalState
}

func NewDecayHysteresis() *DecayHysteresis { return &DecayHysteresis{} }

func (e *DecayHysteresis) Name() string         { return "decay" }
func (e *DecayHysteresis) State() EvalState     { return e.s }
func (e *DecayHysteresis) SetState(s EvalState) { e.s = s }

func (e *DecayHysteresis) Evaluate(brick model.RenkoBrick) model.Signal {
	if e.s.Trend == model.TrendNone {
		e.s.Trend = brick.Direction
	}

	if brick.Direction == e.s.Trend {
		e.s.Strength++
		e.s.Breakout = 0
	} else {
		if e.s.Strength > 0 {
			e.s.Strength--
		}
		e.s.Breakout++
	}

	if e.s.Breakout > zone(e.s.Strength) {
		e.s.Trend = e.s.Trend.Reverse()
		e.s.Strength = e.s.Breakout
		e.s.Breakout = 0
		return signalFor(e.s.Trend)
	}
	return model.SignalHold
}

// NewEvaluator returns the evaluator registered under the given policy name,
// defaulting to the full-reset policy.
func NewEvaluator(name string) Evaluator {
	if name == "decay" {
		return NewDecayHysteresis()
	}
	return NewFullResetHysteresis()
}
