package renko

import (
	"testing"

	"BrickWatch/internal/model"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func bar(ts int64, open, high, low, close string) model.CandleStick {
	return model.CandleStick{
		Timestamp: ts,
		Open:      dec(open),
		High:      dec(high),
		Low:       dec(low),
		Close:     dec(close),
	}
}

func TestDigest_BoundaryCrossScenario(t *testing.T) {
	size := dec("1.00")
	state := seedState(dec("100.00"), 1000)

	// 100.5 stays inside the corridor
	bricks := digest(bar(1060, "100.1", "100.6", "100.0", "100.5"), &state, size)
	if len(bricks) != 0 {
		t.Fatalf("expected no bricks at 100.5, got %d", len(bricks))
	}

	// 101.2 crosses the 101.00 boundary
	bricks = digest(bar(1120, "100.5", "101.3", "100.4", "101.2"), &state, size)
	if len(bricks) != 1 {
		t.Fatalf("expected 1 brick at 101.2, got %d", len(bricks))
	}
	if !bricks[0].Close.Equal(dec("101.00")) || bricks[0].Direction != model.TrendUp {
		t.Errorf("expected UP brick closing at 101.00, got %s %s", bricks[0].Direction, bricks[0].Close)
	}

	// 102.3 crosses the next one
	bricks = digest(bar(1180, "101.2", "102.4", "101.1", "102.3"), &state, size)
	if len(bricks) != 1 {
		t.Fatalf("expected 1 brick at 102.3, got %d", len(bricks))
	}
	if !bricks[0].Open.Equal(dec("101.00")) || !bricks[0].Close.Equal(dec("102.00")) {
		t.Errorf("expected brick 101.00 -> 102.00, got %s -> %s", bricks[0].Open, bricks[0].Close)
	}

	// 101.9 crosses neither 103.00 nor 100.00
	bricks = digest(bar(1240, "102.3", "102.3", "101.8", "101.9"), &state, size)
	if len(bricks) != 0 {
		t.Fatalf("expected no bricks at 101.9, got %d", len(bricks))
	}

	if !state.High.Equal(dec("102.00")) || !state.Low.Equal(dec("101.00")) {
		t.Errorf("expected boundaries 102.00/101.00, got %s/%s", state.High, state.Low)
	}
}

func TestDigest_MultiBrickJump(t *testing.T) {
	size := dec("1.00")
	state := seedState(dec("100.00"), 1000)

	bricks := digest(bar(1060, "100.2", "104.8", "100.0", "104.6"), &state, size)
	if len(bricks) != 4 {
		t.Fatalf("expected 4 bricks for a 4.6 jump, got %d", len(bricks))
	}
	for i, b := range bricks {
		wantOpen := dec("100.00").Add(size.Mul(decimal.NewFromInt(int64(i))))
		if !b.Open.Equal(wantOpen) || !b.Close.Equal(wantOpen.Add(size)) {
			t.Errorf("brick %d: expected %s -> %s, got %s -> %s",
				i, wantOpen, wantOpen.Add(size), b.Open, b.Close)
		}
		if b.Direction != model.TrendUp {
			t.Errorf("brick %d: expected UP, got %s", i, b.Direction)
		}
	}
	// consecutive bricks chain open to close
	for i := 1; i < len(bricks); i++ {
		if !bricks[i].Open.Equal(bricks[i-1].Close) {
			t.Errorf("brick %d open %s does not chain from previous close %s",
				i, bricks[i].Open, bricks[i-1].Close)
		}
	}

	if !state.High.Equal(dec("104.00")) || !state.Low.Equal(dec("100.00")) {
		t.Errorf("expected boundaries 104.00/100.00, got %s/%s", state.High, state.Low)
	}
	// extremes consumed by the emission
	if !state.IntHigh.Equal(dec("104.6")) || !state.IntLow.Equal(dec("104.6")) {
		t.Errorf("expected intrabar extremes reset to close 104.6, got %s/%s", state.IntHigh, state.IntLow)
	}
}

func TestDigest_DownBricks(t *testing.T) {
	size := dec("1.00")
	state := seedState(dec("100.00"), 1000)

	bricks := digest(bar(1060, "99.8", "100.0", "97.2", "97.4"), &state, size)
	if len(bricks) != 2 {
		t.Fatalf("expected 2 DOWN bricks, got %d", len(bricks))
	}
	if !bricks[0].Open.Equal(dec("100.00")) || !bricks[0].Close.Equal(dec("99.00")) {
		t.Errorf("first brick: expected 100.00 -> 99.00, got %s -> %s", bricks[0].Open, bricks[0].Close)
	}
	if !bricks[1].Open.Equal(dec("99.00")) || !bricks[1].Close.Equal(dec("98.00")) {
		t.Errorf("second brick: expected 99.00 -> 98.00, got %s -> %s", bricks[1].Open, bricks[1].Close)
	}
	for i, b := range bricks {
		if b.Direction != model.TrendDown {
			t.Errorf("brick %d: expected DOWN, got %s", i, b.Direction)
		}
	}

	if !state.High.Equal(dec("100.00")) || !state.Low.Equal(dec("98.00")) {
		t.Errorf("expected boundaries 100.00/98.00, got %s/%s", state.High, state.Low)
	}
}

func TestDigest_AccumulatesIntrabarExtremes(t *testing.T) {
	size := dec("1.00")
	state := seedState(dec("100.00"), 1000)

	// wicks accumulate across quiet bars
	digest(bar(1060, "100.0", "100.9", "99.4", "100.2"), &state, size)
	digest(bar(1120, "100.2", "100.6", "99.8", "100.4"), &state, size)
	if !state.IntHigh.Equal(dec("100.9")) || !state.IntLow.Equal(dec("99.4")) {
		t.Fatalf("expected accumulated extremes 100.9/99.4, got %s/%s", state.IntHigh, state.IntLow)
	}

	// the emitted brick carries the accumulated wick
	bricks := digest(bar(1180, "100.4", "101.5", "100.3", "101.3"), &state, size)
	if len(bricks) != 1 {
		t.Fatalf("expected 1 brick, got %d", len(bricks))
	}
	if !bricks[0].High.Equal(dec("101.5")) || !bricks[0].Low.Equal(dec("99.4")) {
		t.Errorf("expected brick wick 101.5/99.4, got %s/%s", bricks[0].High, bricks[0].Low)
	}
	if !state.AbsHigh.Equal(dec("101.5")) || !state.AbsLow.Equal(dec("99.4")) {
		t.Errorf("expected running extremes 101.5/99.4, got %s/%s", state.AbsHigh, state.AbsLow)
	}
}
