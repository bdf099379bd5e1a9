package renko

import (
	"BrickWatch/internal/model"

	"github.com/shopspring/decimal"
)

// digest applies one candlestick to the construction state and returns the
// bricks it produced, zero or more. A fast move across several boundaries
// emits one brick per boundary, in direction order, so the evaluator sees
// each of them individually.
//
// Intrabar extremes reset to the triggering bar's close after an emission:
// the accumulated wick has been consumed by the emitted bricks.
func digest(point model.CandleStick, state *State, brickSize decimal.Decimal) []model.RenkoBrick {
	state.IntHigh = decimal.Max(state.IntHigh, point.High)
	state.IntLow = decimal.Min(state.IntLow, point.Low)
	state.AbsHigh = decimal.Max(state.AbsHigh, state.IntHigh)
	state.AbsLow = decimal.Min(state.AbsLow, state.IntLow)

	switch {
	case point.Close.GreaterThanOrEqual(state.High.Add(brickSize)):
		steps, _ := point.Close.Sub(state.High).QuoRem(brickSize, 0)
		n := steps.IntPart()

		bricks := make([]model.RenkoBrick, 0, n)
		for i := int64(0); i < n; i++ {
			open := state.High.Add(brickSize.Mul(decimal.NewFromInt(i)))
			bricks = append(bricks, model.RenkoBrick{
				Timestamp: state.LastIndex,
				Open:      open,
				High:      state.IntHigh,
				Low:       state.IntLow,
				Close:     open.Add(brickSize),
				Direction: model.TrendUp,
			})
		}

		state.Low = state.High
		state.High = state.High.Add(brickSize.Mul(steps))
		state.LastIndex = point.Timestamp
		state.IntHigh = point.Close
		state.IntLow = point.Close
		return bricks

	case point.Close.LessThanOrEqual(state.Low.Sub(brickSize)):
		steps, _ := state.Low.Sub(point.Close).QuoRem(brickSize, 0)
		n := steps.IntPart()

		bricks := make([]model.RenkoBrick, 0, n)
		for i := int64(0); i < n; i++ {
			open := state.Low.Sub(brickSize.Mul(decimal.NewFromInt(i)))
			bricks = append(bricks, model.RenkoBrick{
				Timestamp: state.LastIndex,
				Open:      open,
				High:      state.IntHigh,
				Low:       state.IntLow,
				Close:     open.Sub(brickSize),
				Direction: model.TrendDown,
			})
		}

		state.High = state.Low
		state.Low = state.Low.Sub(brickSize.Mul(steps))
		state.LastIndex = point.Timestamp
		state.IntHigh = point.Close
		state.IntLow = point.Close
		return bricks
	}

	return nil
}
