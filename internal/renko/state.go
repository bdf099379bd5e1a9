package renko

import "github.com/shopspring/decimal"

// State is the mutable brick-construction accumulator between bricks.
// High and Low are the two boundary prices the next close must cross for a
// brick to be emitted; they are not required to sit exactly one brick apart.
// IntHigh/IntLow accumulate intrabar extremes since the last emitted brick,
// AbsHigh/AbsLow track running extremes for charting.
type State struct {
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	IntHigh   decimal.Decimal `json:"int_high"`
	IntLow    decimal.Decimal `json:"int_low"`
	AbsHigh   decimal.Decimal `json:"abs_high"`
	AbsLow    decimal.Decimal `json:"abs_low"`
	LastIndex int64           `json:"last_index"` // timestamp of the last boundary transition
}

// seedState initializes boundaries and extremes from a single price.
func seedState(price decimal.Decimal, ts int64) State {
	return State{
		High:      price,
		Low:       price,
		IntHigh:   price,
		IntLow:    price,
		AbsHigh:   price,
		AbsLow:    price,
		LastIndex: ts,
	}
}
