package model

import "github.com/shopspring/decimal"

// Trend is the directional bias inferred from the brick sequence.
type Trend int

const (
	TrendNone Trend = iota
	TrendUp
	TrendDown
)

// Reverse returns the opposite trend. TrendNone reverses to itself.
func (t Trend) Reverse() Trend {
	switch t {
	case TrendUp:
		return TrendDown
	case TrendDown:
		return TrendUp
	}
	return TrendNone
}

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "UP"
	case TrendDown:
		return "DOWN"
	}
	return "NONE"
}

// Icon returns the one-rune chart/report marker for the trend.
func (t Trend) Icon() string {
	switch t {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	}
	return "_"
}

// Signal is the market action derived from a confirmed trend reversal.
type Signal int

const (
	SignalHold Signal = iota
	SignalBuy
	SignalSell
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	}
	return "HOLD"
}

// RenkoBrick is one fixed-height block of price movement, emitted only when
// the close crosses a brick boundary. Bricks are append-only; the ordered
// sequence is the complete trend record.
type RenkoBrick struct {
	Timestamp int64           `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Direction Trend           `json:"direction"`
}
