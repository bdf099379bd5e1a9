package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// CandleStick represents a single OHLCV price bar.
// All price fields use exact decimal arithmetic; binary floats accumulate
// boundary-crossing errors over long streams.
type CandleStick struct {
	Timestamp int64           `json:"timestamp"` // epoch seconds
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
	Trades    int64           `json:"trades"`
}

// Validate checks the bar for missing or inconsistent OHLC fields.
func (c CandleStick) Validate() error {
	if c.Timestamp <= 0 {
		return errors.New("missing timestamp")
	}
	if c.High.LessThan(c.Low) {
		return errors.New("high below low")
	}
	if c.Open.LessThan(c.Low) || c.Open.GreaterThan(c.High) {
		return errors.New("open outside high-low range")
	}
	if c.Close.LessThan(c.Low) || c.Close.GreaterThan(c.High) {
		return errors.New("close outside high-low range")
	}
	return nil
}

// Range returns the high-low spread of the bar.
func (c CandleStick) Range() decimal.Decimal {
	return c.High.Sub(c.Low)
}
