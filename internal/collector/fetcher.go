package collector

import (
	"time"

	"BrickWatch/internal/model"
)

// BarSource supplies candlestick bars for a symbol since a given time, at a
// given interval. Implementations must return bars in ascending timestamp
// order with pagination already flattened.
type BarSource interface {
	FetchBars(symbol string, since time.Time, timeframe string) ([]model.CandleStick, error)
	Name() string
}

// TradeClient covers the account-side brokerage calls the bot needs: status
// for reports, positions to track, and order placement for exits.
type TradeClient interface {
	FetchAccount() (*model.Account, error)
	FetchMarketClock() (*model.MarketClock, error)
	FetchOpenPositions() ([]model.Position, error)
	FetchOrders(status string) ([]model.Order, error)
	SubmitOrder(symbol string, side model.OrderSide, qty, limitPrice string) (*model.Order, error)
	CancelOrder(orderID string) error
}
