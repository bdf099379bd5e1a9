package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the brokerage account totals shown in overview reports.
type Account struct {
	AccountNumber  string          `json:"account_number"`
	Currency       string          `json:"currency"`
	Cash           decimal.Decimal `json:"cash"`
	Equity         decimal.Decimal `json:"equity"`
	BuyingPower    decimal.Decimal `json:"buying_power"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
}

// MarketClock reports whether the market is currently open for trading.
type MarketClock struct {
	Timestamp time.Time `json:"timestamp"`
	IsOpen    bool      `json:"is_open"`
	NextOpen  time.Time `json:"next_open"`
	NextClose time.Time `json:"next_close"`
}

// Position is an open brokerage position for a tracked symbol.
type Position struct {
	Symbol        string          `json:"symbol"`
	Qty           decimal.Decimal `json:"qty"`
	AvgEntryPrice decimal.Decimal `json:"avg_entry_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	MarketValue   decimal.Decimal `json:"market_value"`
}

// OrderSide distinguishes entry and exit orders.
type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

// Order is a brokerage order, submitted or fetched.
type Order struct {
	ID             string          `json:"id"`
	ClientOrderID  string          `json:"client_order_id"`
	Symbol         string          `json:"symbol"`
	Side           OrderSide       `json:"side"`
	Qty            decimal.Decimal `json:"qty"`
	FilledQty      decimal.Decimal `json:"filled_qty"`
	LimitPrice     decimal.Decimal `json:"limit_price"`
	FilledAvgPrice decimal.Decimal `json:"filled_avg_price"`
	Status         string          `json:"status"`
	SubmittedAt    time.Time       `json:"submitted_at"`
}
