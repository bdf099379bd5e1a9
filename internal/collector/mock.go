package collector

import (
	"time"

	"BrickWatch/internal/model"

	"github.com/shopspring/decimal"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars      []model.CandleStick
	Account   model.Account
	Clock     model.MarketClock
	Positions []model.Position
	Orders    []model.Order
	Submitted []model.Order
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ string, since time.Time, _ string) ([]model.CandleStick, error) {
	if m.Bars != nil {
		out := make([]model.CandleStick, 0, len(m.Bars))
		for _, b := range m.Bars {
			if b.Timestamp >= since.Unix() {
				out = append(out, b)
			}
		}
		return out, nil
	}
	return GenerateBars(decimal.NewFromInt(100), 30, since), nil
}

func (m *MockFetcher) FetchAccount() (*model.Account, error) {
	acct := m.Account
	return &acct, nil
}

func (m *MockFetcher) FetchMarketClock() (*model.MarketClock, error) {
	clock := m.Clock
	return &clock, nil
}

func (m *MockFetcher) FetchOpenPositions() ([]model.Position, error) {
	return append([]model.Position(nil), m.Positions...), nil
}

func (m *MockFetcher) FetchOrders(_ string) ([]model.Order, error) {
	return append([]model.Order(nil), m.Orders...), nil
}

func (m *MockFetcher) SubmitOrder(symbol string, side model.OrderSide, qty, limitPrice string) (*model.Order, error) {
	order := model.Order{
		ID:         "mock-order",
		Symbol:     symbol,
		Side:       side,
		Qty:        decimal.RequireFromString(qty),
		LimitPrice: decimal.RequireFromString(limitPrice),
		Status:     "accepted",
	}
	m.Submitted = append(m.Submitted, order)
	return &order, nil
}

func (m *MockFetcher) CancelOrder(_ string) error { return nil }

// GenerateBars builds a gentle price drift for development runs without
// brokerage credentials.
func GenerateBars(basePrice decimal.Decimal, count int, from time.Time) []model.CandleStick {
	bars := make([]model.CandleStick, count)
	step := basePrice.Div(decimal.NewFromInt(1000))
	for i := 0; i < count; i++ {
		p := basePrice.Add(step.Mul(decimal.NewFromInt(int64(i - count/2))))
		bars[i] = model.CandleStick{
			Timestamp: from.Add(time.Duration(i) * time.Minute).Unix(),
			Open:      p.Sub(step),
			High:      p.Add(step),
			Low:       p.Sub(step.Mul(decimal.NewFromInt(2))),
			Close:     p,
			Volume:    decimal.NewFromInt(1000000),
			Trades:    100,
		}
	}
	return bars
}
