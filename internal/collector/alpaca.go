package collector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"BrickWatch/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlpacaFetcher implements BarSource and TradeClient against the Alpaca
// trade and market-data APIs.
type AlpacaFetcher struct {
	Client  *http.Client
	BaseURL string // trade API, e.g. https://paper-api.alpaca.markets
	DataURL string // market data API
	Feed    string // data feed, iex for the free tier

	apiKey string
	secret string

	// TimeframeMap translates bot intervals to Alpaca timeframes.
	TimeframeMap map[string]string
}

// NewAlpacaFetcher creates a fetcher with optional proxy support.
func NewAlpacaFetcher(apiKey, secret, baseURL, proxyURL string) *AlpacaFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = "https://paper-api.alpaca.markets"
	}
	return &AlpacaFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: baseURL,
		DataURL: "https://data.alpaca.markets",
		Feed:    "iex",
		apiKey:  apiKey,
		secret:  secret,
		TimeframeMap: map[string]string{
			"1m":  "1Min",
			"5m":  "5Min",
			"30m": "30Min",
			"1h":  "1Hour",
			"1d":  "1Day",
		},
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) timeframe(interval string) string {
	if tf, ok := f.TimeframeMap[interval]; ok {
		return tf
	}
	return interval
}

func (f *AlpacaFetcher) do(method, rawURL string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("APCA-API-KEY-ID", f.apiKey)
	req.Header.Set("APCA-API-SECRET-KEY", f.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpaca request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alpaca read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("alpaca: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// alpacaBar is one bar in the market-data response.
type alpacaBar struct {
	Time   time.Time       `json:"t"`
	Open   decimal.Decimal `json:"o"`
	High   decimal.Decimal `json:"h"`
	Low    decimal.Decimal `json:"l"`
	Close  decimal.Decimal `json:"c"`
	Volume decimal.Decimal `json:"v"`
	Trades int64           `json:"n"`
}

type alpacaBarsResponse struct {
	Bars          map[string][]alpacaBar `json:"bars"`
	NextPageToken *string                `json:"next_page_token"`
}

// FetchBars pulls all pages of bars for a symbol since the given time and
// flattens them into one ascending slice.
func (f *AlpacaFetcher) FetchBars(symbol string, since time.Time, timeframe string) ([]model.CandleStick, error) {
	query := url.Values{}
	query.Set("symbols", symbol)
	query.Set("timeframe", f.timeframe(timeframe))
	query.Set("start", since.UTC().Format(time.RFC3339))
	query.Set("feed", f.Feed)
	query.Set("limit", "10000")

	var bars []model.CandleStick
	for {
		u := fmt.Sprintf("%s/v2/stocks/bars?%s", f.DataURL, query.Encode())
		body, err := f.do(http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch bars %s: %w", symbol, err)
		}

		var page alpacaBarsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode bars %s: %w", symbol, err)
		}
		for _, b := range page.Bars[symbol] {
			bars = append(bars, model.CandleStick{
				Timestamp: b.Time.Unix(),
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    b.Volume,
				Trades:    b.Trades,
			})
		}

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		query.Set("page_token", *page.NextPageToken)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	return bars, nil
}

func (f *AlpacaFetcher) FetchAccount() (*model.Account, error) {
	body, err := f.do(http.MethodGet, f.BaseURL+"/v2/account", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	var acct model.Account
	if err := json.Unmarshal(body, &acct); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &acct, nil
}

func (f *AlpacaFetcher) FetchMarketClock() (*model.MarketClock, error) {
	body, err := f.do(http.MethodGet, f.BaseURL+"/v2/clock", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch market clock: %w", err)
	}
	var clock model.MarketClock
	if err := json.Unmarshal(body, &clock); err != nil {
		return nil, fmt.Errorf("decode market clock: %w", err)
	}
	return &clock, nil
}

func (f *AlpacaFetcher) FetchOpenPositions() ([]model.Position, error) {
	body, err := f.do(http.MethodGet, f.BaseURL+"/v2/positions", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}
	var positions []model.Position
	if err := json.Unmarshal(body, &positions); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	return positions, nil
}

func (f *AlpacaFetcher) FetchOrders(status string) ([]model.Order, error) {
	query := url.Values{}
	query.Set("status", status)
	query.Set("limit", "500")
	query.Set("direction", "asc")

	body, err := f.do(http.MethodGet, f.BaseURL+"/v2/orders?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	var orders []model.Order
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// SubmitOrder places a day limit order with a fresh client order id.
func (f *AlpacaFetcher) SubmitOrder(symbol string, side model.OrderSide, qty, limitPrice string) (*model.Order, error) {
	payload := map[string]string{
		"client_order_id": uuid.NewString(),
		"symbol":          symbol,
		"side":            string(side),
		"qty":             qty,
		"type":            "limit",
		"limit_price":     limitPrice,
		"time_in_force":   "day",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	respBody, err := f.do(http.MethodPost, f.BaseURL+"/v2/orders", body)
	if err != nil {
		return nil, fmt.Errorf("submit order %s %s: %w", side, symbol, err)
	}
	var order model.Order
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

func (f *AlpacaFetcher) CancelOrder(orderID string) error {
	_, err := f.do(http.MethodDelete, f.BaseURL+"/v2/orders/"+orderID, nil)
	if err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}
