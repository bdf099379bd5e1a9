package broker

import (
	"fmt"
	"log"
	"sync"
	"time"

	"BrickWatch/internal/chart"
	"BrickWatch/internal/model"
	"BrickWatch/internal/renko"
	"BrickWatch/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// stopLossRatio places the emergency exit limit relative to the entry price.
var stopLossRatio = decimal.RequireFromString("0.925")

// PositionBroker follows one open position with a Renko tracker and decides
// when to exit: either a confirmed downtrend or a stop-loss breach.
//
// The tracker is single-writer and mu enforces that: scan feeds and the
// report/chart reads from the command path all serialize on it.
type PositionBroker struct {
	Symbol     string
	Qty        decimal.Decimal
	EntryPrice decimal.Decimal
	EntryTime  time.Time

	mu        sync.Mutex
	stopLimit decimal.Decimal
	window    int
	tracker   *renko.Tracker
	cache     *store.Store
}

// Config carries the tracker parameters shared by all brokers.
type Config struct {
	Interval  string
	Capacity  int
	Window    int
	Evaluator string
}

// TrendReport is a point-in-time copy of the tracker's trend counters.
type TrendReport struct {
	Trend    model.Trend
	Strength int
	Breakout int
	Price    decimal.Decimal
}

// New creates a broker for an open position and resumes any cached tracker
// state for it, so a restarted process continues mid-trend.
func New(symbol string, qty, entryPrice decimal.Decimal, entryTime time.Time, cfg Config, cache *store.Store) *PositionBroker {
	b := &PositionBroker{
		Symbol:     symbol,
		Qty:        qty,
		EntryPrice: entryPrice,
		EntryTime:  entryTime,
		stopLimit:  entryPrice.Mul(stopLossRatio),
		window:     cfg.Window,
		tracker:    renko.NewTracker(symbol, cfg.Interval, cfg.Capacity, renko.NewEvaluator(cfg.Evaluator)),
		cache:      cache,
	}

	if cache != nil {
		snap, err := cache.Load(symbol, cfg.Interval, b.tracker.Capacity())
		if err == nil && snap != nil {
			if err := b.tracker.Restore(snap); err != nil {
				log.Printf("[WARN] %s: restore snapshot: %v", symbol, err)
			} else {
				log.Printf("[INFO] %s: resumed tracker with %d bricks, trend %s",
					symbol, len(snap.Bricks), b.tracker.Trend())
			}
		}
	}
	return b
}

// Since returns the time to fetch bars from: the newest buffered bar, or the
// position's entry time on a cold start.
func (b *PositionBroker) Since() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ts := b.tracker.LastTimestamp(); ts > 0 {
		return time.Unix(ts, 0).UTC()
	}
	return b.EntryTime
}

// React feeds fresh bars to the tracker, persists the snapshot, and returns
// the per-brick signals plus the bricks this feed emitted. A stop-loss
// breach or a downtrend forces a single SELL regardless of what the bricks
// said.
func (b *PositionBroker) React(bars []model.CandleStick) ([]model.Signal, []model.RenkoBrick, error) {
	if len(bars) == 0 {
		return nil, nil, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.tracker.Calibrated() {
		if err := b.tracker.Calibrate(bars, b.window); err != nil {
			return nil, nil, fmt.Errorf("%s: calibrate: %w", b.Symbol, err)
		}
		log.Printf("[INFO] %s: calibrated brick size %s from %d bars",
			b.Symbol, b.tracker.BrickSize(), len(bars))
	}

	before := len(b.tracker.Bricks())
	signals, err := b.tracker.Feed(bars)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: feed: %w", b.Symbol, err)
	}
	fresh := b.tracker.Bricks()[before:]

	if b.cache != nil {
		if err := b.cache.Save(b.tracker.Snapshot()); err != nil {
			log.Printf("[WARN] %s: persist tracker: %v", b.Symbol, err)
		}
	}

	price := bars[len(bars)-1].Close
	if price.LessThanOrEqual(b.stopLimit) || b.tracker.Trend() == model.TrendDown {
		return []model.Signal{model.SignalSell}, fresh, nil
	}
	return signals, fresh, nil
}

// Report copies the tracker's trend counters and latest price.
func (b *PositionBroker) Report() TrendReport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return TrendReport{
		Trend:    b.tracker.Trend(),
		Strength: b.tracker.Strength(),
		Breakout: b.tracker.Breakout(),
		Price:    b.tracker.CurrentPrice(),
	}
}

// Calibrated reports whether the tracker has a brick size yet.
func (b *PositionBroker) Calibrated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tracker.Calibrated()
}

// BrickCount returns how many bricks the tracker has emitted so far.
func (b *PositionBroker) BrickCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tracker.Bricks())
}

// Chart renders the tracker's brick history to an SVG in dir.
func (b *PositionBroker) Chart(dir string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return chart.Render(b.tracker, dir)
}

// MarketValue is the position's worth at the latest tracked price.
func (b *PositionBroker) MarketValue() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Qty.Mul(b.tracker.CurrentPrice())
}

// EntryCost is what the position cost to open.
func (b *PositionBroker) EntryCost() decimal.Decimal {
	return b.Qty.Mul(b.EntryPrice)
}

// ClosingOrder returns the parameters for a limit exit at the current price.
func (b *PositionBroker) ClosingOrder() (symbol string, side model.OrderSide, qty, limitPrice string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Symbol, model.Sell, b.Qty.String(), b.tracker.CurrentPrice().StringFixed(2)
}

// String renders the one-line position summary used in chat reports.
func (b *PositionBroker) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	price := b.tracker.CurrentPrice()
	value, _ := b.Qty.Mul(price).Float64()
	return fmt.Sprintf("%s %s: %s x %s $ = %s $ %s",
		b.tracker.Trend().Icon(), b.Symbol, b.Qty, price.StringFixed(2),
		humanize.CommafWithDigits(value, 2), b.trendNote())
}

// trendNote is called with mu held.
func (b *PositionBroker) trendNote() string {
	return fmt.Sprintf("(strength %d, breakout %d)", b.tracker.Strength(), b.tracker.Breakout())
}
