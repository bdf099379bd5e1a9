package renko

import (
	"errors"
	"fmt"
	"log"

	"BrickWatch/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotCalibrated is returned when Feed is called before a brick size exists.
	ErrNotCalibrated = errors.New("tracker is not calibrated")
	// ErrAlreadyCalibrated is returned on repeated calibration: resizing bricks
	// mid-stream would retroactively invalidate every brick already emitted.
	ErrAlreadyCalibrated = errors.New("tracker is already calibrated")
)

// MinimumTick floors the calibrated brick size; a zero size would make every
// boundary comparison meaningless.
var MinimumTick = decimal.New(1, -3) // 0.001

// brickPrecision is the decimal precision the brick size is quantized to.
const brickPrecision = 3

const (
	// DefaultCapacity covers a typical market day of minute bars, times 15.
	DefaultCapacity = 15 * 30
	// DefaultWindow is the calibration lookback in bars.
	DefaultWindow = 13
)

// Tracker follows one symbol's candlesticks, builds Renko bricks from them
// and issues trend signals. It is single-writer: the caller serializes feeds.
type Tracker struct {
	symbol   string
	interval string

	data      *barRing
	state     State
	brickSize decimal.Decimal
	bricks    []model.RenkoBrick
	eval      Evaluator

	calibrated bool
}

// NewTracker creates an empty, uncalibrated tracker for one symbol.
func NewTracker(symbol, interval string, capacity int, eval Evaluator) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if eval == nil {
		eval = NewFullResetHysteresis()
	}
	return &Tracker{
		symbol:   symbol,
		interval: interval,
		data:     newBarRing(capacity),
		eval:     eval,
	}
}

// Calibrate computes the brick size from a lookback window of bars, half the
// average high-low range floored at MinimumTick, and seeds the construction
// state from the first bar's close. One-shot: the size is fixed for the
// tracker's life.
func (t *Tracker) Calibrate(bars []model.CandleStick, window int) error {
	if t.calibrated {
		return ErrAlreadyCalibrated
	}
	if len(bars) == 0 {
		return errors.New("calibrate: no bars provided")
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if window > len(bars) {
		window = len(bars)
	}

	sum := decimal.Zero
	recent := bars[len(bars)-window:]
	for _, b := range recent {
		sum = sum.Add(b.Range())
	}
	half := sum.Div(decimal.NewFromInt(int64(window))).Div(decimal.NewFromInt(2))
	size := decimal.Max(half.Round(brickPrecision), MinimumTick)

	first := bars[0]
	t.brickSize = size
	t.state = seedState(first.Close, first.Timestamp)
	t.calibrated = true
	return nil
}

// CalibrateFixed installs a known brick size and seeds the state from an
// entry price, used when resuming a position whose size was decided at entry.
func (t *Tracker) CalibrateFixed(size, entryPrice decimal.Decimal, entryTime int64) error {
	if t.calibrated {
		return ErrAlreadyCalibrated
	}
	if !size.IsPositive() {
		return fmt.Errorf("calibrate: brick size must be positive, got %s", size)
	}
	t.brickSize = size
	t.state = seedState(entryPrice, entryTime)
	t.calibrated = true
	return nil
}

// Feed digests an ordered batch of candlesticks and returns one signal per
// emitted brick. Bars at or before the last seen timestamp are dropped, so
// overlapping fetch windows are harmless; malformed bars are skipped with a
// log line and the batch continues. An empty batch is a no-op.
func (t *Tracker) Feed(bars []model.CandleStick) ([]model.Signal, error) {
	if !t.calibrated {
		return nil, ErrNotCalibrated
	}

	signals := make([]model.Signal, 0)
	for _, bar := range bars {
		if err := bar.Validate(); err != nil {
			log.Printf("[WARN] %s: dropping malformed bar: %v", t.symbol, err)
			continue
		}
		if last, ok := t.data.last(); ok && bar.Timestamp <= last.Timestamp {
			continue
		}
		t.data.push(bar)

		for _, brick := range digest(bar, &t.state, t.brickSize) {
			t.bricks = append(t.bricks, brick)
			signals = append(signals, t.eval.Evaluate(brick))
		}
	}
	return signals, nil
}

func (t *Tracker) Symbol() string             { return t.symbol }
func (t *Tracker) Interval() string           { return t.interval }
func (t *Tracker) Capacity() int              { return t.data.capacity() }
func (t *Tracker) Calibrated() bool           { return t.calibrated }
func (t *Tracker) BrickSize() decimal.Decimal { return t.brickSize }
func (t *Tracker) State() State               { return t.state }
func (t *Tracker) Trend() model.Trend         { return t.eval.State().Trend }
func (t *Tracker) Strength() int              { return t.eval.State().Strength }
func (t *Tracker) Breakout() int              { return t.eval.State().Breakout }

// Bricks returns a copy of the emitted brick sequence.
func (t *Tracker) Bricks() []model.RenkoBrick {
	out := make([]model.RenkoBrick, len(t.bricks))
	copy(out, t.bricks)
	return out
}

// Bars returns a copy of the buffered candlesticks, oldest first.
func (t *Tracker) Bars() []model.CandleStick { return t.data.slice() }

// LastTimestamp returns the newest buffered bar's timestamp, or 0 when empty.
func (t *Tracker) LastTimestamp() int64 {
	if last, ok := t.data.last(); ok {
		return last.Timestamp
	}
	return 0
}

// CurrentPrice returns the newest buffered close, or zero when empty.
func (t *Tracker) CurrentPrice() decimal.Decimal {
	if last, ok := t.data.last(); ok {
		return last.Close
	}
	return decimal.Zero
}
