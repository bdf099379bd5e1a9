package renko

import (
	"fmt"

	"BrickWatch/internal/model"

	"github.com/shopspring/decimal"
)

// SchemaVersion guards snapshot evolution; snapshots written with a different
// version are treated as cache misses, never migrated in place.
const SchemaVersion = 1

// Snapshot is the serializable form of a tracker, written between runs so a
// restarted process resumes mid-trend instead of rebuilding bricks from
// scratch. Decimal fields marshal as strings, preserving precision exactly.
type Snapshot struct {
	SchemaVersion int                 `json:"schema_version"`
	Symbol        string              `json:"symbol"`
	Interval      string              `json:"interval"`
	Capacity      int                 `json:"capacity"`
	Evaluator     string              `json:"evaluator"`
	BrickSize     decimal.Decimal     `json:"brick_size"`
	State         State               `json:"renko_state"`
	Eval          EvalState           `json:"eval_state"`
	Bars          []model.CandleStick `json:"bars"`
	Bricks        []model.RenkoBrick  `json:"bricks"`
}

// Snapshot captures the tracker's full state for persistence.
func (t *Tracker) Snapshot() *Snapshot {
	return &Snapshot{
		SchemaVersion: SchemaVersion,
		Symbol:        t.symbol,
		Interval:      t.interval,
		Capacity:      t.data.capacity(),
		Evaluator:     t.eval.Name(),
		BrickSize:     t.brickSize,
		State:         t.state,
		Eval:          t.eval.State(),
		Bars:          t.data.slice(),
		Bricks:        t.Bricks(),
	}
}

// Restore replaces the tracker's state with a previously captured snapshot.
// The snapshot must match the tracker's identity key; a mismatch means the
// caller looked up the wrong file and should treat it as a cache miss.
func (t *Tracker) Restore(snap *Snapshot) error {
	if snap.SchemaVersion != SchemaVersion {
		return fmt.Errorf("snapshot schema v%d, want v%d", snap.SchemaVersion, SchemaVersion)
	}
	if snap.Symbol != t.symbol || snap.Interval != t.interval || snap.Capacity != t.data.capacity() {
		return fmt.Errorf("snapshot key %s-%s-%dp does not match tracker %s-%s-%dp",
			snap.Symbol, snap.Interval, snap.Capacity, t.symbol, t.interval, t.data.capacity())
	}

	ring := newBarRing(snap.Capacity)
	for _, bar := range snap.Bars {
		ring.push(bar)
	}

	t.data = ring
	t.brickSize = snap.BrickSize
	t.state = snap.State
	t.bricks = append([]model.RenkoBrick(nil), snap.Bricks...)
	t.eval = NewEvaluator(snap.Evaluator)
	t.eval.SetState(snap.Eval)
	t.calibrated = snap.BrickSize.IsPositive()
	return nil
}
