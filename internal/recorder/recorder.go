package recorder

import "BrickWatch/internal/model"

// SignalEvent records one trend decision for a tracked symbol.
type SignalEvent struct {
	Symbol   string
	Signal   model.Signal
	Trend    model.Trend
	Strength int
	Breakout int
	Price    string // decimal string, kept exact
}

// Recorder persists brick and signal history for offline analysis.
type Recorder interface {
	RecordBricks(symbol string, bricks []model.RenkoBrick) error
	RecordSignal(evt *SignalEvent) error
	Close() error
}
