package recorder

import "BrickWatch/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBricks(_ string, _ []model.RenkoBrick) error { return nil }
func (n *NoopRecorder) RecordSignal(_ *SignalEvent) error                 { return nil }
func (n *NoopRecorder) Close() error                                      { return nil }
