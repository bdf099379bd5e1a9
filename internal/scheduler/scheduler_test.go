package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"BrickWatch/internal/broker"
	"BrickWatch/internal/collector"
	"BrickWatch/internal/model"
	"BrickWatch/internal/notifier"
	"BrickWatch/internal/recorder"
	"BrickWatch/internal/store"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testScheduler(t *testing.T, mock *collector.MockFetcher) (*Scheduler, context.Context) {
	t.Helper()
	cache, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cfg := broker.Config{Interval: "1m", Capacity: 50, Window: 4, Evaluator: "full-reset"}
	s := NewScheduler(ctx, cancel, mock, mock,
		notifier.NewTelegramNotifier("", "", ""), recorder.NewNoopRecorder(), cache,
		cfg, t.TempDir(), false)
	return s, ctx
}

func recentFlatBars(close string, count int) []model.CandleStick {
	c := dec(close)
	start := time.Now().Add(-time.Duration(count) * time.Minute)
	bars := make([]model.CandleStick, count)
	for i := range bars {
		bars[i] = model.CandleStick{
			Timestamp: start.Add(time.Duration(i) * time.Minute).Unix(),
			Open:      c,
			High:      c.Add(dec("1")),
			Low:       c.Sub(dec("1")),
			Close:     c,
		}
	}
	return bars
}

func TestSyncPositions_AddsAndDrops(t *testing.T) {
	mock := &collector.MockFetcher{
		Positions: []model.Position{
			{Symbol: "AAA", Qty: dec("10"), AvgEntryPrice: dec("100")},
			{Symbol: "BBB", Qty: dec("5"), AvgEntryPrice: dec("50")},
		},
	}
	s, _ := testScheduler(t, mock)

	if err := s.syncPositions(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(s.brokers) != 2 {
		t.Fatalf("expected 2 brokers, got %d", len(s.brokers))
	}

	mock.Positions = mock.Positions[:1]
	if err := s.syncPositions(); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if len(s.brokers) != 1 {
		t.Fatalf("expected closed position dropped, have %d brokers", len(s.brokers))
	}
	if _, ok := s.brokers["AAA"]; !ok {
		t.Error("expected AAA to survive the sync")
	}
}

func TestScanTask_QuietMarket(t *testing.T) {
	mock := &collector.MockFetcher{
		Positions: []model.Position{{Symbol: "AAA", Qty: dec("10"), AvgEntryPrice: dec("100")}},
		Bars:      recentFlatBars("100", 10),
		Clock:     model.MarketClock{IsOpen: true},
	}
	s, _ := testScheduler(t, mock)
	s.clockTask()
	s.scanTask()

	pb := s.brokers["AAA"]
	if pb == nil {
		t.Fatal("expected AAA broker after scan")
	}
	if !pb.Calibrated() {
		t.Error("expected tracker calibrated from the first scan")
	}
	if len(mock.Submitted) != 0 {
		t.Errorf("quiet market submitted %d orders", len(mock.Submitted))
	}
	if s.errCount != 0 {
		t.Errorf("expected clean scan, errCount=%d", s.errCount)
	}
}

func TestScanTask_SkipsClosedMarket(t *testing.T) {
	mock := &collector.MockFetcher{
		Positions: []model.Position{{Symbol: "AAA", Qty: dec("10"), AvgEntryPrice: dec("100")}},
		Clock:     model.MarketClock{IsOpen: false},
	}
	s, _ := testScheduler(t, mock)
	s.clockTask()
	s.scanTask()
	if len(s.brokers) != 0 {
		t.Errorf("closed market should not sync positions, have %d brokers", len(s.brokers))
	}
}

func TestHandleCommand_UnknownGetsSnark(t *testing.T) {
	s, _ := testScheduler(t, &collector.MockFetcher{})
	reply := s.HandleCommand("makemoney", nil)
	if !strings.Contains(reply, "really") {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestHandleCommand_ByeCancels(t *testing.T) {
	s, ctx := testScheduler(t, &collector.MockFetcher{})
	s.HandleCommand("bye", nil)
	select {
	case <-ctx.Done():
	default:
		t.Error("expected bye to cancel the run context")
	}
}
