package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"BrickWatch/internal/broker"
	"BrickWatch/internal/collector"
	"BrickWatch/internal/model"
	"BrickWatch/internal/notifier"
	"BrickWatch/internal/recorder"
	"BrickWatch/internal/store"

	"github.com/robfig/cron/v3"
)

// errTolerance stops the scheduler after this many consecutive task failures.
const errTolerance = 3

// Scheduler periodically scans open positions, feeds their trackers and
// reacts to the signals. It also answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Bars     collector.BarSource
	Trade    collector.TradeClient
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Cache    *store.Store

	TrackerCfg   broker.Config
	ChartsDir    string
	EnableOrders bool

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	brokers  map[string]*broker.PositionBroker
	clock    *model.MarketClock
	errCount int
}

// NewScheduler creates a scheduler; cancel is invoked on the bye command or
// when the error tolerance is exhausted.
func NewScheduler(ctx context.Context, cancel context.CancelFunc,
	bars collector.BarSource, trade collector.TradeClient,
	tn *notifier.TelegramNotifier, rec recorder.Recorder, cache *store.Store,
	trackerCfg broker.Config, chartsDir string, enableOrders bool) *Scheduler {
	// overlapping scan fires must not feed the same tracker concurrently
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Bars:         bars,
		Trade:        trade,
		Notifier:     tn,
		Recorder:     rec,
		Cache:        cache,
		TrackerCfg:   trackerCfg,
		ChartsDir:    chartsDir,
		EnableOrders: enableOrders,
		ctx:          ctx,
		cancel:       cancel,
		brokers:      make(map[string]*broker.PositionBroker),
	}
}

// RegisterAll registers the position-scan and market-clock tasks.
func (s *Scheduler) RegisterAll(scanCron, clockCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if _, err := s.Cron.AddFunc(clockCron, s.clockTask); err != nil {
		return fmt.Errorf("register clock task: %w", err)
	}
	return nil
}

// Start refreshes the market clock and positions once, then starts cron.
func (s *Scheduler) Start() {
	s.clockTask()
	if err := s.syncPositions(); err != nil {
		log.Printf("[ERROR] initial position sync: %v", err)
	}
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the scan task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() { s.scanTask() }

func (s *Scheduler) taskFailed(task string, err error) {
	s.mu.Lock()
	s.errCount++
	count := s.errCount
	s.mu.Unlock()

	log.Printf("[ERROR] %s (%d/%d): %v", task, count, errTolerance, err)
	if count >= errTolerance {
		s.trySend(fmt.Sprintf("Too many errors, last one: %v. Going quiet.", err))
		s.Stop()
		s.cancel()
	}
}

func (s *Scheduler) taskSucceeded() {
	s.mu.Lock()
	s.errCount = 0
	s.mu.Unlock()
}

func (s *Scheduler) clockTask() {
	clock, err := s.Trade.FetchMarketClock()
	if err != nil {
		s.taskFailed("fetch market clock", err)
		return
	}
	s.mu.Lock()
	s.clock = clock
	s.mu.Unlock()
	s.taskSucceeded()
}

// syncPositions aligns the broker set with the open positions at the
// brokerage: new positions get a tracker, closed ones are dropped and their
// snapshots removed.
func (s *Scheduler) syncPositions() error {
	positions, err := s.Trade.FetchOpenPositions()
	if err != nil {
		return fmt.Errorf("fetch positions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(positions))
	for _, pos := range positions {
		seen[pos.Symbol] = true
		if _, ok := s.brokers[pos.Symbol]; ok {
			continue
		}
		entryTime := s.entryTimeFor(pos.Symbol)
		s.brokers[pos.Symbol] = broker.New(
			pos.Symbol, pos.Qty, pos.AvgEntryPrice, entryTime, s.TrackerCfg, s.Cache)
		log.Printf("[INFO] tracking new position %s: %s x %s", pos.Symbol, pos.Qty, pos.AvgEntryPrice)
	}

	for symbol := range s.brokers {
		if !seen[symbol] {
			log.Printf("[INFO] position %s closed, dropping tracker", symbol)
			delete(s.brokers, symbol)
			if err := s.Cache.Remove(symbol, s.TrackerCfg.Interval, s.TrackerCfg.Capacity); err != nil {
				log.Printf("[WARN] remove snapshot for %s: %v", symbol, err)
			}
		}
	}
	return nil
}

// entryTimeFor finds when the position was opened by scanning filled buy
// orders, falling back to three weeks of history.
func (s *Scheduler) entryTimeFor(symbol string) time.Time {
	fallback := time.Now().UTC().Add(-21 * 24 * time.Hour)
	orders, err := s.Trade.FetchOrders("closed")
	if err != nil {
		log.Printf("[WARN] fetch orders for %s: %v", symbol, err)
		return fallback
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].SubmittedAt.Before(orders[j].SubmittedAt) })
	for i := len(orders) - 1; i >= 0; i-- {
		o := orders[i]
		if o.Symbol == symbol && o.Side == model.Buy && o.Status == "filled" {
			return o.SubmittedAt
		}
	}
	return fallback
}

func (s *Scheduler) scanTask() {
	s.mu.Lock()
	marketOpen := s.clock == nil || s.clock.IsOpen
	s.mu.Unlock()
	if !marketOpen {
		return
	}

	if err := s.syncPositions(); err != nil {
		s.taskFailed("sync positions", err)
		return
	}

	s.mu.Lock()
	brokers := make([]*broker.PositionBroker, 0, len(s.brokers))
	for _, b := range s.brokers {
		brokers = append(brokers, b)
	}
	s.mu.Unlock()

	var news []string
	for _, pb := range brokers {
		events, err := s.scanOne(pb)
		if err != nil {
			s.taskFailed("scan "+pb.Symbol, err)
			return
		}
		news = append(news, events...)
	}

	if len(news) > 0 {
		s.trySend(notifier.FormatSignals(news))
	}
	s.taskSucceeded()
}

// scanOne fetches fresh bars for one position, reacts to them and performs
// the exit when the broker says sell.
func (s *Scheduler) scanOne(pb *broker.PositionBroker) ([]string, error) {
	bars, err := s.Bars.FetchBars(pb.Symbol, pb.Since(), s.TrackerCfg.Interval)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}

	signals, fresh, err := pb.React(bars)
	if err != nil {
		return nil, err
	}

	if len(fresh) > 0 {
		if err := s.Recorder.RecordBricks(pb.Symbol, fresh); err != nil {
			log.Printf("[ERROR] record bricks for %s: %v", pb.Symbol, err)
		}
	}

	var news []string
	for _, sig := range signals {
		if sig == model.SignalHold {
			continue
		}
		rep := pb.Report()
		evt := &recorder.SignalEvent{
			Symbol:   pb.Symbol,
			Signal:   sig,
			Trend:    rep.Trend,
			Strength: rep.Strength,
			Breakout: rep.Breakout,
			Price:    rep.Price.String(),
		}
		if err := s.Recorder.RecordSignal(evt); err != nil {
			log.Printf("[ERROR] record signal for %s: %v", pb.Symbol, err)
		}
		news = append(news, fmt.Sprintf("%s > %s", pb.Symbol, sig))

		if sig == model.SignalSell {
			s.performExit(pb)
		}
	}
	return news, nil
}

func (s *Scheduler) performExit(pb *broker.PositionBroker) {
	s.trySend(notifier.FormatExit(pb, "trend reversal or stop-loss"))
	if !s.EnableOrders {
		log.Printf("[INFO] %s: order placement disabled, exit signal only", pb.Symbol)
		return
	}
	symbol, side, qty, limit := pb.ClosingOrder()
	order, err := s.Trade.SubmitOrder(symbol, side, qty, limit)
	if err != nil {
		log.Printf("[ERROR] submit exit order for %s: %v", symbol, err)
		s.trySend(fmt.Sprintf("Failed to submit exit order for %s: %v", symbol, err))
		return
	}
	log.Printf("[INFO] submitted exit order %s for %s: %s x %s", order.ID, symbol, qty, limit)
}

// HandleCommand reacts to chat commands; the returned text is sent back.
func (s *Scheduler) HandleCommand(command string, args []string) string {
	switch command {
	case "overview":
		acct, err := s.Trade.FetchAccount()
		if err != nil {
			return fmt.Sprintf("Cannot fetch account: %v", err)
		}
		s.mu.Lock()
		clock := s.clock
		brokers := make([]*broker.PositionBroker, 0, len(s.brokers))
		for _, b := range s.brokers {
			brokers = append(brokers, b)
		}
		s.mu.Unlock()
		sort.Slice(brokers, func(i, j int) bool { return brokers[i].Symbol < brokers[j].Symbol })
		return notifier.FormatOverview(clock, acct, brokers)

	case "chart":
		if len(args) == 0 {
			return "Which symbol? Try: chart AAPL"
		}
		symbol := strings.ToUpper(args[0])
		s.mu.Lock()
		pb, ok := s.brokers[symbol]
		s.mu.Unlock()
		if !ok {
			return fmt.Sprintf("Not tracking %s.", symbol)
		}
		path, err := pb.Chart(s.ChartsDir)
		if err != nil {
			return fmt.Sprintf("Cannot chart %s: %v", symbol, err)
		}
		if err := s.Notifier.SendDocument(path, pb.String()); err != nil {
			return fmt.Sprintf("Chart upload failed: %v", err)
		}
		return ""

	case "scan":
		go s.RunScanNow()
		return "Sure, scanning now."

	case "bye":
		s.cancel()
		return "Sure, I will do bye."

	default:
		return fmt.Sprintf("%s, really?!? Are you high?", command)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.ctx, text, 3); err != nil {
		log.Printf("[ERROR] telegram notify: %v", err)
	}
}
