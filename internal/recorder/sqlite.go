package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"BrickWatch/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists brick and signal history to a SQLite database.
// Prices are stored as TEXT so decimal precision survives round trips.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bricks (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol    TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			open      TEXT,
			high      TEXT,
			low       TEXT,
			close     TEXT,
			direction TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bricks_symbol_ts ON bricks(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS signal_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol    TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			signal    TEXT,
			trend     TEXT,
			strength  INTEGER,
			breakout  INTEGER,
			price     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol_ts ON signal_events(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordBricks(symbol string, bricks []model.RenkoBrick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range bricks {
		_, err := r.db.Exec(`INSERT INTO bricks
			(symbol, timestamp, open, high, low, close, direction)
			VALUES (?,?,?,?,?,?,?)`,
			symbol, b.Timestamp,
			b.Open.String(), b.High.String(), b.Low.String(), b.Close.String(),
			b.Direction.String(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(evt *SignalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO signal_events
		(symbol, timestamp, signal, trend, strength, breakout, price)
		VALUES (?,?,?,?,?,?,?)`,
		evt.Symbol, time.Now().Unix(), evt.Signal.String(), evt.Trend.String(),
		evt.Strength, evt.Breakout, evt.Price,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
