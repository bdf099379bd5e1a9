package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"BrickWatch/internal/renko"
)

// Store keeps one JSON snapshot file per tracked symbol in a cache directory,
// keyed by symbol, interval and buffer capacity. A missing or unreadable file
// is a normal cold start, never an error the caller has to handle.
type Store struct {
	dir string
}

// New creates the cache directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Key builds the snapshot filename for a tracker identity.
func Key(symbol, interval string, capacity int) string {
	return fmt.Sprintf("%s-%s-%dp.json", symbol, interval, capacity)
}

func (s *Store) path(symbol, interval string, capacity int) string {
	return filepath.Join(s.dir, Key(symbol, interval, capacity))
}

// Save writes a tracker snapshot. A failed write loses only this cycle's
// durability; the in-memory tracker stays valid, so callers log and continue.
func (s *Store) Save(snap *renko.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	path := s.path(snap.Symbol, snap.Interval, snap.Capacity)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot for a tracker identity. It returns (nil, nil) when
// the file is missing, corrupt, or keyed differently: all cache misses.
func (s *Store) Load(symbol, interval string, capacity int) (*renko.Snapshot, error) {
	path := s.path(symbol, interval, capacity)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		log.Printf("[WARN] read snapshot %s: %v, treating as cold start", path, err)
		return nil, nil
	}

	var snap renko.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("[WARN] corrupt snapshot %s: %v, treating as cold start", path, err)
		return nil, nil
	}
	if snap.SchemaVersion != renko.SchemaVersion ||
		snap.Symbol != symbol || snap.Interval != interval || snap.Capacity != capacity {
		log.Printf("[WARN] snapshot %s does not match key %s-%s-%dp, treating as cold start",
			path, symbol, interval, capacity)
		return nil, nil
	}
	return &snap, nil
}

// Remove deletes the snapshot for a closed position. Missing files are fine.
func (s *Store) Remove(symbol, interval string, capacity int) error {
	err := os.Remove(s.path(symbol, interval, capacity))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
