// Package ledger persists one immutable receipt per scheduling attempt.
// The store is append-only by construction: no update or delete statement
// exists anywhere in the package.
package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS receipts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts REAL NOT NULL,
  task TEXT NOT NULL,
  joule REAL NOT NULL,
  sec REAL NOT NULL,
  delta REAL NOT NULL,
  loss REAL NOT NULL,
  delta_hash TEXT NOT NULL,
  meta TEXT NOT NULL
);
`

// Receipt is the audit record of one admitted scheduling attempt.
type Receipt struct {
	ID            int64          `json:"id"`
	Timestamp     float64        `json:"ts"`
	Task          string         `json:"task"`
	JoulesCharged float64        `json:"joule"`
	DurationSec   float64        `json:"sec"`
	Delta         float64        `json:"delta"`
	Loss          float64        `json:"loss"`
	DeltaHash     string         `json:"delta_hash"`
	Meta          map[string]any `json:"meta"`
}

type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the receipt database at path.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	// sqlite serializes writers; one connection avoids SQLITE_BUSY races.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Add appends a receipt and returns its ledger-assigned id. The write is
// synchronous: when Add returns without error the record is durable.
func (l *Ledger) Add(r Receipt) (int64, error) {
	meta := r.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return 0, fmt.Errorf("failed to encode receipt meta: %w", err)
	}

	ts := r.Timestamp
	if ts == 0 {
		ts = float64(time.Now().UnixMilli()) / 1000.0
	}

	res, err := l.db.Exec(
		`INSERT INTO receipts (ts, task, joule, sec, delta, loss, delta_hash, meta)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ts, r.Task, r.JoulesCharged, r.DurationSec, r.Delta, r.Loss, r.DeltaHash, string(metaJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append receipt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read receipt id: %w", err)
	}

	return id, nil
}

// List returns the most recent receipts, newest first.
func (l *Ledger) List(limit int) ([]Receipt, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.Query(
		`SELECT id, ts, task, joule, sec, delta, loss, delta_hash, meta
		 FROM receipts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var receipts []Receipt
	for rows.Next() {
		var r Receipt
		var metaJSON string
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Task, &r.JoulesCharged,
			&r.DurationSec, &r.Delta, &r.Loss, &r.DeltaHash, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &r.Meta); err != nil {
			r.Meta = map[string]any{"_raw": metaJSON}
		}
		receipts = append(receipts, r)
	}

	return receipts, rows.Err()
}

// Count returns the total number of receipts.
func (l *Ledger) Count() (int64, error) {
	var n int64
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM receipts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count receipts: %w", err)
	}
	return n, nil
}
