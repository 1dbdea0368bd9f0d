package parsim

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// FrameRecorder persists per-frame telemetry to a SQLite database for
// offline analysis: frame number, pair count, saturation, and wall
// clock. Rows are buffered in memory and flushed in batched
// transactions so the per-frame cost stays at an append under a
// mutex; nothing touches the database on the frame hot path.
type FrameRecorder struct {
	mu    sync.Mutex
	db    *sql.DB
	rows  []frameRow
	batch int
}

type frameRow struct {
	at        time.Time
	frame     int64
	pairs     int32
	saturated bool
}

// recorderBatch is the buffered row count that triggers a flush.
const recorderBatch = 256

// NewFrameRecorder opens (or creates) the database at path and ensures
// the frames table exists. Use ":memory:" for tests.
//
// Parameters:
//   - path: SQLite database path.
//
// Returns:
//   - The recorder, or an error if the database cannot be opened.
func NewFrameRecorder(path string) (*FrameRecorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("parsim: open recorder db: %w", err)
	}
	// SQLite has one writer; a second pooled connection only buys
	// lock contention.
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS frames (
		frame INTEGER NOT NULL,
		pair_count INTEGER NOT NULL,
		saturated INTEGER NOT NULL,
		recorded_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("parsim: create frames table: %w", err)
	}
	return &FrameRecorder{db: db, batch: recorderBatch}, nil
}

// Attach subscribes the recorder to the engine's frame events.
func (r *FrameRecorder) Attach(bus *EventBus) {
	Subscribe(bus, r.onFrame)
}

// onFrame buffers one telemetry row. Called from whichever unit closed
// the frame, hence the mutex.
func (r *FrameRecorder) onFrame(ev FrameCompleted) {
	r.mu.Lock()
	r.rows = append(r.rows, frameRow{
		at:        time.Now(),
		frame:     ev.Frame,
		pairs:     ev.PairCount,
		saturated: ev.Saturated,
	})
	full := len(r.rows) >= r.batch
	r.mu.Unlock()
	if full {
		// Flush errors here have no caller to return to; the final
		// Flush/Close reports them.
		_ = r.Flush()
	}
}

// Flush writes all buffered rows in one transaction.
func (r *FrameRecorder) Flush() error {
	r.mu.Lock()
	rows := r.rows
	r.rows = nil
	r.mu.Unlock()
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("parsim: recorder begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO frames (frame, pair_count, saturated, recorded_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("parsim: recorder prepare: %w", err)
	}
	for _, row := range rows {
		sat := 0
		if row.saturated {
			sat = 1
		}
		if _, err := stmt.Exec(row.frame, row.pairs, sat, row.at.UnixNano()); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("parsim: recorder insert: %w", err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("parsim: recorder commit: %w", err)
	}
	return nil
}

// Close flushes any buffered rows and closes the database.
func (r *FrameRecorder) Close() error {
	flushErr := r.Flush()
	if err := r.db.Close(); err != nil {
		return err
	}
	return flushErr
}
