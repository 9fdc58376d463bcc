// Package audit persists one row per tool invocation in a SQLite database
// and answers recent-call and per-tool summary queries.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/retailbridge/retailbridge/pkg/models"
)

const retentionInterval = time.Hour

// Logger writes and queries tool-invocation records. Safe for concurrent
// use; Close must be called to stop the retention sweep.
type Logger struct {
	db     *sql.DB
	maxAge time.Duration
	done   chan struct{}
	wg     sync.WaitGroup
}

// New opens the audit database, runs migration, and starts the retention
// sweep. A non-positive maxAge disables retention.
func New(dbPath string, maxAge time.Duration) (*Logger, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}

	l := &Logger{
		db:     db,
		maxAge: maxAge,
		done:   make(chan struct{}),
	}
	if maxAge > 0 {
		l.wg.Add(1)
		go l.retentionLoop()
	}
	return l, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS call_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id  TEXT NOT NULL,
		tool        TEXT NOT NULL,
		method      TEXT NOT NULL,
		path        TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		is_error    INTEGER NOT NULL,
		latency_ms  INTEGER NOT NULL,
		created_at  DATETIME NOT NULL
	)`)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_call_tool ON call_log(tool)`); err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_call_created ON call_log(created_at)`)
	return err
}

// Record inserts one invocation record.
func (l *Logger) Record(ctx context.Context, rec models.CallRecord) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO call_log
		(request_id, tool, method, path, status_code, is_error, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Tool, rec.Method, rec.Path,
		rec.StatusCode, boolToInt(rec.IsError), rec.LatencyMs, rec.CreatedAt,
	)
	return err
}

// Recent returns the newest records, capped at limit.
func (l *Logger) Recent(ctx context.Context, limit int) ([]models.CallRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT request_id, tool, method, path, status_code, is_error, latency_ms, created_at
		FROM call_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CallRecord
	for rows.Next() {
		var rec models.CallRecord
		var isErr int
		if err := rows.Scan(&rec.RequestID, &rec.Tool, &rec.Method, &rec.Path,
			&rec.StatusCode, &isErr, &rec.LatencyMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.IsError = isErr != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Summary aggregates call counts, error counts, and mean latency per tool.
func (l *Logger) Summary(ctx context.Context) ([]models.CallSummary, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT tool, COUNT(*), SUM(is_error), AVG(latency_ms)
		FROM call_log GROUP BY tool ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CallSummary
	for rows.Next() {
		var s models.CallSummary
		if err := rows.Scan(&s.Tool, &s.Calls, &s.Errors, &s.AvgLatencyMs); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (l *Logger) retentionLoop() {
	defer l.wg.Done()
	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-l.maxAge)
			_, _ = l.db.Exec(`DELETE FROM call_log WHERE created_at < ?`, cutoff)
		case <-l.done:
			return
		}
	}
}

// Close stops the retention sweep and closes the database.
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait()
	return l.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
