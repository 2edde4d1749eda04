// Package logbook records completed occurrences in SQLite so they survive
// plan reloads.
package logbook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"careplan/internal/model"
)

// ErrNotFound is returned when no entry exists for a schedule id.
var ErrNotFound = errors.New("logbook: entry not found")

// Entry is the latest record for one scheduled occurrence.
type Entry struct {
	ScheduleID string         `json:"scheduleId"`
	SourceID   string         `json:"sourceId,omitempty"`
	Kind       model.ItemKind `json:"kind,omitempty"`
	Completed  bool           `json:"completed"`
	Comment    string         `json:"comment,omitempty"`
	RecordedAt time.Time      `json:"recordedAt"`
}

// timeLayout is fixed width so recorded_at sorts and compares as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS entries (
		schedule_id TEXT PRIMARY KEY,
		source_id   TEXT NOT NULL DEFAULT '',
		kind        TEXT NOT NULL DEFAULT '',
		completed   INTEGER NOT NULL DEFAULT 0,
		comment     TEXT NOT NULL DEFAULT '',
		recorded_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_recorded_at ON entries(recorded_at)`,
}

// Logbook is a SQLite-backed store of entries.
type Logbook struct {
	db *sql.DB
}

// Open opens the logbook at path, creating it and running migrations as
// needed. WAL mode lets the server read while the CLI writes.
func Open(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating logbook directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening logbook: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("logbook migration %d: %w", i, err)
		}
	}
	return &Logbook{db: db}, nil
}

// Close releases the database.
func (l *Logbook) Close() error {
	return l.db.Close()
}

// Record stores e, replacing any earlier entry for the same schedule id.
// A zero RecordedAt is stamped with the current time.
func (l *Logbook) Record(ctx context.Context, e Entry) error {
	if e.ScheduleID == "" {
		return errors.New("logbook: schedule id is required")
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}

	query := `INSERT INTO entries (schedule_id, source_id, kind, completed, comment, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(schedule_id) DO UPDATE SET
			source_id = excluded.source_id,
			kind = excluded.kind,
			completed = excluded.completed,
			comment = excluded.comment,
			recorded_at = excluded.recorded_at`
	_, err := l.db.ExecContext(ctx, query,
		e.ScheduleID,
		e.SourceID,
		string(e.Kind),
		e.Completed,
		e.Comment,
		e.RecordedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording entry %s: %w", e.ScheduleID, err)
	}
	return nil
}

// Get returns the entry for scheduleID or ErrNotFound.
func (l *Logbook) Get(ctx context.Context, scheduleID string) (Entry, error) {
	row := l.db.QueryRowContext(ctx, `SELECT schedule_id, source_id, kind, completed, comment, recorded_at
		FROM entries WHERE schedule_id = ?`, scheduleID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

// List returns entries recorded at or after since, oldest first.
func (l *Logbook) List(ctx context.Context, since time.Time) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT schedule_id, source_id, kind, completed, comment, recorded_at
		FROM entries WHERE recorded_at >= ? ORDER BY recorded_at, schedule_id`,
		since.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CompletedSet returns the schedule ids currently marked completed.
func (l *Logbook) CompletedSet(ctx context.Context) (map[string]bool, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT schedule_id FROM entries WHERE completed = 1`)
	if err != nil {
		return nil, fmt.Errorf("listing completed entries: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning completed entry: %w", err)
		}
		done[id] = true
	}
	return done, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e          Entry
		kind       string
		recordedAt string
	)
	if err := s.Scan(&e.ScheduleID, &e.SourceID, &kind, &e.Completed, &e.Comment, &recordedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scanning entry: %w", err)
	}
	e.Kind = model.ItemKind(kind)

	t, err := time.Parse(timeLayout, recordedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing recorded_at %q: %w", recordedAt, err)
	}
	e.RecordedAt = t
	return e, nil
}
