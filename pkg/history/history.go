// Package history keeps a SQLite log of recognized text and sound alerts.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Kind tells text entries from alert entries.
type Kind string

const (
	KindText  Kind = "text"
	KindAlert Kind = "alert"
)

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 50

// ErrEmptyContent is returned when an entry has nothing to record.
var ErrEmptyContent = errors.New("history: empty content")

// Entry is one recorded event.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	Content    string    `json:"content"`
	Score      float64   `json:"score,omitempty"`
	Engine     string    `json:"engine,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

//go:embed schema.sql
var schemaSQL string

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-process database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordText stores a recognized text. Kind is forced to KindText.
func (s *Store) RecordText(ctx context.Context, e Entry) (Entry, error) {
	e.Kind = KindText
	return s.insert(ctx, e)
}

// RecordAlert stores a surfaced sound alert. Kind is forced to KindAlert.
func (s *Store) RecordAlert(ctx context.Context, e Entry) (Entry, error) {
	e.Kind = KindAlert
	return s.insert(ctx, e)
}

func (s *Store) insert(ctx context.Context, e Entry) (Entry, error) {
	if e.Content == "" {
		return Entry{}, ErrEmptyContent
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (id, kind, content, score, engine, recorded_ns)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID.String(), string(e.Kind), e.Content, e.Score, e.Engine, e.RecordedAt.UnixNano())
	if err != nil {
		return Entry{}, fmt.Errorf("history: insert %s: %w", e.Kind, err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, content, score, engine, recorded_ns
		FROM entries
		ORDER BY recorded_ns DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e    Entry
			id   string
			kind string
			ns   int64
		)
		if err := rows.Scan(&id, &kind, &e.Content, &e.Score, &e.Engine, &ns); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("history: bad id %q: %w", id, err)
		}
		e.Kind = Kind(kind)
		e.RecordedAt = time.Unix(0, ns)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
