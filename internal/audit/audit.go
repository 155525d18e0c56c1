// Package audit keeps a sqlite log of extraction results so that failed
// model outputs can be inspected after a batch run.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/discernus/discernus-sub017/core/extract"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("audit entry not found")

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	matched_style TEXT NOT NULL,
	ok INTEGER NOT NULL,
	lenient INTEGER NOT NULL,
	raw_json TEXT NOT NULL,
	repaired_json TEXT NOT NULL DEFAULT '',
	parsed_value TEXT,
	errors TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extractions_ok ON extractions(ok);
CREATE INDEX IF NOT EXISTS idx_extractions_created ON extractions(created_at);
`

// Entry is one recorded extraction.
type Entry struct {
	ID           string            `json:"id"`
	Source       string            `json:"source"`
	MatchedStyle extract.Style     `json:"matched_marker_style"`
	OK           bool              `json:"ok"`
	Lenient      bool              `json:"lenient"`
	RawJSON      string            `json:"raw_json_text"`
	RepairedJSON string            `json:"repaired_json_text,omitempty"`
	Value        json.RawMessage   `json:"parsed_value,omitempty"`
	Errors       []extract.Attempt `json:"errors"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Store is a sqlite-backed audit log.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores res under a new id and returns that id.
func (s *Store) Record(ctx context.Context, source string, res extract.Result) (string, error) {
	errs := res.Errors
	if errs == nil {
		errs = []extract.Attempt{}
	}
	encodedErrs, err := json.Marshal(errs)
	if err != nil {
		return "", fmt.Errorf("encode attempts: %w", err)
	}

	var value sql.NullString
	if res.Present {
		encoded, err := json.Marshal(res.Value)
		if err != nil {
			return "", fmt.Errorf("encode parsed value: %w", err)
		}
		value = sql.NullString{String: string(encoded), Valid: true}
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extractions (id, source, matched_style, ok, lenient, raw_json, repaired_json, parsed_value, errors, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, source, string(res.MatchedStyle), res.Present, res.Lenient,
		res.RawJSON, res.RepairedJSON, value, string(encodedErrs), s.now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert audit entry: %w", err)
	}
	return id, nil
}

const selectColumns = `SELECT id, source, matched_style, ok, lenient, raw_json, repaired_json, parsed_value, errors, created_at FROM extractions`

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// ListOptions filters List.
type ListOptions struct {
	FailedOnly bool
	// Limit caps the number of entries; zero means no limit.
	Limit int
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	query := selectColumns
	var args []any
	if opts.FailedOnly {
		query += ` WHERE ok = 0`
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats aggregates the whole log.
type Stats struct {
	Total     int                       `json:"total"`
	Succeeded int                       `json:"succeeded"`
	Failed    int                       `json:"failed"`
	Lenient   int                       `json:"lenient"`
	ByStyle   map[extract.Style]int     `json:"by_style"`
	ByKind    map[extract.ErrorKind]int `json:"by_error_kind"`
}

// Stats counts entries by outcome, matched style and attempt kind.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{
		ByStyle: map[extract.Style]int{},
		ByKind:  map[extract.ErrorKind]int{},
	}

	rows, err := s.db.QueryContext(ctx, `SELECT matched_style, ok, lenient, errors FROM extractions`)
	if err != nil {
		return Stats{}, fmt.Errorf("query audit stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			style       string
			ok, lenient bool
			encodedErrs string
		)
		if err := rows.Scan(&style, &ok, &lenient, &encodedErrs); err != nil {
			return Stats{}, fmt.Errorf("scan audit stats: %w", err)
		}
		var attempts []extract.Attempt
		if err := json.Unmarshal([]byte(encodedErrs), &attempts); err != nil {
			return Stats{}, fmt.Errorf("decode attempts: %w", err)
		}

		st.Total++
		if ok {
			st.Succeeded++
		} else {
			st.Failed++
		}
		if lenient {
			st.Lenient++
		}
		st.ByStyle[extract.Style(style)]++
		for _, a := range attempts {
			st.ByKind[a.Kind]++
		}
	}
	return st, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e           Entry
		style       string
		value       sql.NullString
		encodedErrs string
		created     int64
	)
	err := row.Scan(&e.ID, &e.Source, &style, &e.OK, &e.Lenient,
		&e.RawJSON, &e.RepairedJSON, &value, &encodedErrs, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan audit entry: %w", err)
	}

	e.MatchedStyle = extract.Style(style)
	e.CreatedAt = time.Unix(0, created)
	if value.Valid {
		e.Value = json.RawMessage(value.String)
	}
	if err := json.Unmarshal([]byte(encodedErrs), &e.Errors); err != nil {
		return Entry{}, fmt.Errorf("decode attempts: %w", err)
	}
	return e, nil
}
