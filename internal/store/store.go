package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/open-wander/samplerate/internal/samplerate"
)

// ErrNotFound is returned by Get when no estimate has the given id.
var ErrNotFound = errors.New("estimate not found")

// Fixed width keeps created_at ordering lexical.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Estimate is one recorded samplerate estimation.
type Estimate struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Delimiter      string    `json:"delimiter"`
	Column         int       `json:"column"`
	MaxRows        int       `json:"max_rows"`
	Pattern        string    `json:"pattern"`
	Rows           int       `json:"rows"`
	Samples        int       `json:"samples"`
	Intervals      int       `json:"intervals"`
	Skipped        int       `json:"skipped"`
	MeanIntervalMs float64   `json:"mean_interval_ms"`
	Hz             float64   `json:"hz"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewEstimate builds an Estimate from a result and the options that produced it.
func NewEstimate(res *samplerate.Result, opts samplerate.Options) *Estimate {
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}
	return &Estimate{
		Source:         res.Source,
		Delimiter:      string(delim),
		Column:         opts.Column,
		MaxRows:        opts.MaxRows,
		Pattern:        res.Pattern.String(),
		Rows:           res.Rows,
		Samples:        res.Samples,
		Intervals:      res.Intervals,
		Skipped:        res.Skipped,
		MeanIntervalMs: res.MeanIntervalMs(),
		Hz:             res.Hz,
	}
}

// Store persists estimates in SQLite.
type Store struct {
	db *sql.DB
}

// New creates a Store on an opened and migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save inserts e, assigning an ID and creation time when they are unset.
func (s *Store) Save(ctx context.Context, e *Estimate) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO estimates (
			id, source, delimiter, col, max_rows, pattern,
			rows_read, samples, intervals, skipped, mean_interval_ms, hz, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Source, e.Delimiter, e.Column, e.MaxRows, e.Pattern,
		e.Rows, e.Samples, e.Intervals, e.Skipped, e.MeanIntervalMs, e.Hz,
		e.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

const selectColumns = `id, source, delimiter, col, max_rows, pattern,
	rows_read, samples, intervals, skipped, mean_interval_ms, hz, created_at`

// List returns the most recent estimates, newest first. limit <= 0 means 50.
func (s *Store) List(ctx context.Context, limit int) ([]Estimate, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM estimates ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	defer rows.Close()

	var out []Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimates: %w", err)
	}
	return out, nil
}

// Get returns the estimate with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Estimate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM estimates WHERE id = ?`, id)
	e, err := scanEstimate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteBefore removes estimates created before cutoff and reports how many
// were deleted.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM estimates WHERE created_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("delete estimates: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEstimate(sc scanner) (*Estimate, error) {
	var e Estimate
	var created string
	err := sc.Scan(
		&e.ID, &e.Source, &e.Delimiter, &e.Column, &e.MaxRows, &e.Pattern,
		&e.Rows, &e.Samples, &e.Intervals, &e.Skipped, &e.MeanIntervalMs, &e.Hz,
		&created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan estimate: %w", err)
	}

	e.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	return &e, nil
}
