package samplerate

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/open-wander/samplerate/internal/rowsource"
	"github.com/open-wander/samplerate/internal/timeguess"
)

// Options controls how rows are read and reduced.
type Options struct {
	Delimiter rune // field separator, ',' when zero
	MaxRows   int  // rows sampled; <= 0 uses every row given
	Column    int  // 0-based timestamp column

	// GuessOnce detects the pattern on the first usable row and parses
	// the remaining rows with it. Otherwise every row is guessed on its own.
	GuessOnce bool

	// Lenient skips rows that fail instead of failing the batch.
	Lenient bool

	// Pattern, when non-zero, is used for every row and no guessing happens.
	Pattern timeguess.Pattern
}

// DefaultOptions returns comma-separated, first column, three rows, strict.
func DefaultOptions() Options {
	return Options{
		Delimiter: ',',
		MaxRows:   3,
		Column:    0,
	}
}

// Result is a samplerate estimate together with what it was computed from.
type Result struct {
	Source       string            `json:"source,omitempty"`
	Hz           float64           `json:"hz"`
	Pattern      timeguess.Pattern `json:"pattern"`
	Rows         int               `json:"rows"`
	Samples      int               `json:"samples"`
	Intervals    int               `json:"intervals"`
	Skipped      int               `json:"skipped"`
	MeanInterval time.Duration     `json:"mean_interval_ns"`
	First        time.Time         `json:"first,omitzero"`
	Last         time.Time         `json:"last,omitzero"`
}

// MeanIntervalMs returns the mean interval in milliseconds.
func (r *Result) MeanIntervalMs() float64 {
	return float64(r.MeanInterval) / float64(time.Millisecond)
}

// Infer returns the samplerate in Hz of rows. See Estimate.
func Infer(rows []string, opts Options) (float64, error) {
	res, err := Estimate(rows, opts)
	if err != nil {
		return 0, err
	}
	return res.Hz, nil
}

// Estimate reads at most opts.MaxRows rows in order, parses the timestamp
// column of each and returns the reciprocal of the mean interval between
// consecutive timestamps. Fewer than two usable timestamps give 0 Hz.
//
// In strict mode the first failing row aborts the batch with a *RowError.
func Estimate(rows []string, opts Options) (*Result, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		rows = rows[:opts.MaxRows]
	}

	logger := slog.Default().With("component", "samplerate")

	res := &Result{Pattern: opts.Pattern}
	locked := opts.Pattern

	var prev time.Time
	var total time.Duration

	for i, row := range rows {
		res.Rows++

		ts, p, err := parseRow(row, opts, locked)
		if err != nil {
			rowErr := &RowError{Row: i + 1, Err: err}
			if !opts.Lenient {
				return nil, rowErr
			}
			logger.Warn("skipping row", "row", i+1, "error", err)
			res.Skipped++
			continue
		}

		if res.Samples == 0 {
			res.Pattern = p
			res.First = ts
			if opts.GuessOnce && locked.IsZero() {
				locked = p
			}
		} else {
			total += ts.Sub(prev)
			res.Intervals++
		}
		prev = ts
		res.Last = ts
		res.Samples++
	}

	if res.Intervals == 0 {
		return res, nil
	}

	res.MeanInterval = total / time.Duration(res.Intervals)
	meanMs := float64(total) / float64(time.Millisecond) / float64(res.Intervals)
	if meanMs <= 0 {
		return nil, fmt.Errorf("%w: mean interval %v", ErrNonIncreasing, res.MeanInterval)
	}
	res.Hz = 1.0 / (meanMs * 1e-3)

	logger.Debug("estimated samplerate",
		"hz", res.Hz, "pattern", res.Pattern.String(),
		"samples", res.Samples, "skipped", res.Skipped)

	return res, nil
}

// InferFile reads the file at path (skipping its header line) and estimates
// its samplerate.
func InferFile(path string, opts Options) (*Result, error) {
	rows, err := rowsource.ReadFile(path, opts.MaxRows)
	if err != nil {
		return nil, err
	}

	res, err := Estimate(rows, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Source = path
	return res, nil
}

func parseRow(row string, opts Options, locked timeguess.Pattern) (time.Time, timeguess.Pattern, error) {
	field, err := ExtractColumn(row, opts.Delimiter, opts.Column)
	if err != nil {
		return time.Time{}, timeguess.Pattern{}, err
	}

	p := locked
	if p.IsZero() {
		p, err = timeguess.GuessFormat(field)
		if err != nil {
			return time.Time{}, timeguess.Pattern{}, err
		}
	}

	ts, err := p.Parse(field)
	if err != nil {
		return time.Time{}, p, err
	}
	return ts, p, nil
}
