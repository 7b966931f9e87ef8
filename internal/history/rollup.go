package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"

	"watt-matters/internal/aggregate"
)

// ErrInsufficientHistory is returned when fewer closed days exist than the
// requested window.
var ErrInsufficientHistory = errors.New("history: not enough daily rows")

// DayUsage is the derived per-day energy figure used for history charts.
type DayUsage struct {
	Date string  `json:"date"`
	KWh  float64 `json:"kwh"`
}

// RowLoader reads the full daily aggregate store.
type RowLoader interface {
	LoadAll() ([]aggregate.Row, error)
}

// Rollup derives recent-day kWh figures from the daily aggregate store.
// Each call loads the store into a fresh in-memory scratch table, sorts by
// date and converts totals to energy. The transform is pure: it performs no
// writes beyond its own scratch table.
type Rollup struct {
	loader RowLoader
}

// NewRollup constructs a rollup over a daily aggregate loader.
func NewRollup(loader RowLoader) (*Rollup, error) {
	if loader == nil {
		return nil, errors.New("history: nil row loader")
	}
	return &Rollup{loader: loader}, nil
}

// RecentDays returns the last n closed days in ascending date order. The
// open (most recent) row is always excluded: its totals are still moving.
func (r *Rollup) RecentDays(ctx context.Context, n int) ([]DayUsage, error) {
	if n <= 0 {
		return nil, fmt.Errorf("history: invalid day count %d", n)
	}

	rows, err := r.loader.LoadAll()
	if err != nil {
		if errors.Is(err, aggregate.ErrEmptyStore) {
			return nil, ErrInsufficientHistory
		}
		return nil, err
	}
	if len(rows) < n+1 {
		return nil, ErrInsufficientHistory
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("history: open scratch db: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `CREATE TABLE total_usage (
		date  TEXT PRIMARY KEY,
		total INTEGER NOT NULL,
		hours REAL NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("history: create scratch table: %w", err)
	}

	insert, err := db.PrepareContext(ctx, `INSERT INTO total_usage (date, total, hours) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("history: prepare insert: %w", err)
	}
	defer insert.Close()
	for _, row := range rows {
		if _, err := insert.ExecContext(ctx, row.Date, row.CumulativeTotal, row.CumulativeSampleHours); err != nil {
			return nil, fmt.Errorf("history: load scratch table: %w", err)
		}
	}

	// Newest n+1 rows re-sorted ascending; the trailing row is the open day.
	result, err := db.QueryContext(ctx, `SELECT date, total, hours FROM (
		SELECT date, total, hours FROM total_usage ORDER BY date DESC LIMIT ?
	) ORDER BY date ASC`, n+1)
	if err != nil {
		return nil, fmt.Errorf("history: query scratch table: %w", err)
	}
	defer result.Close()

	usage := make([]DayUsage, 0, n+1)
	for result.Next() {
		var (
			date  string
			total int64
			hours float64
		)
		if err := result.Scan(&date, &total, &hours); err != nil {
			return nil, err
		}
		usage = append(usage, DayUsage{Date: date, KWh: KWh(total, hours)})
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	if len(usage) < n+1 {
		return nil, ErrInsufficientHistory
	}

	// Drop the open day.
	return usage[:len(usage)-1], nil
}

// KWh converts a daily running total and its accumulated sample-hours to
// kilowatt-hours: kWh = ((wattsPerSec / 3600) * hours) / 1000.
func KWh(total int64, hours float64) float64 {
	return round3(((float64(total) / 3600) * hours) / 1000)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
