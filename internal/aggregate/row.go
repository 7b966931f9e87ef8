package aggregate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for row keys.
const DateLayout = "2006-01-02"

// Row is the durable running total for one calendar day. The last row in
// the store is the open (today) row; all earlier rows are closed history.
type Row struct {
	Date                  string
	CumulativeTotal       int64
	CumulativeSampleHours float64
}

// DateOf returns the row key for a point in time.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// marshal renders the row as a CSV line without trailing newline.
func (r Row) marshal() string {
	return fmt.Sprintf("%s,%d,%s", r.Date, r.CumulativeTotal, formatHours(r.CumulativeSampleHours))
}

// formatHours keeps the on-disk decimal stable at six places, matching the
// per-sample increment precision.
func formatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', 6, 64)
}

func parseRow(line string) (Row, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return Row{}, fmt.Errorf("aggregate: want 3 fields, got %d", len(fields))
	}

	date := strings.TrimSpace(fields[0])
	if _, err := time.Parse(DateLayout, date); err != nil {
		return Row{}, fmt.Errorf("aggregate: bad date %q: %w", date, err)
	}

	total, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("aggregate: bad total %q: %w", fields[1], err)
	}

	hours, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("aggregate: bad sample hours %q: %w", fields[2], err)
	}

	return Row{Date: date, CumulativeTotal: total, CumulativeSampleHours: hours}, nil
}
