package aggregate

import (
	"math"
	"testing"
	"time"
)

func TestRowRoundTrip(t *testing.T) {
	row := Row{Date: "2024-01-01", CumulativeTotal: 60, CumulativeSampleHours: 0.000834}

	parsed, err := parseRow(row.marshal())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Date != row.Date || parsed.CumulativeTotal != row.CumulativeTotal {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
	if math.Abs(parsed.CumulativeSampleHours-row.CumulativeSampleHours) > 1e-9 {
		t.Fatalf("hours mismatch: %v", parsed.CumulativeSampleHours)
	}
}

func TestParseRowErrors(t *testing.T) {
	cases := []string{
		"2024-01-01,100",
		"2024-01-01,100,0.002,extra",
		"yesterday,100,0.002",
		"2024-01-01,many,0.002",
		"2024-01-01,100,lots",
	}
	for _, line := range cases {
		if _, err := parseRow(line); err == nil {
			t.Errorf("line %q: want parse error", line)
		}
	}
}

func TestDateOf(t *testing.T) {
	at := time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC)
	if got := DateOf(at); got != "2024-01-02" {
		t.Fatalf("want 2024-01-02, got %s", got)
	}
}
