package telemetry

import (
	"context"
	"time"
)

// SampleIntervalHours is one sampling interval (one second) expressed in
// hours, rounded the way the aggregate store persists it. It is a fixed
// business constant, not a value to re-derive from the calendar.
const SampleIntervalHours = 0.000278

// Point is a stored (value, timestamp) pair under the configured measurement.
type Point struct {
	Value float64   `json:"value"`
	TS    time.Time `json:"ts"`
}

// PointWriter persists points to the time-series store.
type PointWriter interface {
	WritePoint(ctx context.Context, p Point) error
}

// PointQuery reads points back from the time-series store.
type PointQuery interface {
	// Latest returns the single most recent point for the measurement.
	Latest(ctx context.Context) (Point, error)
	// Range returns every point within [now-lookback, now], oldest first.
	Range(ctx context.Context, lookback time.Duration) ([]Point, error)
}
