package analytics

import (
	"context"
	"errors"
	"math"
	"time"

	telemetry "watt-matters/internal/telemetry/domain"
)

// Fixed lookback windows used by the insights views. 730h is a 30.4-day
// approximation of a month, not a calendar month.
const (
	WindowWeek  = 168 * time.Hour
	WindowMonth = 730 * time.Hour
)

// Engine reduces raw time-series windows into summary statistics. It is
// stateless: every call re-queries the full window.
type Engine struct {
	query telemetry.PointQuery
}

// NewEngine constructs an analytics engine over a point query.
func NewEngine(query telemetry.PointQuery) (*Engine, error) {
	if query == nil {
		return nil, errors.New("analytics: nil point query")
	}
	return &Engine{query: query}, nil
}

// QueryInstant returns the single most recent point.
func (e *Engine) QueryInstant(ctx context.Context) (telemetry.Point, error) {
	return e.query.Latest(ctx)
}

// QueryWindow reduces all points within [now-lookback, now] into a Summary.
// An empty window yields ErrNoData, never a degenerate summary.
func (e *Engine) QueryWindow(ctx context.Context, lookback time.Duration) (Summary, error) {
	points, err := e.query.Range(ctx, lookback)
	if err != nil {
		return Summary{}, err
	}
	if len(points) == 0 {
		return Summary{}, telemetry.ErrNoData
	}
	return Reduce(points), nil
}

// Reduce computes population standard deviation, extremes and per-bucket
// averages over a non-empty point set. A bucket with no samples reports an
// average of zero.
func Reduce(points []telemetry.Point) Summary {
	var (
		sum          float64
		sums, counts [4]float64
	)
	min := points[0].Value
	max := points[0].Value

	for _, p := range points {
		sum += p.Value
		if p.Value > max {
			max = p.Value
		}
		if p.Value < min {
			min = p.Value
		}
		bucket := BucketForHour(p.TS.Hour())
		sums[bucket] += p.Value
		counts[bucket]++
	}

	mean := sum / float64(len(points))
	var sqDiff float64
	for _, p := range points {
		d := p.Value - mean
		sqDiff += d * d
	}

	return Summary{
		StdDev:       math.Sqrt(sqDiff / float64(len(points))),
		Max:          max,
		Min:          min,
		MorningAvg:   bucketAvg(sums[BucketMorning], counts[BucketMorning]),
		NoonAvg:      bucketAvg(sums[BucketNoon], counts[BucketNoon]),
		AfternoonAvg: bucketAvg(sums[BucketAfternoon], counts[BucketAfternoon]),
		NightAvg:     bucketAvg(sums[BucketNight], counts[BucketNight]),
	}
}

func bucketAvg(sum, count float64) float64 {
	if count == 0 {
		return 0
	}
	return sum / count
}
