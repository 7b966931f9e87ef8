package influx

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	telemetry "watt-matters/internal/telemetry/domain"
)

// PointQuery runs Flux range queries against one measurement.
type PointQuery struct {
	queryAPI    api.QueryAPI
	bucket      string
	measurement string
}

// NewPointQuery constructs a query bound to one org/bucket/measurement.
func NewPointQuery(client influxdb2.Client, org, bucket, measurement string) (*PointQuery, error) {
	if client == nil {
		return nil, errors.New("influx query: nil client")
	}
	if org == "" || bucket == "" || measurement == "" {
		return nil, errors.New("influx query: org, bucket and measurement are required")
	}
	return &PointQuery{
		queryAPI:    client.QueryAPI(org),
		bucket:      bucket,
		measurement: measurement,
	}, nil
}

// Latest returns the most recent point across the whole series.
func (q *PointQuery) Latest(ctx context.Context) (telemetry.Point, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
	|> range(start: 0, stop: now())
	|> filter(fn: (r) => r._measurement == %q)
	|> last()`, q.bucket, q.measurement)

	points, err := q.run(ctx, flux)
	if err != nil {
		return telemetry.Point{}, err
	}
	if len(points) == 0 {
		return telemetry.Point{}, telemetry.ErrNoData
	}
	return points[len(points)-1], nil
}

// Range returns every point within [now-lookback, now], oldest first.
func (q *PointQuery) Range(ctx context.Context, lookback time.Duration) ([]telemetry.Point, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
	|> range(start: -%dh, stop: now())
	|> filter(fn: (r) => r._measurement == %q)`,
		q.bucket, int64(lookback.Hours()), q.measurement)

	return q.run(ctx, flux)
}

func (q *PointQuery) run(ctx context.Context, flux string) ([]telemetry.Point, error) {
	result, err := q.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", telemetry.ErrStorageRead, err)
	}

	var points []telemetry.Point
	for result.Next() {
		record := result.Record()
		value, ok := numericValue(record.Value())
		if !ok {
			continue
		}
		points = append(points, telemetry.Point{Value: value, TS: record.Time()})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", telemetry.ErrStorageRead, err)
	}
	return points, nil
}

func numericValue(v interface{}) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case int64:
		return float64(value), true
	case uint64:
		return float64(value), true
	default:
		return 0, false
	}
}
