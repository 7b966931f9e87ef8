package influx

import (
	"context"
	"errors"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	telemetry "watt-matters/internal/telemetry/domain"
)

// PointWriter writes samples to InfluxDB under a single measurement. The
// field name equals the measurement name, matching the series layout the
// dashboards query.
type PointWriter struct {
	writeAPI    api.WriteAPIBlocking
	measurement string
}

// NewPointWriter constructs a writer bound to one org/bucket/measurement.
func NewPointWriter(client influxdb2.Client, org, bucket, measurement string) (*PointWriter, error) {
	if client == nil {
		return nil, errors.New("influx writer: nil client")
	}
	if org == "" || bucket == "" || measurement == "" {
		return nil, errors.New("influx writer: org, bucket and measurement are required")
	}
	return &PointWriter{
		writeAPI:    client.WriteAPIBlocking(org, bucket),
		measurement: measurement,
	}, nil
}

// WritePoint persists one point. Writes are not retried; a transport
// failure is surfaced to the caller.
func (w *PointWriter) WritePoint(ctx context.Context, p telemetry.Point) error {
	point := influxdb2.NewPoint(
		w.measurement,
		nil,
		map[string]interface{}{w.measurement: p.Value},
		p.TS,
	)
	if err := w.writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("%w: %v", telemetry.ErrStorageWrite, err)
	}
	return nil
}
