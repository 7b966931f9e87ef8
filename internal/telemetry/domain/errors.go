package telemetry

import "errors"

var (
	// ErrMalformedSample is returned when a bus payload is not a number.
	ErrMalformedSample = errors.New("telemetry: malformed sample payload")
	// ErrStorageWrite is returned when the time-series store rejects a write.
	ErrStorageWrite = errors.New("telemetry: storage write failed")
	// ErrStorageRead is returned when a range query cannot be executed.
	ErrStorageRead = errors.New("telemetry: storage read failed")
	// ErrNoData is returned when a query window holds no points.
	ErrNoData = errors.New("telemetry: no data in window")
)
