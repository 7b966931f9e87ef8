package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"watt-matters/internal/aggregate"
	"watt-matters/internal/observability/metrics"
	telemetry "watt-matters/internal/telemetry/domain"
)

// Clock provides time for the ingestion pipeline.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now() }

// AggregateStore is the write side of the daily aggregate store.
type AggregateStore interface {
	ReadLastRow() (aggregate.Row, error)
	AppendRow(row aggregate.Row) error
	RewriteLastRow(row aggregate.Row) error
}

// Pipeline converts raw bus payloads into stored points and daily totals.
// One call fully processes one sample; the bus delivers messages in order,
// so the read-modify-rewrite of the open row is never interleaved.
type Pipeline struct {
	writer telemetry.PointWriter
	store  AggregateStore
	clock  Clock
	logger *log.Logger
}

// NewPipeline constructs an ingestion pipeline.
func NewPipeline(writer telemetry.PointWriter, store AggregateStore, clock Clock, logger *log.Logger) (*Pipeline, error) {
	if writer == nil {
		return nil, errors.New("pipeline: nil point writer")
	}
	if store == nil {
		return nil, errors.New("pipeline: nil aggregate store")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{writer: writer, store: store, clock: clock, logger: logger}, nil
}

// OnSample processes one payload from the bus. Errors are never fatal to
// the subscription: a malformed payload is dropped, a failed store write is
// logged, and the daily aggregate update still proceeds. The two writes are
// independent, not transactional.
func (p *Pipeline) OnSample(ctx context.Context, payload []byte) error {
	value, err := parseSample(payload)
	if err != nil {
		metrics.IngestError("parse")
		p.logger.Printf("ingest: dropping sample: %v", err)
		return err
	}

	now := p.clock.Now()
	writeErr := p.writer.WritePoint(ctx, telemetry.Point{Value: float64(value), TS: now})
	if writeErr != nil {
		metrics.IngestError("storage_write")
		p.logger.Printf("ingest: point write failed: %v", writeErr)
	}

	if err := p.updateDailyAggregate(value, now); err != nil {
		metrics.IngestError("aggregate")
		p.logger.Printf("ingest: aggregate update failed: %v", err)
		return err
	}

	if writeErr != nil {
		return writeErr
	}
	metrics.IngestSample()
	return nil
}

func (p *Pipeline) updateDailyAggregate(value int64, now time.Time) error {
	today := aggregate.DateOf(now)

	last, err := p.store.ReadLastRow()
	if errors.Is(err, aggregate.ErrEmptyStore) {
		return p.store.AppendRow(aggregate.Row{
			Date:                  today,
			CumulativeTotal:       value,
			CumulativeSampleHours: telemetry.SampleIntervalHours,
		})
	}
	if err != nil {
		return err
	}

	if last.Date != today {
		return p.store.AppendRow(aggregate.Row{
			Date:                  today,
			CumulativeTotal:       value,
			CumulativeSampleHours: telemetry.SampleIntervalHours,
		})
	}

	last.CumulativeTotal += value
	last.CumulativeSampleHours += telemetry.SampleIntervalHours
	return p.store.RewriteLastRow(last)
}

func parseSample(payload []byte) (int64, error) {
	raw := strings.TrimSpace(string(payload))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", telemetry.ErrMalformedSample, raw)
	}
	return value, nil
}
