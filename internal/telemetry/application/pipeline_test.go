package application

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"watt-matters/internal/aggregate"
	telemetry "watt-matters/internal/telemetry/domain"
)

type stubWriter struct {
	points []telemetry.Point
	err    error
}

func (w *stubWriter) WritePoint(_ context.Context, p telemetry.Point) error {
	if w.err != nil {
		return w.err
	}
	w.points = append(w.points, p)
	return nil
}

type memStore struct {
	rows []aggregate.Row
}

func (s *memStore) ReadLastRow() (aggregate.Row, error) {
	if len(s.rows) == 0 {
		return aggregate.Row{}, aggregate.ErrEmptyStore
	}
	return s.rows[len(s.rows)-1], nil
}

func (s *memStore) AppendRow(row aggregate.Row) error {
	s.rows = append(s.rows, row)
	return nil
}

func (s *memStore) RewriteLastRow(row aggregate.Row) error {
	if len(s.rows) == 0 {
		return aggregate.ErrEmptyStore
	}
	s.rows[len(s.rows)-1] = row
	return nil
}

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

func newTestPipeline(t *testing.T, writer telemetry.PointWriter, store AggregateStore, clock Clock) *Pipeline {
	t.Helper()
	pipeline, err := NewPipeline(writer, store, clock, nil)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return pipeline
}

func TestOnSampleAccumulatesSameDay(t *testing.T) {
	writer := &stubWriter{}
	store := &memStore{rows: []aggregate.Row{{Date: "2024-01-01"}}}
	clock := fixedClock{at: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	pipeline := newTestPipeline(t, writer, store, clock)

	for _, payload := range []string{"10", "20", "30"} {
		if err := pipeline.OnSample(context.Background(), []byte(payload)); err != nil {
			t.Fatalf("on sample %q: %v", payload, err)
		}
	}

	if len(writer.points) != 3 {
		t.Fatalf("want 3 points written, got %d", len(writer.points))
	}
	if writer.points[2].Value != 30 {
		t.Fatalf("want last point value 30, got %v", writer.points[2].Value)
	}

	last := store.rows[len(store.rows)-1]
	if len(store.rows) != 1 {
		t.Fatalf("want a single row, got %d", len(store.rows))
	}
	if last.CumulativeTotal != 60 {
		t.Fatalf("want total 60, got %d", last.CumulativeTotal)
	}
	wantHours := 3 * telemetry.SampleIntervalHours
	if math.Abs(last.CumulativeSampleHours-wantHours) > 1e-9 {
		t.Fatalf("want hours %v, got %v", wantHours, last.CumulativeSampleHours)
	}
}

func TestOnSampleOpensNewDay(t *testing.T) {
	writer := &stubWriter{}
	store := &memStore{rows: []aggregate.Row{{Date: "2024-01-01", CumulativeTotal: 100, CumulativeSampleHours: 0.002}}}
	clock := fixedClock{at: time.Date(2024, 1, 2, 0, 0, 5, 0, time.UTC)}
	pipeline := newTestPipeline(t, writer, store, clock)

	if err := pipeline.OnSample(context.Background(), []byte("5")); err != nil {
		t.Fatalf("on sample: %v", err)
	}

	if len(store.rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(store.rows))
	}
	if store.rows[0].CumulativeTotal != 100 {
		t.Fatalf("closed row mutated: %+v", store.rows[0])
	}
	opened := store.rows[1]
	if opened.Date != "2024-01-02" || opened.CumulativeTotal != 5 {
		t.Fatalf("unexpected opened row: %+v", opened)
	}
	if math.Abs(opened.CumulativeSampleHours-telemetry.SampleIntervalHours) > 1e-9 {
		t.Fatalf("want hours %v, got %v", telemetry.SampleIntervalHours, opened.CumulativeSampleHours)
	}
}

func TestOnSampleSeedsEmptyStore(t *testing.T) {
	writer := &stubWriter{}
	store := &memStore{}
	clock := fixedClock{at: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	pipeline := newTestPipeline(t, writer, store, clock)

	if err := pipeline.OnSample(context.Background(), []byte("42")); err != nil {
		t.Fatalf("on sample: %v", err)
	}
	if len(store.rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(store.rows))
	}
	if store.rows[0].Date != "2024-01-01" || store.rows[0].CumulativeTotal != 42 {
		t.Fatalf("unexpected row: %+v", store.rows[0])
	}
}

func TestOnSampleDropsMalformedPayload(t *testing.T) {
	writer := &stubWriter{}
	store := &memStore{rows: []aggregate.Row{{Date: "2024-01-01", CumulativeTotal: 7}}}
	clock := fixedClock{at: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	pipeline := newTestPipeline(t, writer, store, clock)

	for _, payload := range []string{"watts?", "", "12.5", "1e3"} {
		err := pipeline.OnSample(context.Background(), []byte(payload))
		if !errors.Is(err, telemetry.ErrMalformedSample) {
			t.Fatalf("payload %q: want ErrMalformedSample, got %v", payload, err)
		}
	}

	if len(writer.points) != 0 {
		t.Fatalf("malformed payload reached the point writer: %d points", len(writer.points))
	}
	if store.rows[0].CumulativeTotal != 7 {
		t.Fatalf("malformed payload reached the aggregate: %+v", store.rows[0])
	}
}

func TestOnSampleTrimsWhitespaceAndSigns(t *testing.T) {
	writer := &stubWriter{}
	store := &memStore{rows: []aggregate.Row{{Date: "2024-01-01"}}}
	clock := fixedClock{at: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	pipeline := newTestPipeline(t, writer, store, clock)

	if err := pipeline.OnSample(context.Background(), []byte(" 15\n")); err != nil {
		t.Fatalf("on sample: %v", err)
	}
	if store.rows[0].CumulativeTotal != 15 {
		t.Fatalf("want total 15, got %d", store.rows[0].CumulativeTotal)
	}
}

func TestOnSampleWriteFailureStillUpdatesAggregate(t *testing.T) {
	writer := &stubWriter{err: telemetry.ErrStorageWrite}
	store := &memStore{rows: []aggregate.Row{{Date: "2024-01-01"}}}
	clock := fixedClock{at: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	pipeline := newTestPipeline(t, writer, store, clock)

	err := pipeline.OnSample(context.Background(), []byte("9"))
	if !errors.Is(err, telemetry.ErrStorageWrite) {
		t.Fatalf("want ErrStorageWrite, got %v", err)
	}
	if store.rows[0].CumulativeTotal != 9 {
		t.Fatalf("aggregate not updated after write failure: %+v", store.rows[0])
	}
}

func TestNewPipelineValidation(t *testing.T) {
	if _, err := NewPipeline(nil, &memStore{}, nil, nil); err == nil {
		t.Fatal("want error for nil writer")
	}
	if _, err := NewPipeline(&stubWriter{}, nil, nil, nil); err == nil {
		t.Fatal("want error for nil store")
	}
}
