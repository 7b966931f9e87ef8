package presentation

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"watt-matters/internal/aggregate"
	"watt-matters/internal/analytics"
	"watt-matters/internal/history"
	"watt-matters/internal/observability/metrics"
	telemetry "watt-matters/internal/telemetry/domain"
)

// RefreshInterval is the fixed cadence at which dashboard state is
// recomputed from the stores.
const RefreshInterval = 20 * time.Second

const defaultHistoryDays = 10

// AnalyticsEngine is the read contract for windowed statistics.
type AnalyticsEngine interface {
	QueryInstant(ctx context.Context) (telemetry.Point, error)
	QueryWindow(ctx context.Context, lookback time.Duration) (analytics.Summary, error)
}

// HistoryReader is the read contract for per-day energy rollups.
type HistoryReader interface {
	RecentDays(ctx context.Context, n int) ([]history.DayUsage, error)
}

// LastRowReader reads the open daily aggregate row.
type LastRowReader interface {
	ReadLastRow() (aggregate.Row, error)
}

// TodayUsage is the running consumption for the open day.
type TodayUsage struct {
	Date     string  `json:"date"`
	KWh      float64 `json:"kwh"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// Snapshot is the dashboard state at one refresh. Missing sections mean
// the underlying window had no data; they render as a "no data" state.
type Snapshot struct {
	Latest      *telemetry.Point   `json:"latest,omitempty"`
	Week        *analytics.Summary `json:"week,omitempty"`
	Month       *analytics.Summary `json:"month,omitempty"`
	Today       *TodayUsage        `json:"today,omitempty"`
	History     []history.DayUsage `json:"history,omitempty"`
	RefreshedAt time.Time          `json:"refreshed_at"`
}

// Adapter owns the dashboard state and refreshes it on a fixed cadence.
// It only ever reads from the stores.
type Adapter struct {
	engine      AnalyticsEngine
	rollup      HistoryReader
	store       LastRowReader
	tariff      Tariff
	historyDays int
	logger      *log.Logger

	mu   sync.RWMutex
	snap Snapshot
}

// NewAdapter constructs a presentation adapter.
func NewAdapter(engine AnalyticsEngine, rollup HistoryReader, store LastRowReader, tariff Tariff, logger *log.Logger) (*Adapter, error) {
	if engine == nil {
		return nil, errors.New("presentation: nil analytics engine")
	}
	if rollup == nil {
		return nil, errors.New("presentation: nil history reader")
	}
	if store == nil {
		return nil, errors.New("presentation: nil aggregate reader")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{
		engine:      engine,
		rollup:      rollup,
		store:       store,
		tariff:      tariff,
		historyDays: defaultHistoryDays,
		logger:      logger,
	}, nil
}

// Snapshot returns the current dashboard state.
func (a *Adapter) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}

// Run refreshes immediately and then on every tick until ctx is done.
func (a *Adapter) Run(ctx context.Context) {
	a.Refresh(ctx)

	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Refresh(ctx)
		}
	}
}

// Refresh recomputes the snapshot from the stores. Empty windows and thin
// history are normal states, not failures; only transport errors count as
// a failed refresh.
func (a *Adapter) Refresh(ctx context.Context) {
	start := time.Now()
	result := "success"
	snap := Snapshot{RefreshedAt: start.UTC()}

	if latest, err := a.engine.QueryInstant(ctx); err == nil {
		snap.Latest = &latest
	} else if !errors.Is(err, telemetry.ErrNoData) {
		result = "error"
		a.logger.Printf("refresh: instant query failed: %v", err)
	}

	if week, err := a.engine.QueryWindow(ctx, analytics.WindowWeek); err == nil {
		snap.Week = &week
	} else if !errors.Is(err, telemetry.ErrNoData) {
		result = "error"
		a.logger.Printf("refresh: week window failed: %v", err)
	}

	if month, err := a.engine.QueryWindow(ctx, analytics.WindowMonth); err == nil {
		snap.Month = &month
	} else if !errors.Is(err, telemetry.ErrNoData) {
		result = "error"
		a.logger.Printf("refresh: month window failed: %v", err)
	}

	if rows, err := a.rollup.RecentDays(ctx, a.historyDays); err == nil {
		snap.History = rows
	} else if !errors.Is(err, history.ErrInsufficientHistory) {
		result = "error"
		a.logger.Printf("refresh: history rollup failed: %v", err)
	}

	if row, err := a.store.ReadLastRow(); err == nil {
		snap.Today = a.todayUsage(row)
	} else if !errors.Is(err, aggregate.ErrEmptyStore) {
		result = "error"
		a.logger.Printf("refresh: aggregate read failed: %v", err)
	}

	a.mu.Lock()
	a.snap = snap
	a.mu.Unlock()

	metrics.ObserveRefresh(result, time.Since(start))
}

func (a *Adapter) todayUsage(row aggregate.Row) *TodayUsage {
	kwh := history.KWh(row.CumulativeTotal, row.CumulativeSampleHours)
	return &TodayUsage{
		Date:     row.Date,
		KWh:      kwh,
		Price:    math.Round(kwh*a.tariff.PricePerKWh*1000) / 1000,
		Currency: a.tariff.Currency,
	}
}
