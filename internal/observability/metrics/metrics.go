package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "wattmatters_"

var (
	registerOnce sync.Once

	ingestSamples prometheus.Counter
	ingestErrors  *prometheus.CounterVec

	refreshTotal   *prometheus.CounterVec
	refreshLatency *prometheus.HistogramVec
)

// Init registers ingestion and refresh metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		ingestSamples = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_samples_total",
				Help: "Total samples ingested successfully",
			},
		)
		ingestErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_errors_total",
				Help: "Total ingest errors by reason",
			},
			[]string{"reason"},
		)

		refreshTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "refresh_total",
				Help: "Total presentation refreshes by result",
			},
			[]string{"result"},
		)
		refreshLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "refresh_latency_seconds",
				Help:    "Presentation refresh latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		prometheus.MustRegister(ingestSamples, ingestErrors, refreshTotal, refreshLatency)
	})
}

// IngestSample counts one fully processed sample.
func IngestSample() {
	if ingestSamples != nil {
		ingestSamples.Inc()
	}
}

// IngestError counts one ingest failure by reason.
func IngestError(reason string) {
	if ingestErrors != nil {
		ingestErrors.WithLabelValues(reason).Inc()
	}
}

// ObserveRefresh records one presentation refresh.
func ObserveRefresh(result string, elapsed time.Duration) {
	if refreshTotal != nil {
		refreshTotal.WithLabelValues(result).Inc()
	}
	if refreshLatency != nil {
		refreshLatency.WithLabelValues(result).Observe(elapsed.Seconds())
	}
}
