package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"watt-matters/internal/aggregate"
	"watt-matters/internal/analytics"
	"watt-matters/internal/history"
	"watt-matters/internal/observability/metrics"
	"watt-matters/internal/presentation"
	"watt-matters/internal/telemetry/application"
	"watt-matters/internal/telemetry/infrastructure/influx"
	mqttconsumer "watt-matters/internal/telemetry/interfaces/mqtt"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init()

	influxClient := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
	defer influxClient.Close()

	pointWriter, err := influx.NewPointWriter(influxClient, cfg.InfluxOrg, cfg.InfluxBucket, cfg.Measurement)
	if err != nil {
		logger.Fatalf("point writer error: %v", err)
	}
	pointQuery, err := influx.NewPointQuery(influxClient, cfg.InfluxOrg, cfg.InfluxBucket, cfg.Measurement)
	if err != nil {
		logger.Fatalf("point query error: %v", err)
	}

	store, err := aggregate.NewFileStore(cfg.AggregatePath)
	if err != nil {
		logger.Fatalf("aggregate store error: %v", err)
	}
	defer store.Close()
	if err := store.Seed(aggregate.Row{Date: aggregate.DateOf(time.Now())}); err != nil {
		logger.Fatalf("aggregate seed error: %v", err)
	}

	pipeline, err := application.NewPipeline(pointWriter, store, application.SystemClock{}, logger)
	if err != nil {
		logger.Fatalf("pipeline error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer, err := mqttconsumer.NewConsumer(cfg.BrokerURL, cfg.ClientID, cfg.Topic, logger)
	if err != nil {
		logger.Fatalf("mqtt consumer error: %v", err)
	}
	defer consumer.Close()
	if err := consumer.Subscribe(ctx, pipeline); err != nil {
		logger.Fatalf("mqtt subscribe error: %v", err)
	}

	engine, err := analytics.NewEngine(pointQuery)
	if err != nil {
		logger.Fatalf("analytics engine error: %v", err)
	}
	rollup, err := history.NewRollup(store)
	if err != nil {
		logger.Fatalf("history rollup error: %v", err)
	}

	tariff, err := presentation.LoadTariff()
	if err != nil {
		logger.Fatalf("tariff config error: %v", err)
	}
	adapter, err := presentation.NewAdapter(engine, rollup, store, tariff, logger)
	if err != nil {
		logger.Fatalf("presentation adapter error: %v", err)
	}
	go adapter.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/dashboard", presentation.NewDashboardHandler(adapter))
	mux.Handle("/api/v1/insights", presentation.NewInsightsHandler(adapter))
	mux.Handle("/api/v1/history", presentation.NewHistoryHandler(rollup))
	mux.Handle("/api/v1/exports/history.csv", presentation.NewHistoryCSVHandler(adapter))
	mux.Handle("/api/v1/exports/history.xlsx", presentation.NewHistoryXLSXHandler(adapter))
	mux.Handle("/api/v1/exports/insights.pdf", presentation.NewInsightsPDFHandler(adapter))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}
	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs

	logger.Printf("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
