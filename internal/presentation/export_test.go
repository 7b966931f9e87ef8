package presentation

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"watt-matters/internal/analytics"
	"watt-matters/internal/history"
)

func TestBuildHistoryCSV(t *testing.T) {
	rows := []history.DayUsage{
		{Date: "2024-01-01", KWh: 0.004},
		{Date: "2024-01-02", KWh: 1.5},
	}

	body, err := BuildHistoryCSV(rows)
	if err != nil {
		t.Fatalf("build csv: %v", err)
	}
	want := "date,kwh\n2024-01-01,0.004\n2024-01-02,1.500\n"
	if string(body) != want {
		t.Fatalf("want %q, got %q", want, string(body))
	}
}

func TestBuildHistoryCSVEmpty(t *testing.T) {
	body, err := BuildHistoryCSV(nil)
	if err != nil {
		t.Fatalf("build csv: %v", err)
	}
	if string(body) != "date,kwh\n" {
		t.Fatalf("want header only, got %q", string(body))
	}
}

func TestBuildHistoryXLSX(t *testing.T) {
	body, err := BuildHistoryXLSX([]history.DayUsage{{Date: "2024-01-01", KWh: 0.004}})
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}
	// xlsx files are zip archives.
	if !bytes.HasPrefix(body, []byte("PK")) {
		t.Fatalf("not a zip archive: % x", body[:4])
	}
}

func TestBuildInsightsPDF(t *testing.T) {
	week := &analytics.Summary{StdDev: 2, Max: 9, Min: 2, MorningAvg: 5}
	body, err := BuildInsightsPDF(week, nil, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("not a pdf: % x", body[:4])
	}
}

func TestHistoryCSVHandler(t *testing.T) {
	handler := NewHistoryCSVHandler(refreshedAdapter(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/exports/history.csv", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("want text/csv, got %s", ct)
	}
	want := "date,kwh\n2024-01-01,0.004\n"
	if rec.Body.String() != want {
		t.Fatalf("want %q, got %q", want, rec.Body.String())
	}
}

func TestExportHandlersRejectNonGet(t *testing.T) {
	adapter := refreshedAdapter(t)
	handlers := map[string]http.Handler{
		"csv":  NewHistoryCSVHandler(adapter),
		"xlsx": NewHistoryXLSXHandler(adapter),
		"pdf":  NewInsightsPDFHandler(adapter),
	}
	for name, handler := range handlers {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/exports", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: want 405, got %d", name, rec.Code)
		}
	}
}
