package presentation

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"watt-matters/internal/analytics"
	"watt-matters/internal/history"
)

// BuildHistoryCSV renders recent-day usage as CSV.
func BuildHistoryCSV(rows []history.DayUsage) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"date", "kwh"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{row.Date, strconv.FormatFloat(row.KWh, 'f', 3, 64)}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildHistoryXLSX renders recent-day usage as a single-sheet workbook.
func BuildHistoryXLSX(rows []history.DayUsage) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "history"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Date")
	_ = f.SetCellValue(sheet, "B1", "Energy (kWh)")
	for i, row := range rows {
		cell := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", cell), row.Date)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", cell), row.KWh)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildInsightsPDF renders the week and month summaries as a report.
func BuildInsightsPDF(week, month *analytics.Summary, refreshedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Energy Consumption Insights")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", refreshedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	writeSummary(pdf, "Last Week", week)
	writeSummary(pdf, "Last Month", month)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(pdf *gofpdf.Fpdf, title string, summary *analytics.Summary) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, title)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)

	if summary == nil {
		pdf.Cell(0, 6, "No data in window")
		pdf.Ln(10)
		return
	}

	lines := []struct {
		label string
		value float64
	}{
		{"Standard Deviation", summary.StdDev},
		{"Highest Value", summary.Max},
		{"Lowest Value", summary.Min},
		{"Morning Average", summary.MorningAvg},
		{"Noon Average", summary.NoonAvg},
		{"Afternoon Average", summary.AfternoonAvg},
		{"Night Average", summary.NightAvg},
	}
	for _, line := range lines {
		pdf.CellFormat(60, 6, line.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.2f", line.value), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}

// HistoryCSVHandler serves the recent-day usage export as CSV.
type HistoryCSVHandler struct {
	adapter *Adapter
}

// NewHistoryCSVHandler constructs a HistoryCSVHandler.
func NewHistoryCSVHandler(adapter *Adapter) *HistoryCSVHandler {
	return &HistoryCSVHandler{adapter: adapter}
}

// ServeHTTP handles GET /api/v1/exports/history.csv.
func (h *HistoryCSVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := BuildHistoryCSV(h.adapter.Snapshot().History)
	if err != nil {
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	_, _ = w.Write(body)
}

// HistoryXLSXHandler serves the recent-day usage export as a workbook.
type HistoryXLSXHandler struct {
	adapter *Adapter
}

// NewHistoryXLSXHandler constructs a HistoryXLSXHandler.
func NewHistoryXLSXHandler(adapter *Adapter) *HistoryXLSXHandler {
	return &HistoryXLSXHandler{adapter: adapter}
}

// ServeHTTP handles GET /api/v1/exports/history.xlsx.
func (h *HistoryXLSXHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := BuildHistoryXLSX(h.adapter.Snapshot().History)
	if err != nil {
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="history.xlsx"`)
	_, _ = w.Write(body)
}

// InsightsPDFHandler serves the insights report as PDF.
type InsightsPDFHandler struct {
	adapter *Adapter
}

// NewInsightsPDFHandler constructs an InsightsPDFHandler.
func NewInsightsPDFHandler(adapter *Adapter) *InsightsPDFHandler {
	return &InsightsPDFHandler{adapter: adapter}
}

// ServeHTTP handles GET /api/v1/exports/insights.pdf.
func (h *InsightsPDFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap := h.adapter.Snapshot()
	body, err := BuildInsightsPDF(snap.Week, snap.Month, snap.RefreshedAt)
	if err != nil {
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="insights.pdf"`)
	_, _ = w.Write(body)
}
