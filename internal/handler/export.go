// Package handler: export.go implements GET /trips/{tripId}/export.
// Returns the trip's activities as a flat table, one row per activity.
// Supports ?format=json (default), csv and pdf.
package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"
	"github.com/phpdave11/gofpdf"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_title", "trip_start_date", "trip_end_date",
	"day", "start_time", "title", "type", "location", "cost", "status",
}

// GetExport implements GET /trips/{tripId}/export.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		badRequest(w, "format", "format must be a string")
		return
	}
	f := "json"
	if format != nil && *format != "" {
		f = *format
	}
	if f != "json" && f != "csv" && f != "pdf" {
		badRequest(w, "format", "format must be one of json, csv, pdf")
		return
	}

	trip, rows, err := s.svc.Export.Export(r.Context(), caller(r), tripID)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}

	switch f {
	case "csv":
		writeAttachment(w, "text/csv", fmt.Sprintf("trip-%s.csv", trip.ID), buildCSV(rows))
	case "pdf":
		body, err := buildPDF(trip, rows)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("render pdf: %w", err), "trip not found")
			return
		}
		writeAttachment(w, "application/pdf", fmt.Sprintf("trip-%s.pdf", trip.ID), body)
	default:
		out := make([]ExportRowResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, ExportRowResponse(row))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// buildCSV encodes rows with a header line.
func buildCSV(rows []domain.ExportRow) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// bytes.Buffer.Write never returns an error.
	_ = w.Write(csvHeaders)
	for _, r := range rows {
		_ = w.Write(rowToCSVRecord(r))
	}
	w.Flush()
	return buf.Bytes()
}

func rowToCSVRecord(r domain.ExportRow) []string {
	cost := ""
	if r.Title != "" {
		cost = strconv.FormatFloat(r.Cost, 'f', 2, 64)
	}
	return []string{
		r.TripID,
		r.TripTitle,
		r.TripStartDate,
		r.TripEndDate,
		r.Day,
		r.StartTime,
		r.Title,
		r.Type,
		r.Location,
		cost,
		r.Status,
	}
}

// buildPDF renders the rows as a printable itinerary grouped by day.
func buildPDF(trip domain.Trip, rows []domain.ExportRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(trip.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, trip.Title)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("%s to %s", domain.DayKey(trip.StartDate), domain.DayKey(trip.EndDate)))
	pdf.Ln(10)

	day := ""
	for _, r := range rows {
		if r.Title == "" {
			pdf.SetFont("Helvetica", "I", 11)
			pdf.Cell(0, 6, "No activities planned yet.")
			pdf.Ln(6)
			continue
		}
		if r.Day != day {
			day = r.Day
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 13)
			pdf.Cell(0, 8, day)
			pdf.Ln(8)
		}
		pdf.SetFont("Helvetica", "", 11)
		line := fmt.Sprintf("%s  %s (%s)", r.StartTime, r.Title, r.Type)
		if r.Location != "" {
			line += ", " + r.Location
		}
		pdf.MultiCell(0, 6, fmt.Sprintf("%s  [%s, %.2f]", line, r.Status, r.Cost), "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Estimated cost: %.2f", trip.EstimatedCost()))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
