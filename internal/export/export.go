// Package export renders the task collection as json, csv or pdf.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"todo-backend/internal/tasks"
)

type Source interface {
	FindAll(ctx context.Context) ([]tasks.Task, error)
}

type Exporter struct{ src Source }

func NewExporter(src Source) *Exporter { return &Exporter{src: src} }

// ContentType returns the MIME type for a supported format, or "" if the
// format is unknown.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "application/json"
	case "csv":
		return "text/csv"
	case "pdf":
		return "application/pdf"
	}
	return ""
}

func (e *Exporter) Export(ctx context.Context, format string) ([]byte, error) {
	if ContentType(format) == "" {
		return nil, fmt.Errorf("unknown format %s", format)
	}
	all, err := e.src.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []tasks.Task{}
	}

	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(all, "", "  ")
	case "csv":
		return writeCSV(all)
	default:
		return writePDF(all)
	}
}

func writeCSV(all []tasks.Task) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "text", "category", "priority", "completed"})
	for _, t := range all {
		_ = w.Write([]string{t.ID, t.Text, t.Category, string(t.Priority), strconv.FormatBool(t.Completed)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// writePDF lists tasks grouped by category in first-seen order.
func writePDF(all []tasks.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Todo List")
	pdf.Ln(12)

	var order []string
	groups := map[string][]tasks.Task{}
	for _, t := range all {
		if _, ok := groups[t.Category]; !ok {
			order = append(order, t.Category)
		}
		groups[t.Category] = append(groups[t.Category], t)
	}

	for _, cat := range order {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, tr(cat))
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		for _, t := range groups[cat] {
			mark := "[ ]"
			if t.Completed {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s %s (%s)", mark, t.Text, t.Priority)
			pdf.MultiCell(0, 6, tr(line), "0", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Handler serves GET /todos/export?format=json|csv|pdf (json by default).
func Handler(e *Exporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if format == "" {
			format = "json"
		}
		ct := ContentType(format)
		if ct == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(tasks.ErrorResponse{Message: "unknown format " + format})
			return
		}

		b, err := e.Export(r.Context(), format)
		if err != nil {
			log.Printf("[ERROR] export %s: %v", format, err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(tasks.ErrorResponse{Message: "export failed"})
			return
		}

		w.Header().Set("Content-Type", ct)
		_, _ = w.Write(b)
	}
}
