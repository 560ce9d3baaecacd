// Package export renders batch scoring outcomes as CSV, JSON, plain text,
// and HTML.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/mayankjhn/omr-systemm/internal/sheet"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Entry is one scored sheet in a batch export.
type Entry struct {
	Filename    string        `json:"filename"`
	Report      *sheet.Report `json:"report"`
	ProcessedAt time.Time     `json:"processed_at"`
}

// WriteCSV writes one summary row per sheet.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)

	header := []string{
		"filename",
		"total_questions",
		"correct",
		"incorrect",
		"not_attempted",
		"multiple_marked",
		"percentage",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range entries {
		r := e.Report
		row := []string{
			e.Filename,
			strconv.Itoa(r.TotalQuestions),
			strconv.Itoa(r.Correct),
			strconv.Itoa(r.Incorrect),
			strconv.Itoa(r.NotAttempted),
			strconv.Itoa(r.MultipleMarked),
			formatPercent(r.Percentage),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", e.Filename, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDetailedCSV writes one row per question per sheet.
func WriteDetailedCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)

	header := []string{"filename", "question", "status", "selected", "answer"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range entries {
		for _, q := range e.Report.Questions {
			row := []string{
				e.Filename,
				strconv.Itoa(q.Question),
				string(q.Status),
				formatSelected(q.Selected),
				strconv.Itoa(q.Answer),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row for %s: %w", e.Filename, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// jsonExport is the top-level JSON document.
type jsonExport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Batch       *BatchReport `json:"batch"`
	Sheets      []Entry      `json:"sheets"`
}

// WriteJSON writes the full batch, each sheet's complete report plus the
// aggregate statistics, as an indented JSON document.
func WriteJSON(w io.Writer, entries []Entry) error {
	doc := jsonExport{
		GeneratedAt: time.Now().UTC(),
		Batch:       NewBatchReport(entries),
		Sheets:      entries,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON export: %w", err)
	}
	return nil
}

// Summary renders one sheet's report as human-readable text.
func Summary(e Entry) string {
	r := e.Report
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", e.Filename)
	fmt.Fprintf(&b, "  Score: %d/%d (%s%%)\n", r.Correct, r.TotalQuestions, formatPercent(r.Percentage))
	fmt.Fprintf(&b, "  Incorrect: %d  Not attempted: %d  Multiple marked: %d\n",
		r.Incorrect, r.NotAttempted, r.MultipleMarked)

	for _, s := range r.Subjects {
		fmt.Fprintf(&b, "  %s (Q%d-%d): %d/%d (%s%%)\n",
			s.Name, s.From, s.To, s.Correct, s.Total, formatPercent(s.Percentage))
	}

	return b.String()
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatSelected(selected []int) string {
	if len(selected) == 0 {
		return ""
	}
	parts := make([]string, len(selected))
	for i, s := range selected {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ";")
}
