// Package report filters and summarizes collections of sheets. Reports are
// always computed from the set the caller filtered; there is no implicit
// fallback to the full collection.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"compliancehub/training/internal/render"
	"compliancehub/training/internal/sheet"
)

type Query struct {
	Text       string
	Status     string
	Instructor string
}

// Filter applies the text predicate (case-insensitive OR over class title,
// instructor name and location) AND-combined with exact status and
// instructor matches. Relative order of the input is preserved.
func Filter(sheets []sheet.Sheet, q Query) []sheet.Sheet {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]sheet.Sheet, 0, len(sheets))
	for _, s := range sheets {
		if text != "" && !matchesText(s, text) {
			continue
		}
		if q.Status != "" && string(s.Status) != q.Status {
			continue
		}
		if q.Instructor != "" && s.Instructor.Name != q.Instructor {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matchesText(s sheet.Sheet, text string) bool {
	return strings.Contains(strings.ToLower(s.ClassTitle), text) ||
		strings.Contains(strings.ToLower(s.Instructor.Name), text) ||
		strings.Contains(strings.ToLower(s.Location), text)
}

type Kind string

const (
	KindSummary   Kind = "summary"
	KindDetailed  Kind = "detailed"
	KindAnalytics Kind = "analytics"
)

func ParseKind(value string) (Kind, error) {
	switch Kind(value) {
	case KindSummary, KindDetailed, KindAnalytics:
		return Kind(value), nil
	}
	return "", fmt.Errorf("unknown report kind %q", value)
}

// Summary counts the filtered set by status. Every status appears in the
// result even at zero, so an empty set summarizes cleanly.
type Summary struct {
	TotalSheets    int                  `json:"totalSheets"`
	ByStatus       map[sheet.Status]int `json:"byStatus"`
	TotalAttendees int                  `json:"totalAttendees"`
}

func Summarize(sheets []sheet.Sheet) Summary {
	summary := Summary{
		ByStatus: map[sheet.Status]int{
			sheet.StatusDraft:     0,
			sheet.StatusGenerated: 0,
			sheet.StatusCompleted: 0,
			sheet.StatusUploaded:  0,
		},
	}
	for _, s := range sheets {
		summary.TotalSheets++
		summary.ByStatus[s.Status]++
		summary.TotalAttendees += len(s.Attendees)
	}
	return summary
}

// detailedColumns is the fixed export column order.
var detailedColumns = []string{"Class Title", "Instructor", "Date", "Location", "Training Type", "Participants", "Status"}

func detailedCSV(sheets []sheet.Sheet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(detailedColumns); err != nil {
		return nil, err
	}
	for _, s := range sheets {
		record := []string{
			s.ClassTitle,
			s.Instructor.Name,
			s.Date,
			s.Location,
			s.TrainingType,
			strconv.Itoa(len(s.Attendees)),
			string(s.Status),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// analyticsPDF groups the filtered set by training type and emits a
// fixed-layout breakdown document. The creation date is pinned to the newest
// sheet timestamp so identical inputs produce identical bytes.
func analyticsPDF(sheets []sheet.Sheet) ([]byte, error) {
	counts := make(map[string]int)
	attendees := make(map[string]int)
	for _, s := range sheets {
		key := s.TrainingType
		if key == "" {
			key = "Unclassified"
		}
		counts[key]++
		attendees[key] += len(s.Attendees)
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pdf := fpdf.New("P", "mm", "A4", "")
	pinned := newestTimestamp(sheets)
	pdf.SetCreationDate(pinned)
	pdf.SetModificationDate(pinned)
	pdf.SetTitle("Training Analytics", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Training Analytics", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 8, "Training Type", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 8, "Sessions", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 8, "Participants", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, key := range keys {
		pdf.CellFormat(90, 8, key, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 8, strconv.Itoa(counts[key]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 8, strconv.Itoa(attendees[key]), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newestTimestamp(sheets []sheet.Sheet) time.Time {
	newest := time.Unix(0, 0).UTC()
	for _, s := range sheets {
		if s.GeneratedAt != nil && s.GeneratedAt.After(newest) {
			newest = *s.GeneratedAt
		} else if s.CreatedAt.After(newest) {
			newest = s.CreatedAt
		}
	}
	return newest
}

// Generate produces the requested report artifact over exactly the sheets
// passed in.
func Generate(sheets []sheet.Sheet, kind Kind) (render.Artifact, error) {
	switch kind {
	case KindSummary:
		data, err := json.Marshal(Summarize(sheets))
		if err != nil {
			return render.Artifact{}, err
		}
		return render.Artifact{Name: "training_summary.json", MediaType: "application/json", Data: data}, nil
	case KindDetailed:
		data, err := detailedCSV(sheets)
		if err != nil {
			return render.Artifact{}, err
		}
		return render.Artifact{Name: "training_detailed.csv", MediaType: "text/csv; charset=utf-8", Data: data}, nil
	case KindAnalytics:
		data, err := analyticsPDF(sheets)
		if err != nil {
			return render.Artifact{}, err
		}
		return render.Artifact{Name: "training_analytics.pdf", MediaType: "application/pdf", Data: data}, nil
	}
	return render.Artifact{}, fmt.Errorf("unknown report kind %q", kind)
}
