package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"compliancehub/training/internal/sheet"
)

func sampleSheets() []sheet.Sheet {
	return []sheet.Sheet{
		{ID: "1", ClassTitle: "Forklift Certification", Instructor: sheet.Instructor{Name: "John Smith"}, Status: sheet.StatusGenerated, Attendees: make([]sheet.Attendee, 4)},
		{ID: "2", ClassTitle: "Fall Protection", Instructor: sheet.Instructor{Name: "Jane Doe"}, Location: "Yard 2", Status: sheet.StatusDraft},
		{ID: "3", ClassTitle: "Advanced Forklift Operations", Instructor: sheet.Instructor{Name: "John Smith"}, Status: sheet.StatusCompleted, Attendees: make([]sheet.Attendee, 2)},
		{ID: "4", ClassTitle: "First Aid", Instructor: sheet.Instructor{Name: "Jane Doe"}, Status: sheet.StatusUploaded, Attendees: make([]sheet.Attendee, 6)},
		{ID: "5", ClassTitle: "Confined Space Entry", Instructor: sheet.Instructor{Name: "John Smith"}, Location: "forklift bay", Status: sheet.StatusDraft},
	}
}

func TestFilterTextPreservesOrder(t *testing.T) {
	out := Filter(sampleSheets(), Query{Text: "forklift"})
	// Text matches class title OR location, case-insensitively.
	if len(out) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(out))
	}
	if out[0].ID != "1" || out[1].ID != "3" || out[2].ID != "5" {
		t.Fatalf("expected original relative order, got %s %s %s", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestFilterCombinesPredicates(t *testing.T) {
	out := Filter(sampleSheets(), Query{Text: "forklift", Instructor: "John Smith", Status: "generated"})
	if len(out) != 1 || out[0].ID != "1" {
		t.Fatalf("expected only sheet 1, got %d matches", len(out))
	}

	out = Filter(sampleSheets(), Query{Instructor: "Jane Doe"})
	if len(out) != 2 {
		t.Fatalf("expected exact instructor match to find 2, got %d", len(out))
	}
}

func TestSummarizeEmptySet(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalSheets != 0 || summary.TotalAttendees != 0 {
		t.Fatalf("expected zero totals, got %+v", summary)
	}
	if len(summary.ByStatus) != 4 {
		t.Fatalf("expected all four statuses present, got %v", summary.ByStatus)
	}
	for status, count := range summary.ByStatus {
		if count != 0 {
			t.Fatalf("expected %s count 0, got %d", status, count)
		}
	}
}

func TestSummarizeCounts(t *testing.T) {
	summary := Summarize(sampleSheets())
	if summary.TotalSheets != 5 {
		t.Fatalf("expected 5 sheets, got %d", summary.TotalSheets)
	}
	if summary.TotalAttendees != 12 {
		t.Fatalf("expected 12 attendees, got %d", summary.TotalAttendees)
	}
	if summary.ByStatus[sheet.StatusDraft] != 2 {
		t.Fatalf("expected 2 drafts, got %d", summary.ByStatus[sheet.StatusDraft])
	}
}

func TestDetailedCSVColumnOrder(t *testing.T) {
	artifact, err := Generate(sampleSheets()[:1], KindDetailed)
	if err != nil {
		t.Fatalf("generate detailed: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(artifact.Data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(records))
	}
	expected := []string{"Class Title", "Instructor", "Date", "Location", "Training Type", "Participants", "Status"}
	for i, column := range expected {
		if records[0][i] != column {
			t.Fatalf("expected column %d to be %q, got %q", i, column, records[0][i])
		}
	}
	if records[1][0] != "Forklift Certification" || records[1][5] != "4" || records[1][6] != "generated" {
		t.Fatalf("unexpected detail row %v", records[1])
	}
}

func TestSummaryReportOverEmptySet(t *testing.T) {
	artifact, err := Generate(nil, KindSummary)
	if err != nil {
		t.Fatalf("expected empty set to summarize, got %v", err)
	}
	var summary Summary
	if err := json.Unmarshal(artifact.Data, &summary); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if summary.TotalSheets != 0 {
		t.Fatalf("expected zero sheets, got %d", summary.TotalSheets)
	}
}

func TestAnalyticsReport(t *testing.T) {
	sheets := sampleSheets()
	sheets[0].TrainingType = "OSHA"
	sheets[2].TrainingType = "OSHA"
	artifact, err := Generate(sheets, KindAnalytics)
	if err != nil {
		t.Fatalf("generate analytics: %v", err)
	}
	if !bytes.HasPrefix(artifact.Data, []byte("%PDF")) {
		t.Fatalf("expected a PDF analytics document")
	}
	again, err := Generate(sheets, KindAnalytics)
	if err != nil {
		t.Fatalf("generate analytics again: %v", err)
	}
	if !bytes.Equal(artifact.Data, again.Data) {
		t.Fatalf("expected analytics output to be deterministic")
	}
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"summary", "detailed", "analytics"} {
		if _, err := ParseKind(valid); err != nil {
			t.Fatalf("expected kind %s to parse", valid)
		}
	}
	if _, err := ParseKind("everything"); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}
