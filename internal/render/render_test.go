package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"compliancehub/training/internal/sheet"
)

func testSheet(attendees int) sheet.Sheet {
	generatedAt := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	s := sheet.Sheet{
		ID:           "11111111-1111-1111-1111-111111111111",
		CreatedAt:    generatedAt.Add(-time.Hour),
		ClassTitle:   "Fall Protection Training",
		TrainingType: "OSHA 1926.503",
		Date:         "2025-01-15",
		StartTime:    "09:00",
		EndTime:      "11:00",
		Location:     "Training Room B",
		Instructor:   sheet.Instructor{Name: "John Smith", Credentials: "OSHA Authorized", Affiliation: "Acme Safety"},
		Status:       sheet.StatusGenerated,
		GeneratedAt:  &generatedAt,
	}
	for i := 0; i < attendees; i++ {
		s.Attendees = append(s.Attendees, sheet.Attendee{
			ID:             sheet.AttendeeID{Origin: sheet.OriginInternal, Raw: fmt.Sprintf("e-%d", i+1)},
			Name:           fmt.Sprintf("Worker %d", i+1),
			OrganizationID: fmt.Sprintf("EMP-%03d", i+1),
			Company:        "Acme Corp",
		})
	}
	return s
}

func TestRenderIsDeterministic(t *testing.T) {
	renderer := New("compliancehub.local")
	s := testSheet(3)
	for _, target := range []Target{TargetPrintHTML, TargetFixedPage, TargetWorkbook, TargetCalendar} {
		first, err := renderer.Render(s, target)
		if err != nil {
			t.Fatalf("render %s: %v", target, err)
		}
		second, err := renderer.Render(s, target)
		if err != nil {
			t.Fatalf("render %s again: %v", target, err)
		}
		if !bytes.Equal(first.Data, second.Data) {
			t.Fatalf("target %s is not byte-deterministic", target)
		}
		if first.Name != second.Name || first.MediaType != second.MediaType {
			t.Fatalf("target %s descriptor differs between calls", target)
		}
	}
}

func TestHTMLRowCountAndOrder(t *testing.T) {
	renderer := New("compliancehub.local")
	s := testSheet(3)
	artifact, err := renderer.Render(s, TargetPrintHTML)
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	html := string(artifact.Data)
	if got := strings.Count(html, "<tr class=\"attendee\">"); got != 3 {
		t.Fatalf("expected 3 attendee rows, got %d", got)
	}
	// Roster order, never re-sorted; sequence numbers zero-padded.
	if !strings.Contains(html, "<td>01</td><td>Worker 1</td>") {
		t.Fatalf("expected first row seq 01 for Worker 1")
	}
	first := strings.Index(html, "Worker 1")
	last := strings.Index(html, "Worker 3")
	if first < 0 || last < 0 || first > last {
		t.Fatalf("expected roster order preserved")
	}
}

func TestHTMLPagination(t *testing.T) {
	renderer := New("compliancehub.local")
	s := testSheet(45)
	artifact, err := renderer.Render(s, TargetPrintHTML)
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	html := string(artifact.Data)
	if got := strings.Count(html, "<div class=\"page\">"); got != 3 {
		t.Fatalf("expected 3 pages for 45 rows at 20 per page, got %d", got)
	}
	// Header once, footer once.
	if got := strings.Count(html, "<h1>"); got != 1 {
		t.Fatalf("expected a single header block, got %d", got)
	}
	if got := strings.Count(html, "Instructor Signature"); got != 1 {
		t.Fatalf("expected a single footer block, got %d", got)
	}
	lastPage := html[strings.LastIndex(html, "<div class=\"page\">"):]
	if !strings.Contains(lastPage, "Instructor Signature") {
		t.Fatalf("expected footer on the last page")
	}
}

func TestPDFPagination(t *testing.T) {
	renderer := New("compliancehub.local")
	s := testSheet(45)
	artifact, err := renderer.Render(s, TargetFixedPage)
	if err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if !bytes.HasPrefix(artifact.Data, []byte("%PDF")) {
		t.Fatalf("expected a PDF document")
	}
	if !bytes.Contains(artifact.Data, []byte("/Count 3")) {
		t.Fatalf("expected 3 pages for 45 rows")
	}
}

func TestWorkbookRows(t *testing.T) {
	renderer := New("compliancehub.local")
	s := testSheet(3)
	artifact, err := renderer.Render(s, TargetWorkbook)
	if err != nil {
		t.Fatalf("render workbook: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(workbookSheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	// 7 metadata rows, one blank, one table header, then one flat record
	// per attendee.
	if len(rows) != 7+1+1+3 {
		t.Fatalf("expected 12 rows, got %d", len(rows))
	}
	lastRow := rows[len(rows)-1]
	if lastRow[0] != "03" || lastRow[1] != "Worker 3" {
		t.Fatalf("expected final attendee record, got %v", lastRow)
	}
}

func TestCalendarEvent(t *testing.T) {
	renderer := New("compliancehub.local")
	s := testSheet(2)
	artifact, err := renderer.Render(s, TargetCalendar)
	if err != nil {
		t.Fatalf("render calendar: %v", err)
	}
	text := string(artifact.Data)
	if !strings.Contains(text, "BEGIN:VEVENT") {
		t.Fatalf("expected a VEVENT")
	}
	if !strings.Contains(text, "UID:11111111-1111-1111-1111-111111111111@compliancehub.local") {
		t.Fatalf("expected sheet-keyed UID, got:\n%s", text)
	}
	if !strings.Contains(text, "DTSTART:20250115T090000Z") {
		t.Fatalf("expected session start in event, got:\n%s", text)
	}
	if !strings.Contains(text, "DTEND:20250115T110000Z") {
		t.Fatalf("expected session end in event, got:\n%s", text)
	}
}

func TestFileName(t *testing.T) {
	s := testSheet(1)
	if got := FileName(s, "pdf"); got != "Fall_Protection_Training_2025-01-15_SignIn.pdf" {
		t.Fatalf("unexpected file name %q", got)
	}
	s.ClassTitle = "Lockout/Tagout (LOTO) 101"
	if got := FileName(s, "xlsx"); got != "Lockout_Tagout__LOTO__101_2025-01-15_SignIn.xlsx" {
		t.Fatalf("unexpected sanitized file name %q", got)
	}
}

func TestParseTarget(t *testing.T) {
	for _, valid := range []string{"print-html", "fixed-page-document", "workbook", "calendar-event"} {
		if _, err := ParseTarget(valid); err != nil {
			t.Fatalf("expected target %s to parse", valid)
		}
	}
	if _, err := ParseTarget("docx"); err == nil {
		t.Fatalf("expected unknown target to fail")
	}
}
