// Package render projects a sheet into its output formats. All four targets
// consume one shared layout derivation, so a given sheet renders
// byte-identical output on every call; renderers never read wall-clock time.
package render

import (
	"fmt"
	"regexp"

	"compliancehub/training/internal/sheet"
)

type Target string

const (
	TargetPrintHTML Target = "print-html"
	TargetFixedPage Target = "fixed-page-document"
	TargetWorkbook  Target = "workbook"
	TargetCalendar  Target = "calendar-event"
)

// ParseTarget maps the wire value onto a known target.
func ParseTarget(value string) (Target, error) {
	switch Target(value) {
	case TargetPrintHTML, TargetFixedPage, TargetWorkbook, TargetCalendar:
		return Target(value), nil
	}
	return "", fmt.Errorf("unknown render target %q", value)
}

type Artifact struct {
	Name      string
	MediaType string
	Data      []byte
}

// Row is one attendance table line. Signature and time-in stay blank on
// every target; they are filled in by hand on the printed form.
type Row struct {
	Seq            string
	Name           string
	OrganizationID string
	Company        string
}

// Layout is the format-agnostic intermediate every backend consumes.
type Layout struct {
	Title            string
	ClassTitle       string
	InstructorLine   string
	ScheduleLine     string
	LocationLine     string
	ReferenceLine    string
	Rows             []Row
	FooterSignature  string
	ComplianceNotice string
}

const (
	documentTitle    = "TRAINING SIGN-IN SHEET"
	complianceNotice = "By signing this sheet each participant certifies attendance for the " +
		"full duration of the training session listed above. This record is retained " +
		"as evidence of compliance training and must not be altered after signatures " +
		"are collected."
	// Attendee rows per page on the paginated targets. The header block
	// appears only on the first page, the footer only on the last page
	// that carries rows.
	rowsPerPage = 20
)

// Build derives the shared header/table/footer layout from a sheet. Row
// order is strictly roster order.
func Build(s sheet.Sheet) Layout {
	rows := make([]Row, len(s.Attendees))
	for i, a := range s.Attendees {
		rows[i] = Row{
			Seq:            fmt.Sprintf("%02d", i+1),
			Name:           a.Name,
			OrganizationID: a.OrganizationID,
			Company:        a.Company,
		}
	}

	schedule := "Date: " + s.Date
	if s.StartTime != "" {
		schedule += "    Time: " + s.StartTime
		if s.EndTime != "" {
			schedule += " - " + s.EndTime
		}
	}

	reference := s.TrainingType
	if s.CustomReference != "" {
		if reference != "" {
			reference += " / "
		}
		reference += s.CustomReference
	}
	if reference != "" {
		reference = "Standard: " + reference
	}

	location := ""
	if s.Location != "" {
		location = "Location: " + s.Location
	}

	return Layout{
		Title:            documentTitle,
		ClassTitle:       s.ClassTitle,
		InstructorLine:   "Instructor: " + s.Instructor.Line(),
		ScheduleLine:     schedule,
		LocationLine:     location,
		ReferenceLine:    reference,
		Rows:             rows,
		FooterSignature:  "Instructor Signature: _________________________    Date: " + s.Date,
		ComplianceNotice: complianceNotice,
	}
}

// headerLines returns the non-empty header block lines in display order.
func (l Layout) headerLines() []string {
	lines := []string{l.Title, l.ClassTitle, l.InstructorLine, l.ScheduleLine}
	if l.LocationLine != "" {
		lines = append(lines, l.LocationLine)
	}
	if l.ReferenceLine != "" {
		lines = append(lines, l.ReferenceLine)
	}
	return lines
}

func paginate(rows []Row) [][]Row {
	if len(rows) == 0 {
		return [][]Row{nil}
	}
	var pages [][]Row
	for start := 0; start < len(rows); start += rowsPerPage {
		end := start + rowsPerPage
		if end > len(rows) {
			end = len(rows)
		}
		pages = append(pages, rows[start:end])
	}
	return pages
}

var fileNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName builds the generated artifact name:
// <sanitizedClassTitle>_<isoDate>_SignIn.<ext>.
func FileName(s sheet.Sheet, ext string) string {
	title := fileNameSanitizer.ReplaceAllString(s.ClassTitle, "_")
	return fmt.Sprintf("%s_%s_SignIn.%s", title, s.Date, ext)
}
