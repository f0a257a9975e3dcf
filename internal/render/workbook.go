package render

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"compliancehub/training/internal/sheet"
)

const workbookSheetName = "Sign-In"

// renderWorkbook emits the tabular target: summary metadata fields followed
// by one flat record per attendee. The workbook is never paginated.
func renderWorkbook(s sheet.Sheet, layout Layout) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", workbookSheetName); err != nil {
		return nil, err
	}

	meta := [][]interface{}{
		{"Class Title", s.ClassTitle},
		{"Instructor", s.Instructor.Line()},
		{"Date", s.Date},
		{"Time", scheduleCell(s)},
		{"Location", s.Location},
		{"Standard", s.TrainingType},
		{"Participants", len(s.Attendees)},
	}
	rowIndex := 1
	for _, pair := range meta {
		for col, value := range pair {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIndex)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(workbookSheetName, cell, value); err != nil {
				return nil, err
			}
		}
		rowIndex++
	}

	rowIndex++
	header := []interface{}{"#", "Name", "ID / Email", "Company", "Signature", "Time In"}
	if err := setRow(f, rowIndex, header); err != nil {
		return nil, err
	}
	for _, row := range layout.Rows {
		rowIndex++
		if err := setRow(f, rowIndex, []interface{}{row.Seq, row.Name, row.OrganizationID, row.Company, "", ""}); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(workbookSheetName, "A", "D", 24); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, rowIndex int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowIndex)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(workbookSheetName, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func scheduleCell(s sheet.Sheet) string {
	if s.StartTime == "" {
		return ""
	}
	if s.EndTime == "" {
		return s.StartTime
	}
	return s.StartTime + " - " + s.EndTime
}
