package render

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"

	"compliancehub/training/internal/sheet"
)

// frozenTimestamp picks the sheet's own frozen instant for document
// metadata; renderers never consult the wall clock.
func frozenTimestamp(s sheet.Sheet) time.Time {
	if s.GeneratedAt != nil {
		return *s.GeneratedAt
	}
	return s.CreatedAt
}

// renderPDF emits the fixed-layout page document. Pagination mirrors the
// print target: header on page one, footer on the last page with rows.
func renderPDF(layout Layout, createdAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(createdAt)
	pdf.SetModificationDate(createdAt)
	pdf.SetTitle(layout.Title, true)

	columns := []struct {
		title string
		width float64
	}{
		{"#", 10},
		{"Name", 50},
		{"ID / Email", 40},
		{"Company", 40},
		{"Signature", 30},
		{"Time In", 20},
	}

	pages := paginate(layout.Rows)
	for pageIndex, page := range pages {
		pdf.AddPage()
		if pageIndex == 0 {
			pdf.SetFont("Helvetica", "B", 16)
			pdf.CellFormat(0, 10, layout.Title, "", 1, "C", false, 0, "")
			pdf.SetFont("Helvetica", "B", 13)
			pdf.CellFormat(0, 8, layout.ClassTitle, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			pdf.CellFormat(0, 6, layout.InstructorLine, "", 1, "L", false, 0, "")
			pdf.CellFormat(0, 6, layout.ScheduleLine, "", 1, "L", false, 0, "")
			if layout.LocationLine != "" {
				pdf.CellFormat(0, 6, layout.LocationLine, "", 1, "L", false, 0, "")
			}
			if layout.ReferenceLine != "" {
				pdf.CellFormat(0, 6, layout.ReferenceLine, "", 1, "L", false, 0, "")
			}
			pdf.Ln(4)
		}

		pdf.SetFont("Helvetica", "B", 10)
		for _, column := range columns {
			pdf.CellFormat(column.width, 8, column.title, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		for _, row := range page {
			cells := []string{row.Seq, row.Name, row.OrganizationID, row.Company, "", ""}
			for i, column := range columns {
				pdf.CellFormat(column.width, 8, cells[i], "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}

		if pageIndex == len(pages)-1 {
			pdf.Ln(8)
			pdf.SetFont("Helvetica", "", 11)
			pdf.CellFormat(0, 8, layout.FooterSignature, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "I", 8)
			pdf.MultiCell(0, 4, layout.ComplianceNotice, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
