package render

import (
	"fmt"

	"compliancehub/training/internal/sheet"
)

// Renderer is the single entry point over the four target backends. The
// issuer domain only feeds the calendar target's event UID.
type Renderer struct {
	IssuerDomain string
}

func New(issuerDomain string) *Renderer {
	if issuerDomain == "" {
		issuerDomain = "compliancehub.local"
	}
	return &Renderer{IssuerDomain: issuerDomain}
}

// Render projects the sheet into the requested target. Output depends only
// on the sheet's own frozen fields, so identical sheets render identical
// bytes.
func (r *Renderer) Render(s sheet.Sheet, target Target) (Artifact, error) {
	layout := Build(s)
	switch target {
	case TargetPrintHTML:
		return Artifact{
			Name:      FileName(s, "html"),
			MediaType: "text/html; charset=utf-8",
			Data:      renderHTML(layout),
		}, nil
	case TargetFixedPage:
		data, err := renderPDF(layout, frozenTimestamp(s))
		if err != nil {
			return Artifact{}, fmt.Errorf("render fixed page document: %w", err)
		}
		return Artifact{
			Name:      FileName(s, "pdf"),
			MediaType: "application/pdf",
			Data:      data,
		}, nil
	case TargetWorkbook:
		data, err := renderWorkbook(s, layout)
		if err != nil {
			return Artifact{}, fmt.Errorf("render workbook: %w", err)
		}
		return Artifact{
			Name:      FileName(s, "xlsx"),
			MediaType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:      data,
		}, nil
	case TargetCalendar:
		data, err := r.renderCalendar(s, layout)
		if err != nil {
			return Artifact{}, fmt.Errorf("render calendar event: %w", err)
		}
		return Artifact{
			Name:      FileName(s, "ics"),
			MediaType: "text/calendar; charset=utf-8",
			Data:      data,
		}, nil
	}
	return Artifact{}, fmt.Errorf("unknown render target %q", target)
}
