package render

import (
	"html"
	"strings"
)

// renderHTML emits the paginated print markup. Each page is a block styled
// for print page breaks; the header block appears once on the first page and
// the footer once on the last page carrying rows.
func renderHTML(layout Layout) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + html.EscapeString(layout.Title) + "</title>\n")
	b.WriteString("<style>\n")
	b.WriteString("body { font-family: Arial, sans-serif; margin: 24px; }\n")
	b.WriteString(".page { page-break-after: always; }\n")
	b.WriteString(".page:last-child { page-break-after: auto; }\n")
	b.WriteString("h1 { font-size: 18px; text-align: center; }\n")
	b.WriteString("h2 { font-size: 15px; }\n")
	b.WriteString("table { width: 100%; border-collapse: collapse; margin-top: 12px; }\n")
	b.WriteString("th, td { border: 1px solid #000; padding: 6px; font-size: 12px; text-align: left; }\n")
	b.WriteString(".notice { font-size: 10px; margin-top: 18px; }\n")
	b.WriteString("</style>\n</head>\n<body>\n")

	pages := paginate(layout.Rows)
	for pageIndex, page := range pages {
		b.WriteString("<div class=\"page\">\n")
		if pageIndex == 0 {
			b.WriteString("<h1>" + html.EscapeString(layout.Title) + "</h1>\n")
			b.WriteString("<h2>" + html.EscapeString(layout.ClassTitle) + "</h2>\n")
			b.WriteString("<p>" + html.EscapeString(layout.InstructorLine) + "</p>\n")
			b.WriteString("<p>" + html.EscapeString(layout.ScheduleLine) + "</p>\n")
			if layout.LocationLine != "" {
				b.WriteString("<p>" + html.EscapeString(layout.LocationLine) + "</p>\n")
			}
			if layout.ReferenceLine != "" {
				b.WriteString("<p>" + html.EscapeString(layout.ReferenceLine) + "</p>\n")
			}
		}
		b.WriteString("<table>\n<thead>\n<tr>")
		for _, column := range []string{"#", "Name", "ID / Email", "Company", "Signature", "Time In"} {
			b.WriteString("<th>" + column + "</th>")
		}
		b.WriteString("</tr>\n</thead>\n<tbody>\n")
		for _, row := range page {
			b.WriteString("<tr class=\"attendee\">")
			b.WriteString("<td>" + row.Seq + "</td>")
			b.WriteString("<td>" + html.EscapeString(row.Name) + "</td>")
			b.WriteString("<td>" + html.EscapeString(row.OrganizationID) + "</td>")
			b.WriteString("<td>" + html.EscapeString(row.Company) + "</td>")
			b.WriteString("<td>&nbsp;</td><td>&nbsp;</td>")
			b.WriteString("</tr>\n")
		}
		b.WriteString("</tbody>\n</table>\n")
		if pageIndex == len(pages)-1 {
			b.WriteString("<p>" + html.EscapeString(layout.FooterSignature) + "</p>\n")
			b.WriteString("<p class=\"notice\">" + html.EscapeString(layout.ComplianceNotice) + "</p>\n")
		}
		b.WriteString("</div>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}
