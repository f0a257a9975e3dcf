package render

import (
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"

	"compliancehub/training/internal/sheet"
)

// renderCalendar emits a single time-bounded event whose description is the
// header-block text. DTSTAMP is pinned to the sheet's frozen timestamp so the
// output stays deterministic.
func (r *Renderer) renderCalendar(s sheet.Sheet, layout Layout) ([]byte, error) {
	start, err := s.SessionStart()
	if err != nil {
		return nil, fmt.Errorf("session start: %w", err)
	}
	end, err := s.SessionEnd()
	if err != nil {
		return nil, fmt.Errorf("session end: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ComplianceHub//Training//EN")

	event := cal.AddEvent(fmt.Sprintf("%s@%s", s.ID, r.IssuerDomain))
	stamp := frozenTimestamp(s)
	event.SetDtStampTime(stamp)
	event.SetCreatedTime(stamp)
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetSummary(s.ClassTitle)
	if s.Location != "" {
		event.SetLocation(s.Location)
	}
	event.SetDescription(strings.Join(layout.headerLines(), "\n"))

	return []byte(cal.Serialize()), nil
}
