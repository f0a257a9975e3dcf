package sheet

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusGenerated Status = "generated"
	StatusCompleted Status = "completed"
	StatusUploaded  Status = "uploaded"
)

// Origin tags which directory an attendee was taken from. Raw ids are only
// unique within their directory, so the attendee key is (origin, raw id).
type Origin string

const (
	OriginInternal Origin = "internal"
	OriginExternal Origin = "external"
)

type AttendeeID struct {
	Origin Origin `json:"origin"`
	Raw    string `json:"raw"`
}

func (id AttendeeID) String() string {
	return string(id.Origin) + ":" + id.Raw
}

func ParseAttendeeID(value string) (AttendeeID, error) {
	origin, raw, found := strings.Cut(value, ":")
	if !found || raw == "" {
		return AttendeeID{}, errors.New("invalid attendee id")
	}
	switch Origin(origin) {
	case OriginInternal, OriginExternal:
		return AttendeeID{Origin: Origin(origin), Raw: raw}, nil
	}
	return AttendeeID{}, fmt.Errorf("unknown attendee origin %q", origin)
}

// Attendee is one roster entry. OrganizationID carries the employee number
// for internal attendees and the email address for external ones.
type Attendee struct {
	ID             AttendeeID `json:"id"`
	Name           string     `json:"name"`
	OrganizationID string     `json:"organizationId"`
	Company        string     `json:"company"`
	Department     string     `json:"department,omitempty"`
}

// Instructor is either selected from the known roster or entered freely for
// a one-off visiting instructor; only the name is required.
type Instructor struct {
	Name        string `json:"name"`
	Credentials string `json:"credentials,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	Visiting    bool   `json:"visiting,omitempty"`
}

// Line renders the instructor descriptor the way every output format prints
// it: name, then " - credentials", then " (affiliation)".
func (i Instructor) Line() string {
	var b strings.Builder
	b.WriteString(i.Name)
	if i.Credentials != "" {
		b.WriteString(" - ")
		b.WriteString(i.Credentials)
	}
	if i.Affiliation != "" {
		b.WriteString(" (")
		b.WriteString(i.Affiliation)
		b.WriteString(")")
	}
	return b.String()
}

// Sheet is the canonical record of one training session and its roster.
// Attendees are snapshotted in at generation time; edits to the source
// directories never reach back into a generated sheet.
type Sheet struct {
	ID              string     `json:"id"`
	CreatedAt       time.Time  `json:"createdAt"`
	ClassTitle      string     `json:"classTitle"`
	TrainingType    string     `json:"trainingType,omitempty"`
	CustomReference string     `json:"customReference,omitempty"`
	Date            string     `json:"date"`
	StartTime       string     `json:"startTime,omitempty"`
	EndTime         string     `json:"endTime,omitempty"`
	Location        string     `json:"location,omitempty"`
	Instructor      Instructor `json:"instructor"`
	Attendees       []Attendee `json:"attendees"`
	Status          Status     `json:"status"`
	GeneratedAt     *time.Time `json:"generatedAt,omitempty"`
}

// Clone returns a deep copy so callers can hand snapshots out without
// exposing internal slices.
func (s Sheet) Clone() Sheet {
	out := s
	if s.Attendees != nil {
		out.Attendees = make([]Attendee, len(s.Attendees))
		copy(out.Attendees, s.Attendees)
	}
	if s.GeneratedAt != nil {
		at := *s.GeneratedAt
		out.GeneratedAt = &at
	}
	return out
}

const (
	defaultStartTime = "08:00"
	sessionDuration  = time.Hour
)

// SessionStart derives the session start instant from the sheet's date and
// start time. Drafts may not carry a parseable date yet.
func (s Sheet) SessionStart() (time.Time, error) {
	start := s.StartTime
	if start == "" {
		start = defaultStartTime
	}
	return time.Parse("2006-01-02 15:04", s.Date+" "+start)
}

// SessionEnd falls back to one hour after start when no end time is set.
func (s Sheet) SessionEnd() (time.Time, error) {
	start, err := s.SessionStart()
	if err != nil {
		return time.Time{}, err
	}
	if s.EndTime == "" {
		return start.Add(sessionDuration), nil
	}
	end, err := time.Parse("2006-01-02 15:04", s.Date+" "+s.EndTime)
	if err != nil {
		return time.Time{}, err
	}
	return end, nil
}

// AddAttendee appends an attendee unless the (origin, raw id) key is already
// on the roster. Order is preserved; rosters are never re-sorted.
func AddAttendee(list []Attendee, a Attendee) []Attendee {
	for _, existing := range list {
		if existing.ID == a.ID {
			return list
		}
	}
	out := make([]Attendee, len(list), len(list)+1)
	copy(out, list)
	return append(out, a)
}

// RemoveAttendee drops the entry matching the composite key, keeping order.
func RemoveAttendee(list []Attendee, id AttendeeID) []Attendee {
	out := make([]Attendee, 0, len(list))
	for _, a := range list {
		if a.ID == id {
			continue
		}
		out = append(out, a)
	}
	return out
}
