package sheet

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError lists the required fields a draft is still missing. It is
// recoverable: the caller fixes the draft and retries.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// ValidateForGeneration checks the invariant a sheet must satisfy before it
// can leave draft: class title, instructor name, date, and at least one
// attendee. It never mutates the sheet.
func ValidateForGeneration(s Sheet) error {
	var missing []string
	if strings.TrimSpace(s.ClassTitle) == "" {
		missing = append(missing, "classTitle")
	}
	if strings.TrimSpace(s.Instructor.Name) == "" {
		missing = append(missing, "instructorName")
	}
	if strings.TrimSpace(s.Date) == "" {
		missing = append(missing, "date")
	}
	if len(s.Attendees) == 0 {
		missing = append(missing, "attendees")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Generate freezes a valid draft: stamps the generation timestamp and moves
// the status to generated. On validation failure the input is returned
// untouched.
func Generate(s Sheet, now time.Time) (Sheet, error) {
	if err := ValidateForGeneration(s); err != nil {
		return s, err
	}
	out := s.Clone()
	at := now.UTC()
	out.GeneratedAt = &at
	out.Status = StatusGenerated
	return out, nil
}
