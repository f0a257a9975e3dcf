package directory

import (
	"errors"
	"testing"

	"compliancehub/training/internal/sheet"
)

func TestAttendeeSnapshot(t *testing.T) {
	p := Person{
		ID:             "emp-42",
		FirstName:      "Maria",
		LastName:       "Lopez",
		OrganizationID: "E-1007",
		Company:        "Acme Industrial",
		Department:     "Maintenance",
	}
	a := Attendee(p, sheet.OriginInternal)
	if a.ID.Origin != sheet.OriginInternal || a.ID.Raw != "emp-42" {
		t.Fatalf("unexpected attendee id %+v", a.ID)
	}
	if a.Name != "Maria Lopez" {
		t.Fatalf("expected full name, got %q", a.Name)
	}
	if a.OrganizationID != "E-1007" || a.Company != "Acme Industrial" || a.Department != "Maintenance" {
		t.Fatalf("unexpected attendee %+v", a)
	}
}

func TestScanPeople(t *testing.T) {
	records := [][]string{
		{"1", "Ana", "Alvarez", "E-1", "Acme", "Safety"},
		{"2", "Ben", "Baker", "E-2", "Acme", "Ops"},
	}
	i := -1
	next := func() bool {
		i++
		return i < len(records)
	}
	scan := func(dest ...any) error {
		for j, d := range dest {
			*(d.(*string)) = records[i][j]
		}
		return nil
	}
	people, err := scanPeople(next, scan, func() error { return nil })
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(people) != 2 || people[0].FirstName != "Ana" || people[1].LastName != "Baker" {
		t.Fatalf("unexpected people %+v", people)
	}
}

func TestScanPeopleRowsError(t *testing.T) {
	rowsErr := errors.New("connection reset")
	_, err := scanPeople(func() bool { return false }, nil, func() error { return rowsErr })
	if !errors.Is(err, rowsErr) {
		t.Fatalf("expected rows error, got %v", err)
	}
}
