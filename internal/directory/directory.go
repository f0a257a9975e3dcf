// Package directory is the read-only lookup over the employee and external
// student directories. The service never writes back to these tables.
package directory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"compliancehub/training/internal/sheet"
)

type Person struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	OrganizationID string `json:"organizationId"`
	Company        string `json:"company"`
	Department     string `json:"department"`
}

type Store struct {
	pool *pgxpool.Pool
}

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, databaseURL)
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) ListInternal(ctx context.Context) ([]Person, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, first_name, last_name, employee_number, company, department
		FROM employees
		ORDER BY last_name, first_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPeople(rows.Next, rows.Scan, rows.Err)
}

func (s *Store) SearchExternal(ctx context.Context, query string) ([]Person, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, first_name, last_name, email, company, department
		FROM external_students
		WHERE first_name ILIKE '%' || $1 || '%'
		   OR last_name ILIKE '%' || $1 || '%'
		   OR company ILIKE '%' || $1 || '%'
		ORDER BY last_name, first_name
	`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPeople(rows.Next, rows.Scan, rows.Err)
}

func scanPeople(next func() bool, scan func(...any) error, rowsErr func() error) ([]Person, error) {
	var out []Person
	for next() {
		var p Person
		if err := scan(&p.ID, &p.FirstName, &p.LastName, &p.OrganizationID, &p.Company, &p.Department); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rowsErr()
}

// Attendee snapshots a directory person into a sheet roster entry tagged
// with its origin.
func Attendee(p Person, origin sheet.Origin) sheet.Attendee {
	return sheet.Attendee{
		ID:             sheet.AttendeeID{Origin: origin, Raw: p.ID},
		Name:           p.FirstName + " " + p.LastName,
		OrganizationID: p.OrganizationID,
		Company:        p.Company,
		Department:     p.Department,
	}
}
