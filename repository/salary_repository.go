package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"insurecalc/database"
	"insurecalc/models"
)

// SalaryRepository implements the SalaryRepository interface
type SalaryRepository struct {
	q queryable
}

// NewSalaryRepository creates a new salary repository
func NewSalaryRepository(db *database.DB) *SalaryRepository {
	return &SalaryRepository{q: db.Pool}
}

// newSalaryRepositoryWithTx creates a new salary repository with a transaction
func newSalaryRepositoryWithTx(tx queryable) *SalaryRepository {
	return &SalaryRepository{q: tx}
}

// ListAll returns every salary record in insertion order
func (r *SalaryRepository) ListAll(ctx context.Context) ([]*models.SalaryRecord, error) {
	query := `
		SELECT id, employee_id, employee_name, month, salary_amount
		FROM salaries
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query salaries: %w", err)
	}
	defer rows.Close()

	var salaries []*models.SalaryRecord
	for rows.Next() {
		var s models.SalaryRecord
		err := rows.Scan(
			&s.ID,
			&s.EmployeeID,
			&s.EmployeeName,
			&s.Month,
			&s.SalaryAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary: %w", err)
		}
		salaries = append(salaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating salaries: %w", err)
	}

	return salaries, nil
}

// ReplaceAll deletes every salary record and bulk-inserts the given set.
// Must run inside a unit of work for the delete and insert to be atomic.
func (r *SalaryRepository) ReplaceAll(ctx context.Context, salaries []models.SalaryRecord) (int64, error) {
	if _, err := r.q.Exec(ctx, `DELETE FROM salaries`); err != nil {
		return 0, fmt.Errorf("failed to clear salaries: %w", err)
	}

	inserted, err := r.q.CopyFrom(ctx,
		pgx.Identifier{"salaries"},
		[]string{"employee_id", "employee_name", "month", "salary_amount"},
		pgx.CopyFromSlice(len(salaries), func(i int) ([]any, error) {
			s := salaries[i]
			return []any{s.EmployeeID, s.EmployeeName, s.Month, s.SalaryAmount}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert salaries: %w", err)
	}
	return inserted, nil
}

// Count returns the number of stored salary records
func (r *SalaryRepository) Count(ctx context.Context) (int64, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM salaries`)
	if err != nil {
		return 0, fmt.Errorf("failed to count salaries: %w", err)
	}
	return n, nil
}

// CountDistinctEmployees returns the number of distinct employee names
func (r *SalaryRepository) CountDistinctEmployees(ctx context.Context) (int64, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(DISTINCT employee_name) FROM salaries`)
	if err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return n, nil
}
