package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"insurecalc/database"
	"insurecalc/models"
)

// resultsReplaceLockKey identifies the advisory lock held while the results table is replaced
const resultsReplaceLockKey int64 = 7_304_220_240_001

// ResultRepository implements the ResultRepository interface
type ResultRepository struct {
	q queryable
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *database.DB) *ResultRepository {
	return &ResultRepository{q: db.Pool}
}

// newResultRepositoryWithTx creates a new result repository with a transaction
func newResultRepositoryWithTx(tx queryable) *ResultRepository {
	return &ResultRepository{q: tx}
}

// LockForReplace blocks until no other transaction is replacing results.
// The lock is transaction scoped and released on commit or rollback.
func (r *ResultRepository) LockForReplace(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, resultsReplaceLockKey); err != nil {
		return fmt.Errorf("failed to acquire results lock: %w", err)
	}
	return nil
}

// ReplaceAll deletes every result and bulk-inserts the given set.
// Every row of one call shares the transaction's created_at.
func (r *ResultRepository) ReplaceAll(ctx context.Context, results []models.ComputationResult) (int64, error) {
	if _, err := r.q.Exec(ctx, `DELETE FROM results`); err != nil {
		return 0, fmt.Errorf("failed to clear results: %w", err)
	}

	inserted, err := r.q.CopyFrom(ctx,
		pgx.Identifier{"results"},
		[]string{"run_id", "city_name", "year", "employee_id", "employee_name", "avg_salary", "contribution_base", "company_fee"},
		pgx.CopyFromSlice(len(results), func(i int) ([]any, error) {
			res := results[i]
			return []any{
				res.RunID,
				res.CityName,
				res.Year,
				res.EmployeeID,
				res.EmployeeName,
				res.AvgSalary,
				res.ContributionBase,
				res.CompanyFee,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert results: %w", err)
	}
	return inserted, nil
}

// List returns all results, newest first, then by employee name
func (r *ResultRepository) List(ctx context.Context) ([]*models.ComputationResult, error) {
	query := `
		SELECT id, run_id, city_name, year, employee_id, employee_name,
		       avg_salary, contribution_base, company_fee, created_at
		FROM results
		ORDER BY created_at DESC, employee_name COLLATE "C" ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.ComputationResult])
	if err != nil {
		return nil, fmt.Errorf("failed to scan results: %w", err)
	}
	return results, nil
}

// Count returns the number of stored results
func (r *ResultRepository) Count(ctx context.Context) (int64, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM results`)
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return n, nil
}
