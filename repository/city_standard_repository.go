package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"insurecalc/database"
	"insurecalc/models"
)

// CityStandardRepository implements the CityStandardRepository interface
type CityStandardRepository struct {
	q queryable
}

// NewCityStandardRepository creates a new city standard repository
func NewCityStandardRepository(db *database.DB) *CityStandardRepository {
	return &CityStandardRepository{q: db.Pool}
}

// newCityStandardRepositoryWithTx creates a new city standard repository with a transaction
func newCityStandardRepositoryWithTx(tx queryable) *CityStandardRepository {
	return &CityStandardRepository{q: tx}
}

const cityStandardColumns = `id, city_name, year, rate, base_min, base_max, created_at`

// List returns all city standards ordered by year desc, city asc
func (r *CityStandardRepository) List(ctx context.Context) ([]*models.CityStandard, error) {
	query := `
		SELECT ` + cityStandardColumns + `
		FROM city_standards
		ORDER BY year DESC, city_name COLLATE "C" ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list city standards: %w", err)
	}

	standards, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.CityStandard])
	if err != nil {
		return nil, fmt.Errorf("failed to scan city standards: %w", err)
	}
	return standards, nil
}

// FindByCityAndYear returns every row for the exact city name and year, ordered by id
func (r *CityStandardRepository) FindByCityAndYear(ctx context.Context, cityName, year string) ([]*models.CityStandard, error) {
	query := `
		SELECT ` + cityStandardColumns + `
		FROM city_standards
		WHERE city_name = $1 AND year = $2
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, cityName, year)
	if err != nil {
		return nil, fmt.Errorf("failed to find city standard for %s/%s: %w", cityName, year, err)
	}

	standards, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.CityStandard])
	if err != nil {
		return nil, fmt.Errorf("failed to scan city standards: %w", err)
	}
	return standards, nil
}

// ListCityYearPairs returns distinct (city, year) pairs ordered by year desc, city asc
func (r *CityStandardRepository) ListCityYearPairs(ctx context.Context) ([]models.CityYear, error) {
	query := `
		SELECT city_name, year
		FROM city_standards
		GROUP BY city_name, year
		ORDER BY year DESC, city_name COLLATE "C" ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list city/year pairs: %w", err)
	}

	pairs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.CityYear])
	if err != nil {
		return nil, fmt.Errorf("failed to scan city/year pairs: %w", err)
	}
	return pairs, nil
}

// ReplaceAll deletes every city standard and bulk-inserts the given set.
// Must run inside a unit of work for the delete and insert to be atomic.
func (r *CityStandardRepository) ReplaceAll(ctx context.Context, standards []models.CityStandard) (int64, error) {
	if _, err := r.q.Exec(ctx, `DELETE FROM city_standards`); err != nil {
		return 0, fmt.Errorf("failed to clear city standards: %w", err)
	}

	rows := make([][]any, len(standards))
	for i, s := range standards {
		rows[i] = []any{s.CityName, s.Year, s.Rate, s.BaseMin, s.BaseMax}
	}

	inserted, err := r.q.CopyFrom(ctx,
		pgx.Identifier{"city_standards"},
		[]string{"city_name", "year", "rate", "base_min", "base_max"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert city standards: %w", err)
	}
	return inserted, nil
}

// Count returns the number of stored city standards
func (r *CityStandardRepository) Count(ctx context.Context) (int64, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM city_standards`)
	if err != nil {
		return 0, fmt.Errorf("failed to count city standards: %w", err)
	}
	return n, nil
}
