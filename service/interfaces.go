package service

import (
	"context"

	"insurecalc/events"
	"insurecalc/models"
)

// CityStandardRepository defines the interface for city standard data access
type CityStandardRepository interface {
	// List returns all city standards ordered by year desc, city asc
	List(ctx context.Context) ([]*models.CityStandard, error)

	// FindByCityAndYear returns every row matching the exact city name and year, ordered by id
	FindByCityAndYear(ctx context.Context, cityName, year string) ([]*models.CityStandard, error)

	// ListCityYearPairs returns distinct (city, year) pairs ordered by year desc, city asc
	ListCityYearPairs(ctx context.Context) ([]models.CityYear, error)

	// ReplaceAll deletes every city standard and inserts the given set
	ReplaceAll(ctx context.Context, standards []models.CityStandard) (int64, error)

	// Count returns the number of stored city standards
	Count(ctx context.Context) (int64, error)
}

// SalaryRepository defines the interface for salary record data access
type SalaryRepository interface {
	// ListAll returns every salary record
	ListAll(ctx context.Context) ([]*models.SalaryRecord, error)

	// ReplaceAll deletes every salary record and inserts the given set
	ReplaceAll(ctx context.Context, salaries []models.SalaryRecord) (int64, error)

	// Count returns the number of stored salary records
	Count(ctx context.Context) (int64, error)

	// CountDistinctEmployees returns the number of distinct employee names
	CountDistinctEmployees(ctx context.Context) (int64, error)
}

// ResultRepository defines the interface for computation result data access
type ResultRepository interface {
	// LockForReplace takes the transaction-scoped lock that serializes result replacement
	// across processes. It is released on commit or rollback.
	LockForReplace(ctx context.Context) error

	// ReplaceAll deletes every result and inserts the given set
	ReplaceAll(ctx context.Context, results []models.ComputationResult) (int64, error)

	// List returns all results, newest first
	List(ctx context.Context) ([]*models.ComputationResult, error)

	// Count returns the number of stored results
	Count(ctx context.Context) (int64, error)
}

// EventPublisher queues domain events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes queued events
	Commit() error

	// Rollback rolls back the transaction and discards queued events
	Rollback() error

	CityStandardRepository() CityStandardRepository
	SalaryRepository() SalaryRepository
	ResultRepository() ResultRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// ContributionService computes and reports contribution results
type ContributionService interface {
	// ComputeContributions computes every employee's contribution for the city standard and
	// replaces the stored results with the new set
	ComputeContributions(ctx context.Context, cityName, year string) ([]models.ComputationResult, error)

	// ListAvailableCityYearPairs returns the selectable (city, year) pairs
	ListAvailableCityYearPairs(ctx context.Context) ([]models.CityYear, error)

	// ListResults returns the current result set, newest first
	ListResults(ctx context.Context) ([]*models.ComputationResult, error)

	// Statistics returns row counts for the three datasets
	Statistics(ctx context.Context) (*models.DataStatistics, error)
}

// ImportService bulk-replaces the input datasets
type ImportService interface {
	// ImportCityStandards validates and replaces all city standards
	ImportCityStandards(ctx context.Context, standards []models.CityStandard) (int, error)

	// ImportSalaries validates and replaces all salary records
	ImportSalaries(ctx context.Context, salaries []models.SalaryRecord) (int, error)

	// ListCityStandards returns all stored city standards
	ListCityStandards(ctx context.Context) ([]*models.CityStandard, error)
}
