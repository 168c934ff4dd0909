package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"insurecalc/events"
	"insurecalc/models"
)

// ContributionOptions configures a ContributionService
type ContributionOptions struct {
	CityAliases map[string]string
	TieBreak    TieBreak
	Grouping    GroupingKey
}

type contributionService struct {
	uowFactory UnitOfWorkFactory
	resolver   *CityResolver
	grouping   GroupingKey
	newRunID   func() uuid.UUID

	// There is exactly one results dataset, so runs in this process take turns.
	// Runs in other processes are held off by ResultRepository.LockForReplace.
	mu sync.Mutex
}

// NewContributionService creates a new contribution service
func NewContributionService(uowFactory UnitOfWorkFactory, opts ContributionOptions) ContributionService {
	grouping := opts.Grouping
	if grouping == "" {
		grouping = GroupByEmployeeName
	}
	return &contributionService{
		uowFactory: uowFactory,
		resolver:   NewCityResolver(opts.CityAliases, opts.TieBreak),
		grouping:   grouping,
		newRunID:   uuid.New,
	}
}

// ComputeContributions runs validate, resolve, aggregate, calculate and replace as one unit.
// Any failure rolls the transaction back, leaving the previous results in place.
func (s *contributionService) ComputeContributions(ctx context.Context, cityName, year string) ([]models.ComputationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := log.WithFields(log.Fields{
		"city": cityName,
		"year": year,
	})

	if err := ValidateCalculationRequest(cityName, year); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("failed to begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.ResultRepository().LockForReplace(ctx); err != nil {
		return nil, storageError("failed to lock results for replacement", err)
	}

	standard, err := s.resolver.Resolve(ctx, uow.CityStandardRepository(), cityName, year)
	if err != nil {
		logger.WithError(err).Warn("City standard resolution failed")
		return nil, err
	}

	salaries, err := uow.SalaryRepository().ListAll(ctx)
	if err != nil {
		return nil, storageError("failed to load salary data", err)
	}
	if len(salaries) == 0 {
		return nil, &Error{
			Kind:    ErrNoSalaryData,
			Message: "no salary data found; import salaries before calculating",
		}
	}

	averages := AggregateSalaries(salaries, s.grouping)

	runID := s.newRunID()
	results := make([]models.ComputationResult, 0, len(averages))
	var totalFee float64
	for _, avg := range averages {
		result := CalculateContribution(avg, standard)
		result.RunID = runID
		results = append(results, result)
		totalFee += result.CompanyFee
	}

	if _, err := uow.ResultRepository().ReplaceAll(ctx, results); err != nil {
		return nil, storageError("failed to save results; previous results were kept, please retry the calculation", err)
	}

	uow.EventBus().Publish(events.ResultsReplacedEvent{
		RunID:           runID,
		RequestedCity:   cityName,
		CityName:        standard.CityName,
		Year:            standard.Year,
		EmployeeCount:   len(results),
		TotalCompanyFee: Round2(totalFee),
	})

	if err := uow.Commit(); err != nil {
		return nil, storageError("failed to commit results; previous results were kept, please retry the calculation", err)
	}

	logger.WithFields(log.Fields{
		"runID":           runID,
		"standardID":      standard.ID,
		"salaryRecords":   len(salaries),
		"employeeCount":   len(results),
		"totalCompanyFee": Round2(totalFee),
	}).Info("Computed contributions")

	return results, nil
}

// ListAvailableCityYearPairs returns distinct (city, year) pairs, newest year first
func (s *contributionService) ListAvailableCityYearPairs(ctx context.Context) ([]models.CityYear, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	pairs, err := uow.CityStandardRepository().ListCityYearPairs(ctx)
	if err != nil {
		return nil, storageError("failed to list cities", err)
	}
	return pairs, nil
}

// ListResults returns the current result set
func (s *contributionService) ListResults(ctx context.Context) ([]*models.ComputationResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	results, err := uow.ResultRepository().List(ctx)
	if err != nil {
		return nil, storageError("failed to list results", err)
	}
	return results, nil
}

// Statistics returns row counts for every dataset and the number of distinct employees
func (s *contributionService) Statistics(ctx context.Context) (*models.DataStatistics, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	stats := &models.DataStatistics{}
	counts := []struct {
		name  string
		dest  *int64
		count func(context.Context) (int64, error)
	}{
		{"city standards", &stats.CitiesCount, uow.CityStandardRepository().Count},
		{"salaries", &stats.SalariesCount, uow.SalaryRepository().Count},
		{"results", &stats.ResultsCount, uow.ResultRepository().Count},
		{"employees", &stats.EmployeesCount, uow.SalaryRepository().CountDistinctEmployees},
	}
	for _, c := range counts {
		n, err := c.count(ctx)
		if err != nil {
			return nil, storageError(fmt.Sprintf("failed to count %s", c.name), err)
		}
		*c.dest = n
	}

	return stats, nil
}
