package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"insurecalc/events"
	"insurecalc/models"
)

// MockCityStandardRepository is a mock implementation of CityStandardRepository
type MockCityStandardRepository struct {
	mock.Mock
}

func (m *MockCityStandardRepository) List(ctx context.Context) ([]*models.CityStandard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CityStandard), args.Error(1)
}

func (m *MockCityStandardRepository) FindByCityAndYear(ctx context.Context, cityName, year string) ([]*models.CityStandard, error) {
	args := m.Called(ctx, cityName, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CityStandard), args.Error(1)
}

func (m *MockCityStandardRepository) ListCityYearPairs(ctx context.Context) ([]models.CityYear, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CityYear), args.Error(1)
}

func (m *MockCityStandardRepository) ReplaceAll(ctx context.Context, standards []models.CityStandard) (int64, error) {
	args := m.Called(ctx, standards)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCityStandardRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockSalaryRepository is a mock implementation of SalaryRepository
type MockSalaryRepository struct {
	mock.Mock
}

func (m *MockSalaryRepository) ListAll(ctx context.Context) ([]*models.SalaryRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SalaryRecord), args.Error(1)
}

func (m *MockSalaryRepository) ReplaceAll(ctx context.Context, salaries []models.SalaryRecord) (int64, error) {
	args := m.Called(ctx, salaries)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalaryRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalaryRepository) CountDistinctEmployees(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) LockForReplace(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockResultRepository) ReplaceAll(ctx context.Context, results []models.ComputationResult) (int64, error) {
	args := m.Called(ctx, results)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResultRepository) List(ctx context.Context) ([]*models.ComputationResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ComputationResult), args.Error(1)
}

func (m *MockResultRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	cityStandardRepo CityStandardRepository
	salaryRepo       SalaryRepository
	resultRepo       ResultRepository
	eventPublisher   EventPublisher
}

// SetRepositories sets the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(cityStandardRepo CityStandardRepository, salaryRepo SalaryRepository, resultRepo ResultRepository, eventPublisher EventPublisher) {
	m.cityStandardRepo = cityStandardRepo
	m.salaryRepo = salaryRepo
	m.resultRepo = resultRepo
	m.eventPublisher = eventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) CityStandardRepository() CityStandardRepository {
	return m.cityStandardRepo
}

func (m *MockUnitOfWork) SalaryRepository() SalaryRepository {
	return m.salaryRepo
}

func (m *MockUnitOfWork) ResultRepository() ResultRepository {
	return m.resultRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
