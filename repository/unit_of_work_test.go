package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurecalc/events"
	"insurecalc/models"
	"insurecalc/repository/testutil"
	"insurecalc/service"
)

func TestUnitOfWork_Rollback(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	cities := NewCityStandardRepository(testDB.DB)

	_, err := cities.ReplaceAll(ctx, []models.CityStandard{testutil.CreateTestCityStandard("佛山", "2024")})
	require.NoError(t, err)

	t.Run("failed replace keeps previous rows", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))

		invalid := testutil.CreateTestCityStandard("广州", "2024")
		invalid.Rate = 2 // violates the rate check constraint
		_, err := uow.CityStandardRepository().ReplaceAll(ctx, []models.CityStandard{invalid})
		require.Error(t, err)
		require.NoError(t, uow.Rollback())

		standards, err := cities.List(ctx)
		require.NoError(t, err)
		require.Len(t, standards, 1)
		assert.Equal(t, "佛山", standards[0].CityName)
	})

	t.Run("rollback after commit is a no-op", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.Commit())
		assert.NoError(t, uow.Rollback())
	})

	t.Run("begin twice fails", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		assert.Error(t, uow.Begin(ctx))
	})

	t.Run("repositories require begin", func(t *testing.T) {
		uow := factory.Create()
		assert.Panics(t, func() { uow.ResultRepository() })
	})
}

func TestUnitOfWork_EventsFlushOnlyOnCommit(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	received := make(chan events.Event, 4)
	bus.Subscribe(events.EventTypeDatasetImported, func(ctx context.Context, e events.Event) {
		received <- e
	})
	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	uow.EventBus().Publish(events.DatasetImportedEvent{Dataset: events.DatasetSalaries, RecordCount: 1})
	require.NoError(t, uow.Rollback())

	uow = factory.Create()
	require.NoError(t, uow.Begin(ctx))
	uow.EventBus().Publish(events.DatasetImportedEvent{Dataset: events.DatasetCityStandards, RecordCount: 2})
	require.NoError(t, uow.Commit())

	select {
	case e := <-received:
		assert.Equal(t, events.DatasetImportedEvent{Dataset: events.DatasetCityStandards, RecordCount: 2}, e)
	case <-time.After(5 * time.Second):
		t.Fatal("committed event was not emitted")
	}

	select {
	case e := <-received:
		t.Fatalf("unexpected event %v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestContributionRun_EndToEnd(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	imports := service.NewImportService(factory, service.NewRecordValidator())
	contributions := service.NewContributionService(factory, service.ContributionOptions{
		CityAliases: map[string]string{"南山": "佛山"},
	})

	_, err := imports.ImportCityStandards(ctx, []models.CityStandard{
		testutil.CreateTestCityStandard("佛山", "2024"),
	})
	require.NoError(t, err)
	_, err = imports.ImportSalaries(ctx, []models.SalaryRecord{
		testutil.CreateTestSalary("E001", "张三", "202401", 5000),
		testutil.CreateTestSalary("E001", "张三", "202402", 6000),
		testutil.CreateTestSalary("E001", "张三", "202403", 7000),
		testutil.CreateTestSalary("E002", "李四", "202401", 1000),
		testutil.CreateTestSalary("E002", "李四", "202402", 1000),
	})
	require.NoError(t, err)

	computed, err := contributions.ComputeContributions(ctx, "佛山", "2024")
	require.NoError(t, err)
	require.Len(t, computed, 2)

	stored, err := contributions.ListResults(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "张三", stored[0].EmployeeName)
	assert.Equal(t, 6000.0, stored[0].AvgSalary)
	assert.Equal(t, 6000.0, stored[0].ContributionBase)
	assert.Equal(t, 840.0, stored[0].CompanyFee)
	assert.Equal(t, "李四", stored[1].EmployeeName)
	assert.Equal(t, 1000.0, stored[1].AvgSalary)
	assert.Equal(t, 3523.0, stored[1].ContributionBase)
	assert.Equal(t, 493.22, stored[1].CompanyFee)

	t.Run("unknown standard leaves results untouched", func(t *testing.T) {
		_, err := contributions.ComputeContributions(ctx, "南山", "2025")
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrCityStandardNotFound))

		after, err := contributions.ListResults(ctx)
		require.NoError(t, err)
		assert.Equal(t, stored, after)
	})

	t.Run("rerun replaces with identical figures", func(t *testing.T) {
		_, err := contributions.ComputeContributions(ctx, "南山", "2024")
		require.NoError(t, err)

		after, err := contributions.ListResults(ctx)
		require.NoError(t, err)
		require.Len(t, after, 2)
		for i := range after {
			assert.Equal(t, stored[i].EmployeeName, after[i].EmployeeName)
			assert.Equal(t, stored[i].CompanyFee, after[i].CompanyFee)
			assert.NotEqual(t, stored[i].RunID, after[i].RunID)
		}
	})

	t.Run("concurrent runs serialize", func(t *testing.T) {
		errs := make(chan error, 4)
		for i := 0; i < 4; i++ {
			go func() {
				_, err := contributions.ComputeContributions(ctx, "佛山", "2024")
				errs <- err
			}()
		}
		for i := 0; i < 4; i++ {
			require.NoError(t, <-errs)
		}

		after, err := contributions.ListResults(ctx)
		require.NoError(t, err)
		assert.Len(t, after, 2)
		assert.Equal(t, after[0].RunID, after[1].RunID)
	})

	t.Run("statistics", func(t *testing.T) {
		stats, err := contributions.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, &models.DataStatistics{
			CitiesCount:    1,
			SalariesCount:  5,
			ResultsCount:   2,
			EmployeesCount: 2,
		}, stats)
	})
}
