package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"insurecalc/events"
	"insurecalc/models"
)

func newImportFixture() (*importService, *contributionFixture) {
	f := newContributionFixture(ContributionOptions{})
	return NewImportService(f.factory, NewRecordValidator()).(*importService), f
}

func TestImportService_ImportCityStandards(t *testing.T) {
	ctx := context.Background()
	standards := []models.CityStandard{
		{CityName: "佛山", Year: "2024", Rate: 0.14, BaseMin: 3523, BaseMax: 26421},
		{CityName: "广州", Year: "2024", Rate: 0.15, BaseMin: 4588, BaseMax: 26421},
	}

	t.Run("success", func(t *testing.T) {
		svc, f := newImportFixture()

		f.uow.On("Begin", ctx).Return(nil)
		f.cities.On("ReplaceAll", ctx, standards).Return(int64(2), nil)
		f.publisher.On("Publish", events.DatasetImportedEvent{Dataset: events.DatasetCityStandards, RecordCount: 2}).Return()
		f.uow.On("Commit").Return(nil)
		f.uow.On("Rollback").Return(nil)

		count, err := svc.ImportCityStandards(ctx, standards)

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		f.assertExpectations(t)
	})

	t.Run("invalid batch never touches storage", func(t *testing.T) {
		svc, f := newImportFixture()

		bad := append([]models.CityStandard{}, standards...)
		bad[1].Rate = 1.2

		_, err := svc.ImportCityStandards(ctx, bad)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []Violation{{Index: 1, Field: "rate", Message: "must be at most 1"}}, verr.Violations)
		f.factory.AssertNotCalled(t, "Create")
	})

	t.Run("replace failure keeps existing data", func(t *testing.T) {
		svc, f := newImportFixture()

		f.uow.On("Begin", ctx).Return(nil)
		f.cities.On("ReplaceAll", ctx, standards).Return(int64(0), errors.New("copy failed"))
		f.uow.On("Rollback").Return(nil)

		_, err := svc.ImportCityStandards(ctx, standards)

		assert.True(t, errors.Is(err, ErrStorageOperationFailed))
		f.uow.AssertNotCalled(t, "Commit")
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything)
		f.assertExpectations(t)
	})
}

func TestImportService_ImportSalaries(t *testing.T) {
	ctx := context.Background()
	salaries := []models.SalaryRecord{
		{EmployeeID: "E001", EmployeeName: "张三", Month: "202401", SalaryAmount: 5000},
		{EmployeeID: "E002", EmployeeName: "李四", Month: "202401", SalaryAmount: 1000},
	}

	t.Run("success", func(t *testing.T) {
		svc, f := newImportFixture()

		f.uow.On("Begin", ctx).Return(nil)
		f.salaries.On("ReplaceAll", ctx, salaries).Return(int64(2), nil)
		f.publisher.On("Publish", events.DatasetImportedEvent{Dataset: events.DatasetSalaries, RecordCount: 2}).Return()
		f.uow.On("Commit").Return(nil)
		f.uow.On("Rollback").Return(nil)

		count, err := svc.ImportSalaries(ctx, salaries)

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		f.assertExpectations(t)
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		svc, f := newImportFixture()

		_, err := svc.ImportSalaries(ctx, nil)

		assert.True(t, errors.Is(err, ErrValidation))
		f.factory.AssertNotCalled(t, "Create")
	})

	t.Run("commit failure", func(t *testing.T) {
		svc, f := newImportFixture()

		f.uow.On("Begin", ctx).Return(nil)
		f.salaries.On("ReplaceAll", ctx, salaries).Return(int64(2), nil)
		f.publisher.On("Publish", mock.Anything).Return()
		f.uow.On("Commit").Return(errors.New("connection lost"))
		f.uow.On("Rollback").Return(nil)

		_, err := svc.ImportSalaries(ctx, salaries)

		assert.True(t, errors.Is(err, ErrStorageOperationFailed))
		assert.Contains(t, err.Error(), "existing data was kept")
	})
}

func TestImportService_ListCityStandards(t *testing.T) {
	ctx := context.Background()
	svc, f := newImportFixture()

	stored := []*models.CityStandard{foshan2024()}
	f.uow.On("Begin", ctx).Return(nil)
	f.cities.On("List", ctx).Return(stored, nil)
	f.uow.On("Rollback").Return(nil)

	standards, err := svc.ListCityStandards(ctx)

	require.NoError(t, err)
	assert.Equal(t, stored, standards)
	f.assertExpectations(t)
}
