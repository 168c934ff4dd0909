package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"insurecalc/events"
	"insurecalc/models"
)

type importService struct {
	uowFactory UnitOfWorkFactory
	validator  *RecordValidator
}

// NewImportService creates a new import service
func NewImportService(uowFactory UnitOfWorkFactory, validator *RecordValidator) ImportService {
	return &importService{
		uowFactory: uowFactory,
		validator:  validator,
	}
}

// ImportCityStandards replaces every city standard with the given batch.
// The batch is validated in full before storage is touched.
func (s *importService) ImportCityStandards(ctx context.Context, standards []models.CityStandard) (int, error) {
	if err := s.validator.ValidateCityStandards(standards); err != nil {
		return 0, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, storageError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	inserted, err := uow.CityStandardRepository().ReplaceAll(ctx, standards)
	if err != nil {
		return 0, storageError("failed to replace city standards; existing data was kept", err)
	}

	uow.EventBus().Publish(events.DatasetImportedEvent{
		Dataset:     events.DatasetCityStandards,
		RecordCount: int(inserted),
	})

	if err := uow.Commit(); err != nil {
		return 0, storageError("failed to commit city standards; existing data was kept", err)
	}

	log.WithField("count", inserted).Info("Imported city standards")
	return int(inserted), nil
}

// ImportSalaries replaces every salary record with the given batch
func (s *importService) ImportSalaries(ctx context.Context, salaries []models.SalaryRecord) (int, error) {
	if err := s.validator.ValidateSalaries(salaries); err != nil {
		return 0, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, storageError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	inserted, err := uow.SalaryRepository().ReplaceAll(ctx, salaries)
	if err != nil {
		return 0, storageError("failed to replace salaries; existing data was kept", err)
	}

	uow.EventBus().Publish(events.DatasetImportedEvent{
		Dataset:     events.DatasetSalaries,
		RecordCount: int(inserted),
	})

	if err := uow.Commit(); err != nil {
		return 0, storageError("failed to commit salaries; existing data was kept", err)
	}

	log.WithField("count", inserted).Info("Imported salaries")
	return int(inserted), nil
}

// ListCityStandards returns every stored city standard
func (s *importService) ListCityStandards(ctx context.Context) ([]*models.CityStandard, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	standards, err := uow.CityStandardRepository().List(ctx)
	if err != nil {
		return nil, storageError("failed to list city standards", err)
	}
	return standards, nil
}
