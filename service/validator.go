package service

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"insurecalc/models"
)

var (
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	monthPattern = regexp.MustCompile(`^\d{6}$`)
)

// RecordValidator checks imported records against their schema before storage is touched
type RecordValidator struct {
	validate *validator.Validate
}

// NewRecordValidator creates a validator with the year4, month6 and finite tags registered
func NewRecordValidator() *RecordValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names (base_min) rather than Go names (BaseMin)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("year4", func(fl validator.FieldLevel) bool {
		return yearPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("month6", func(fl validator.FieldLevel) bool {
		return monthPattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})

	return &RecordValidator{validate: v}
}

// CityStandardsFromInput checks that every JSON record carries all numeric fields and converts the batch.
// Range checks are left to ValidateCityStandards.
func (rv *RecordValidator) CityStandardsFromInput(inputs []models.CityStandardInput) ([]models.CityStandard, error) {
	var violations []Violation
	for i := range inputs {
		violations = append(violations, rv.check(i, &inputs[i])...)
	}
	if err := asValidationError("city standard", violations); err != nil {
		return nil, err
	}

	standards := make([]models.CityStandard, len(inputs))
	for i, in := range inputs {
		standards[i] = in.CityStandard()
	}
	return standards, nil
}

// SalariesFromInput checks that every JSON record carries salary_amount and converts the batch
func (rv *RecordValidator) SalariesFromInput(inputs []models.SalaryRecordInput) ([]models.SalaryRecord, error) {
	var violations []Violation
	for i := range inputs {
		violations = append(violations, rv.check(i, &inputs[i])...)
	}
	if err := asValidationError("salary", violations); err != nil {
		return nil, err
	}

	salaries := make([]models.SalaryRecord, len(inputs))
	for i, in := range inputs {
		salaries[i] = in.SalaryRecord()
	}
	return salaries, nil
}

// ValidateCityStandards validates every city standard in the batch
func (rv *RecordValidator) ValidateCityStandards(standards []models.CityStandard) error {
	if len(standards) == 0 {
		return emptyBatch("city standard")
	}

	var violations []Violation
	for i := range standards {
		violations = append(violations, rv.check(i, &standards[i])...)
	}
	return asValidationError("city standard", violations)
}

// ValidateSalaries validates every salary record in the batch
func (rv *RecordValidator) ValidateSalaries(salaries []models.SalaryRecord) error {
	if len(salaries) == 0 {
		return emptyBatch("salary")
	}

	var violations []Violation
	for i := range salaries {
		violations = append(violations, rv.check(i, &salaries[i])...)
	}
	return asValidationError("salary", violations)
}

// ValidateCalculationRequest validates the city and year a run was requested for
func ValidateCalculationRequest(cityName, year string) error {
	var violations []Violation
	if cityName == "" {
		violations = append(violations, Violation{Index: -1, Field: "city_name", Message: "is required"})
	}
	if !yearPattern.MatchString(year) {
		violations = append(violations, Violation{Index: -1, Field: "year", Message: "must be a 4-digit year"})
	}
	return asValidationError("calculation request", violations)
}

func (rv *RecordValidator) check(index int, record any) []Violation {
	err := rv.validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Index: index, Field: "record", Message: err.Error()}}
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			Index:   index,
			Field:   fe.Field(),
			Message: violationMessage(fe),
		})
	}
	return violations
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "year4":
		return "must be a 4-digit year"
	case "month6":
		return "must be a 6-digit month (YYYYMM)"
	case "finite":
		return "must be a finite number"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "ltefield":
		return "must not exceed base_max"
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

func emptyBatch(dataset string) error {
	return &ValidationError{
		Dataset:    dataset,
		Violations: []Violation{{Index: -1, Field: "records", Message: "must not be empty"}},
	}
}

func asValidationError(dataset string, violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Dataset: dataset, Violations: violations}
}
