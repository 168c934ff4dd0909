package service

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurecalc/models"
)

func TestRecordValidator_ValidateCityStandards(t *testing.T) {
	v := NewRecordValidator()

	t.Run("valid batch", func(t *testing.T) {
		err := v.ValidateCityStandards([]models.CityStandard{
			{CityName: "佛山", Year: "2024", Rate: 0.14, BaseMin: 3523, BaseMax: 26421},
			{CityName: "广州", Year: "2023", Rate: 0, BaseMin: 0, BaseMax: 0},
			{CityName: "深圳", Year: "2024", Rate: 1, BaseMin: 5000, BaseMax: 5000},
		})
		assert.NoError(t, err)
	})

	t.Run("collects every violation in the batch", func(t *testing.T) {
		err := v.ValidateCityStandards([]models.CityStandard{
			{CityName: "佛山", Year: "2024", Rate: 0.14, BaseMin: 3523, BaseMax: 26421},
			{CityName: "", Year: "24", Rate: 1.5, BaseMin: 3523, BaseMax: 26421},
			{CityName: "广州", Year: "2024", Rate: -0.1, BaseMin: 30000, BaseMax: 20000},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "city standard", verr.Dataset)

		fields := map[string]int{}
		for _, viol := range verr.Violations {
			fields[viol.Field] = viol.Index
		}
		assert.Len(t, verr.Violations, 5)
		assert.Equal(t, 1, fields["city_name"])
		assert.Equal(t, 1, fields["year"])
		assert.Equal(t, 2, fields["base_min"])
		assert.Contains(t, err.Error(), "record 2: year must be a 4-digit year")
		assert.Contains(t, err.Error(), "record 3: base_min must not exceed base_max")
	})

	t.Run("year must be exactly four digits", func(t *testing.T) {
		for _, year := range []string{"", "202", "20245", "２０２４", "20a4"} {
			err := v.ValidateCityStandards([]models.CityStandard{
				{CityName: "佛山", Year: year, Rate: 0.14, BaseMin: 1, BaseMax: 2},
			})
			assert.Error(t, err, "year %q", year)
		}
	})

	t.Run("negative bases rejected", func(t *testing.T) {
		err := v.ValidateCityStandards([]models.CityStandard{
			{CityName: "佛山", Year: "2024", Rate: 0.14, BaseMin: -1, BaseMax: -0.5},
		})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Violations, 2)
	})

	t.Run("non-finite numbers rejected", func(t *testing.T) {
		err := v.ValidateCityStandards([]models.CityStandard{
			{CityName: "佛山", Year: "2024", Rate: math.NaN(), BaseMin: 3523, BaseMax: math.Inf(1)},
		})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.ElementsMatch(t, []Violation{
			{Index: 0, Field: "rate", Message: "must be a finite number"},
			{Index: 0, Field: "base_max", Message: "must be a finite number"},
		}, verr.Violations)
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		err := v.ValidateCityStandards(nil)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Contains(t, err.Error(), "records must not be empty")
	})
}

func TestRecordValidator_ValidateSalaries(t *testing.T) {
	v := NewRecordValidator()

	t.Run("valid batch", func(t *testing.T) {
		err := v.ValidateSalaries([]models.SalaryRecord{
			{EmployeeID: "E001", EmployeeName: "张三", Month: "202401", SalaryAmount: 5000},
			{EmployeeID: "E001", EmployeeName: "张三", Month: "202402", SalaryAmount: 0},
		})
		assert.NoError(t, err)
	})

	t.Run("collects every violation in the batch", func(t *testing.T) {
		err := v.ValidateSalaries([]models.SalaryRecord{
			{EmployeeID: "", EmployeeName: "张三", Month: "2024-01", SalaryAmount: 5000},
			{EmployeeID: "E002", EmployeeName: "", Month: "202401", SalaryAmount: -1},
		})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "salary", verr.Dataset)
		assert.ElementsMatch(t, []Violation{
			{Index: 0, Field: "employee_id", Message: "is required"},
			{Index: 0, Field: "month", Message: "must be a 6-digit month (YYYYMM)"},
			{Index: 1, Field: "employee_name", Message: "is required"},
			{Index: 1, Field: "salary_amount", Message: "must be at least 0"},
		}, verr.Violations)
	})

	t.Run("infinite salary rejected", func(t *testing.T) {
		err := v.ValidateSalaries([]models.SalaryRecord{
			{EmployeeID: "E001", EmployeeName: "张三", Month: "202401", SalaryAmount: math.Inf(1)},
		})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []Violation{{Index: 0, Field: "salary_amount", Message: "must be a finite number"}}, verr.Violations)
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		assert.True(t, errors.Is(v.ValidateSalaries([]models.SalaryRecord{}), ErrValidation))
	})
}

func float(v float64) *float64 {
	return &v
}

func TestRecordValidator_CityStandardsFromInput(t *testing.T) {
	v := NewRecordValidator()

	t.Run("converts complete records", func(t *testing.T) {
		standards, err := v.CityStandardsFromInput([]models.CityStandardInput{
			{CityName: "佛山", Year: "2024", Rate: float(0.14), BaseMin: float(3523), BaseMax: float(26421)},
			{CityName: "广州", Year: "2024", Rate: float(0), BaseMin: float(0), BaseMax: float(0)},
		})
		require.NoError(t, err)
		assert.Equal(t, []models.CityStandard{
			{CityName: "佛山", Year: "2024", Rate: 0.14, BaseMin: 3523, BaseMax: 26421},
			{CityName: "广州", Year: "2024", Rate: 0, BaseMin: 0, BaseMax: 0},
		}, standards)
	})

	t.Run("missing numeric fields are reported", func(t *testing.T) {
		standards, err := v.CityStandardsFromInput([]models.CityStandardInput{
			{CityName: "佛山", Year: "2024", Rate: float(0.14), BaseMin: float(3523), BaseMax: float(26421)},
			{CityName: "佛山", Year: "2024", BaseMin: float(3523)},
		})
		assert.Nil(t, standards)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.ElementsMatch(t, []Violation{
			{Index: 1, Field: "rate", Message: "is required"},
			{Index: 1, Field: "base_max", Message: "is required"},
		}, verr.Violations)
	})
}

func TestRecordValidator_SalariesFromInput(t *testing.T) {
	v := NewRecordValidator()

	salaries, err := v.SalariesFromInput([]models.SalaryRecordInput{
		{EmployeeID: "E001", EmployeeName: "张三", Month: "202401", SalaryAmount: float(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, salaries[0].SalaryAmount)

	_, err = v.SalariesFromInput([]models.SalaryRecordInput{
		{EmployeeID: "E001", EmployeeName: "张三", Month: "202401"},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []Violation{{Index: 0, Field: "salary_amount", Message: "is required"}}, verr.Violations)
}

func TestValidateCalculationRequest(t *testing.T) {
	assert.NoError(t, ValidateCalculationRequest("佛山", "2024"))

	err := ValidateCalculationRequest("", "24")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Violations, 2)
	assert.Equal(t, -1, verr.Violations[0].Index)
	assert.Equal(t, "VALIDATION_ERROR", ErrorCode(err))
}
