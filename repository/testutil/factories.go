package testutil

import (
	"insurecalc/models"
)

// CreateTestCityStandard creates a city standard with the Foshan 2024 figures
func CreateTestCityStandard(cityName, year string) models.CityStandard {
	return models.CityStandard{
		CityName: cityName,
		Year:     year,
		Rate:     0.14,
		BaseMin:  3523,
		BaseMax:  26421,
	}
}

// CreateTestSalary creates a salary record
func CreateTestSalary(employeeID, employeeName, month string, amount float64) models.SalaryRecord {
	return models.SalaryRecord{
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		Month:        month,
		SalaryAmount: amount,
	}
}

// CreateTestResult creates a computation result for an employee
func CreateTestResult(employeeName string, avgSalary, base, fee float64) models.ComputationResult {
	return models.ComputationResult{
		CityName:         "佛山",
		Year:             "2024",
		EmployeeName:     employeeName,
		AvgSalary:        avgSalary,
		ContributionBase: base,
		CompanyFee:       fee,
	}
}
