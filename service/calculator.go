package service

import (
	"math"
	"strconv"

	"insurecalc/models"
)

// Round2 rounds v to cents, halves away from zero.
// v*100 is first cut to 6 decimals so 1.005 rounds as written instead of as 1.00499999...
func Round2(v float64) float64 {
	scaled, err := strconv.ParseFloat(strconv.FormatFloat(v*100, 'f', 6, 64), 64)
	if err != nil {
		return math.Round(v*100) / 100
	}
	return math.Round(scaled) / 100
}

// ClampContributionBase limits avgSalary to [baseMin, baseMax]. Requires baseMin <= baseMax.
func ClampContributionBase(avgSalary, baseMin, baseMax float64) float64 {
	if avgSalary < baseMin {
		return baseMin
	}
	if avgSalary > baseMax {
		return baseMax
	}
	return avgSalary
}

// CalculateContribution derives the contribution base and company fee for one employee.
// Only the returned values are rounded; the fee is computed from the unrounded base.
func CalculateContribution(avg EmployeeAverage, standard *models.CityStandard) models.ComputationResult {
	base := ClampContributionBase(avg.AvgSalary, standard.BaseMin, standard.BaseMax)
	fee := base * standard.Rate

	return models.ComputationResult{
		CityName:         standard.CityName,
		Year:             standard.Year,
		EmployeeID:       avg.EmployeeID,
		EmployeeName:     avg.EmployeeName,
		AvgSalary:        Round2(avg.AvgSalary),
		ContributionBase: Round2(base),
		CompanyFee:       Round2(fee),
	}
}
