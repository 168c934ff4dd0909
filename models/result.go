package models

import (
	"time"

	"github.com/google/uuid"
)

// ComputationResult is the persisted contribution figure for one employee.
// Money fields are already rounded to cents.
type ComputationResult struct {
	ID               int64     `db:"id" json:"id,omitempty"`
	RunID            uuid.UUID `db:"run_id" json:"run_id"`
	CityName         string    `db:"city_name" json:"city_name"`
	Year             string    `db:"year" json:"year"`
	EmployeeID       string    `db:"employee_id" json:"employee_id,omitempty"`
	EmployeeName     string    `db:"employee_name" json:"employee_name"`
	AvgSalary        float64   `db:"avg_salary" json:"avg_salary"`
	ContributionBase float64   `db:"contribution_base" json:"contribution_base"`
	CompanyFee       float64   `db:"company_fee" json:"company_fee"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// DataStatistics summarizes the three datasets
type DataStatistics struct {
	CitiesCount    int64 `json:"cities_count"`
	SalariesCount  int64 `json:"salaries_count"`
	ResultsCount   int64 `json:"results_count"`
	EmployeesCount int64 `json:"employees_count"`
}
