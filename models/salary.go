package models

// SalaryRecord is one employee's salary for one month (YYYYMM)
type SalaryRecord struct {
	ID           int64   `db:"id" json:"id,omitempty"`
	EmployeeID   string  `db:"employee_id" json:"employee_id" validate:"required"`
	EmployeeName string  `db:"employee_name" json:"employee_name" validate:"required"`
	Month        string  `db:"month" json:"month" validate:"month6"`
	SalaryAmount float64 `db:"salary_amount" json:"salary_amount" validate:"finite,gte=0"`
}

// SalaryRecordInput is a salary record as submitted in a JSON import
type SalaryRecordInput struct {
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	Month        string   `json:"month"`
	SalaryAmount *float64 `json:"salary_amount" validate:"required"`
}

// SalaryRecord converts a checked input. SalaryAmount must be set.
func (in SalaryRecordInput) SalaryRecord() SalaryRecord {
	return SalaryRecord{
		EmployeeID:   in.EmployeeID,
		EmployeeName: in.EmployeeName,
		Month:        in.Month,
		SalaryAmount: *in.SalaryAmount,
	}
}
