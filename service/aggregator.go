package service

import (
	"fmt"
	"sort"

	"insurecalc/models"
)

// GroupingKey selects the salary record field that identifies an employee
type GroupingKey string

const (
	// GroupByEmployeeName merges every record with the same display name
	GroupByEmployeeName GroupingKey = "employee_name"
	// GroupByEmployeeID merges every record with the same employee id
	GroupByEmployeeID GroupingKey = "employee_id"
)

// ParseGroupingKey parses a GroupingKey, defaulting to GroupByEmployeeName for an empty value
func ParseGroupingKey(s string) (GroupingKey, error) {
	switch GroupingKey(s) {
	case "", GroupByEmployeeName:
		return GroupByEmployeeName, nil
	case GroupByEmployeeID:
		return GroupByEmployeeID, nil
	default:
		return "", fmt.Errorf("unknown grouping key %q (want %q or %q)", s, GroupByEmployeeName, GroupByEmployeeID)
	}
}

// EmployeeAverage is one employee's mean monthly salary, unrounded
type EmployeeAverage struct {
	Key          string
	EmployeeID   string // set only when grouping by employee id
	EmployeeName string
	MonthCount   int
	AvgSalary    float64
}

// AggregateSalaries groups records by key and averages each group.
// Keys are matched exactly. The result is sorted by key.
func AggregateSalaries(records []*models.SalaryRecord, key GroupingKey) []EmployeeAverage {
	type group struct {
		avg   EmployeeAverage
		total float64
	}

	groups := make(map[string]*group)
	for _, rec := range records {
		k := rec.EmployeeName
		if key == GroupByEmployeeID {
			k = rec.EmployeeID
		}

		g, ok := groups[k]
		if !ok {
			g = &group{avg: EmployeeAverage{Key: k, EmployeeName: rec.EmployeeName}}
			if key == GroupByEmployeeID {
				g.avg.EmployeeID = rec.EmployeeID
			}
			groups[k] = g
		}
		g.total += rec.SalaryAmount
		g.avg.MonthCount++
	}

	averages := make([]EmployeeAverage, 0, len(groups))
	for _, g := range groups {
		g.avg.AvgSalary = g.total / float64(g.avg.MonthCount)
		averages = append(averages, g.avg)
	}

	sort.Slice(averages, func(i, j int) bool {
		return averages[i].Key < averages[j].Key
	})
	return averages
}
