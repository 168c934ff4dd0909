package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"insurecalc/models"
)

// ErrInvalidWorkbook is matched by every error this package returns for bad input
var ErrInvalidWorkbook = errors.New("invalid workbook")

// CellError is one cell that could not be converted
type CellError struct {
	Row     int // 1-based sheet row
	Column  string
	Message string
}

func (e CellError) String() string {
	return fmt.Sprintf("row %d, %s: %s", e.Row, e.Column, e.Message)
}

// ParseError lists every unconvertible cell in a sheet
type ParseError struct {
	Sheet  string
	Errors []CellError
}

func (e *ParseError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, ce := range e.Errors {
		parts[i] = ce.String()
	}
	return fmt.Sprintf("sheet %q: %s", e.Sheet, strings.Join(parts, "; "))
}

func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidWorkbook
}

// Column layouts used when the header row does not name the columns.
// Both start with an id column that is ignored.
var (
	cityColumns   = []string{"id", "city_name", "year", "rate", "base_min", "base_max"}
	salaryColumns = []string{"id", "employee_id", "employee_name", "month", "salary_amount"}
)

// CheckFileName rejects uploads that excelize cannot open
func CheckFileName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".xlsx", ".xlsm":
		return nil
	case ".xls":
		return fmt.Errorf("%w: legacy .xls files are not supported, save %s as .xlsx", ErrInvalidWorkbook, name)
	default:
		return fmt.Errorf("%w: %s is not an Excel workbook (.xlsx)", ErrInvalidWorkbook, name)
	}
}

// ParseCityStandards reads city standards from the first sheet of the workbook
func ParseCityStandards(r io.Reader) ([]models.CityStandard, error) {
	sheet, rows, err := readFirstSheet(r)
	if err != nil {
		return nil, err
	}

	cols := resolveColumns(rows, cityColumns)
	perr := &ParseError{Sheet: sheet}
	var standards []models.CityStandard

	for _, row := range dataRows(rows) {
		c := cells{row: row, cols: cols, err: perr}
		standards = append(standards, models.CityStandard{
			CityName: c.text("city_name"),
			Year:     c.text("year"),
			Rate:     c.number("rate"),
			BaseMin:  c.number("base_min"),
			BaseMax:  c.number("base_max"),
		})
	}

	if len(perr.Errors) > 0 {
		return nil, perr
	}
	return standards, nil
}

// ParseSalaries reads salary records from the first sheet of the workbook
func ParseSalaries(r io.Reader) ([]models.SalaryRecord, error) {
	sheet, rows, err := readFirstSheet(r)
	if err != nil {
		return nil, err
	}

	cols := resolveColumns(rows, salaryColumns)
	perr := &ParseError{Sheet: sheet}
	var salaries []models.SalaryRecord

	for _, row := range dataRows(rows) {
		c := cells{row: row, cols: cols, err: perr}
		salaries = append(salaries, models.SalaryRecord{
			EmployeeID:   c.text("employee_id"),
			EmployeeName: c.text("employee_name"),
			Month:        c.text("month"),
			SalaryAmount: c.number("salary_amount"),
		})
	}

	if len(perr.Errors) > 0 {
		return nil, perr
	}
	return salaries, nil
}

func readFirstSheet(r io.Reader) (string, [][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to open excel: %v", ErrInvalidWorkbook, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidWorkbook)
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to read sheet %q: %v", ErrInvalidWorkbook, sheets[0], err)
	}
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("%w: sheet %q is empty", ErrInvalidWorkbook, sheets[0])
	}
	return sheets[0], rows, nil
}

// sheetRow is a data row with its 1-based position in the sheet
type sheetRow struct {
	number int
	values []string
}

// dataRows drops the header row and every blank row
func dataRows(rows [][]string) []sheetRow {
	var out []sheetRow
	for i := 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		out = append(out, sheetRow{number: i + 1, values: rows[i]})
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// resolveColumns maps field names to column indexes. Header names win; when the
// header names none of the required fields the positional layout is used.
func resolveColumns(rows [][]string, layout []string) map[string]int {
	byHeader := make(map[string]int)
	for i, name := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := byHeader[key]; !seen {
			byHeader[key] = i
		}
	}

	cols := make(map[string]int, len(layout))
	for _, field := range layout[1:] {
		if idx, ok := byHeader[field]; ok {
			cols[field] = idx
		}
	}
	if len(cols) == len(layout)-1 {
		return cols
	}

	for i, field := range layout {
		cols[field] = i
	}
	return cols
}

// cells reads typed values from one row, collecting conversion errors
type cells struct {
	row  sheetRow
	cols map[string]int
	err  *ParseError
}

func (c cells) text(field string) string {
	idx := c.cols[field]
	if idx >= len(c.row.values) {
		return ""
	}
	return strings.TrimSpace(c.row.values[idx])
}

func (c cells) number(field string) float64 {
	raw := strings.ReplaceAll(c.text(field), ",", "")
	if raw == "" {
		c.err.Errors = append(c.err.Errors, CellError{Row: c.row.number, Column: field, Message: "is empty"})
		return 0
	}
	percent := strings.HasSuffix(raw, "%")
	raw = strings.TrimSuffix(raw, "%")
	v, err := strconv.ParseFloat(raw, 64)
	if err == nil && (math.IsInf(v, 0) || math.IsNaN(v)) {
		c.err.Errors = append(c.err.Errors, CellError{Row: c.row.number, Column: field, Message: fmt.Sprintf("%q is not a finite number", raw)})
		return 0
	}
	if err != nil {
		c.err.Errors = append(c.err.Errors, CellError{Row: c.row.number, Column: field, Message: fmt.Sprintf("%q is not a number", raw)})
		return 0
	}
	if percent {
		return v / 100
	}
	return v
}
