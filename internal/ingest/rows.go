package ingest

import (
	"strconv"
	"strings"

	"epldash/pkg/contracts/domain"
)

// cell returns the trimmed value of a column, "" when absent or short
func (ci columnIndex) cell(row []string, column string) (string, bool) {
	i, ok := ci[column]
	if !ok {
		return "", false
	}
	if i >= len(row) {
		return "", true
	}
	return strings.TrimSpace(row[i]), true
}

// parseNumber accepts both "12.5" and the French "12,5"
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseRecords converts data rows into records. rowNums holds the row number
// of each entry of rows as the user sees it, used in error messages.
func parseRecords(index columnIndex, rows [][]string, rowNums []int) ([]domain.Record, []int, error) {
	records := make([]domain.Record, 0, len(rows))
	lines := make([]int, 0, len(rows))

	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		line := rowNums[i]

		var r domain.Record
		r.StudentID, _ = index.cell(row, domain.ColumnStudentID)
		r.Department, _ = index.cell(row, domain.ColumnDepartment)
		r.Unit, _ = index.cell(row, domain.ColumnUnit)
		r.Subject, _ = index.cell(row, domain.ColumnSubject)
		r.Instructor, _ = index.cell(row, domain.ColumnInstructor)

		if raw, ok := index.cell(row, domain.ColumnScore); ok {
			score, err := parseNumber(raw)
			if err != nil {
				return nil, nil, &ParseError{Row: line, Column: domain.ColumnScore, Value: raw, Err: err}
			}
			r.Score = score
		}

		if raw, ok := index.cell(row, domain.ColumnAge); ok && raw != "" {
			age, err := parseNumber(raw)
			if err != nil {
				return nil, nil, &ParseError{Row: line, Column: domain.ColumnAge, Value: raw, Err: err}
			}
			r.Age = &age
		}
		if raw, ok := index.cell(row, domain.ColumnSex); ok && raw != "" {
			r.Sex = domain.StringPtr(raw)
		}
		if raw, ok := index.cell(row, domain.ColumnReportCard); ok && raw != "" {
			r.ReportCard = domain.StringPtr(raw)
		}

		records = append(records, r)
		lines = append(lines, line)
	}
	return records, lines, nil
}
