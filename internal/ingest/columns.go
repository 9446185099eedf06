package ingest

import (
	"strings"

	"epldash/pkg/contracts/domain"
)

// headerAliases maps normalised header cells to dataset columns.
// The French names are the ones used by the school's exports.
var headerAliases = map[string]string{
	"student_id":  domain.ColumnStudentID,
	"id_etudiant": domain.ColumnStudentID,
	"id_étudiant": domain.ColumnStudentID,
	"etudiant":    domain.ColumnStudentID,
	"department":  domain.ColumnDepartment,
	"departement": domain.ColumnDepartment,
	"département": domain.ColumnDepartment,
	"unit":        domain.ColumnUnit,
	"ue":          domain.ColumnUnit,
	"subject":     domain.ColumnSubject,
	"matiere":     domain.ColumnSubject,
	"matière":     domain.ColumnSubject,
	"instructor":  domain.ColumnInstructor,
	"enseignant":  domain.ColumnInstructor,
	"score":       domain.ColumnScore,
	"note":        domain.ColumnScore,
	"age":         domain.ColumnAge,
	"âge":         domain.ColumnAge,
	"sex":         domain.ColumnSex,
	"sexe":        domain.ColumnSex,
	"report_card": domain.ColumnReportCard,
	"bulletin":    domain.ColumnReportCard,
}

// normalizeHeader lowercases a header cell and strips the UTF-8 BOM
func normalizeHeader(cell string) string {
	cell = strings.TrimPrefix(cell, "\ufeff")
	cell = strings.ToLower(strings.TrimSpace(cell))
	return strings.ReplaceAll(cell, " ", "_")
}

// columnIndex maps dataset columns to their position in a header row.
// Unrecognised headers are skipped; the first occurrence of a column wins.
type columnIndex map[string]int

func indexHeader(header []string) (columnIndex, domain.Schema) {
	index := make(columnIndex, len(header))
	var schema domain.Schema
	for i, cell := range header {
		col, ok := headerAliases[normalizeHeader(cell)]
		if !ok {
			continue
		}
		if _, dup := index[col]; dup {
			continue
		}
		index[col] = i
		schema = append(schema, col)
	}
	return index, schema
}

// looksLikeHeader reports whether a row names at least the student and score columns
func looksLikeHeader(row []string) bool {
	index, _ := indexHeader(row)
	_, hasID := index[domain.ColumnStudentID]
	_, hasScore := index[domain.ColumnScore]
	return hasID && hasScore
}
