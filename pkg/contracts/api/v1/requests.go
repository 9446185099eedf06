// Package api contains the request contracts of the dashboard HTTP API.
// Version v1 represents the current stable API version.
package api

import (
	"epldash/pkg/contracts/domain"
)

// FilterRequest selects records by categorical values.
// Values within a field are alternatives; fields are combined.
// An empty field does not restrict the selection.
type FilterRequest struct {
	Department []string `json:"department,omitempty" validate:"omitempty,max=500,dive,required,max=200"`
	Unit       []string `json:"unit,omitempty" validate:"omitempty,max=500,dive,required,max=200"`
	Subject    []string `json:"subject,omitempty" validate:"omitempty,max=500,dive,required,max=200"`
	Instructor []string `json:"instructor,omitempty" validate:"omitempty,max=500,dive,required,max=200"`
	Sex        []string `json:"sex,omitempty" validate:"omitempty,max=50,dive,required,max=50"`
	ReportCard []string `json:"report_card,omitempty" validate:"omitempty,max=500,dive,required,max=200"`
}

// Predicates returns the request as column to accepted values
func (f FilterRequest) Predicates() map[string][]string {
	p := make(map[string][]string)
	add := func(column string, values []string) {
		if len(values) > 0 {
			p[column] = values
		}
	}
	add(domain.ColumnDepartment, f.Department)
	add(domain.ColumnUnit, f.Unit)
	add(domain.ColumnSubject, f.Subject)
	add(domain.ColumnInstructor, f.Instructor)
	add(domain.ColumnSex, f.Sex)
	add(domain.ColumnReportCard, f.ReportCard)
	return p
}

// ReportRequest asks for the assembled report of a filtered dataset.
// No sections means the default five.
type ReportRequest struct {
	Filters  FilterRequest `json:"filters"`
	Sections []string      `json:"sections,omitempty" validate:"omitempty,max=20,dive,section"`
}

// ExportRequest asks for a workbook or bulletins download
type ExportRequest struct {
	Filters  FilterRequest `json:"filters"`
	Sections []string      `json:"sections,omitempty" validate:"omitempty,max=20,dive,section"`
	FileName string        `json:"file_name,omitempty" validate:"omitempty,max=120,filename"`
}
