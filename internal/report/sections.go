package report

import (
	"errors"
	"fmt"
	"strings"

	"epldash/internal/dataprocessing"
	"epldash/pkg/contracts/domain"
)

// ErrUnknownSection is returned when a section name is not recognised
var ErrUnknownSection = errors.New("unknown report section")

// SectionName identifies one aggregation of the report
type SectionName string

// Report sections in presentation order
const (
	SectionStudents    SectionName = "students"
	SectionGrades      SectionName = "grades"
	SectionInstructors SectionName = "instructors"
	SectionDepartments SectionName = "departments"
	SectionReportCards SectionName = "report_cards"
	SectionSubjects    SectionName = "subjects"
	SectionSex         SectionName = "sex"
)

// definition fixes the grouping, metrics and prerequisites of a section
type definition struct {
	name     SectionName
	sheet    string
	keys     []string
	metrics  []dataprocessing.Metric
	requires string
	build    func(view *dataprocessing.View, d definition) dataprocessing.Table
}

func aggregate(view *dataprocessing.View, d definition) dataprocessing.Table {
	return dataprocessing.Aggregate(view, d.keys, d.metrics)
}

func rank(view *dataprocessing.View, _ definition) dataprocessing.Table {
	return dataprocessing.Rank(view)
}

func byDescendingMean(view *dataprocessing.View, d definition) dataprocessing.Table {
	table := dataprocessing.Aggregate(view, d.keys, d.metrics)
	dataprocessing.SortByMean(table)
	return table
}

var descriptive = []dataprocessing.Metric{
	dataprocessing.MetricMean,
	dataprocessing.MetricMedian,
	dataprocessing.MetricStd,
	dataprocessing.MetricCount,
}

var meanOnly = []dataprocessing.Metric{dataprocessing.MetricMean}

// definitions is ordered; Assemble walks it front to back
var definitions = []definition{
	{
		name:     SectionStudents,
		sheet:    "Etudiants",
		keys:     []string{domain.ColumnAge},
		metrics:  descriptive,
		requires: domain.ColumnAge,
		build:    aggregate,
	},
	{
		name:    SectionGrades,
		sheet:   "Notes",
		keys:    []string{domain.ColumnStudentID},
		metrics: meanOnly,
		build:   rank,
	},
	{
		name:    SectionInstructors,
		sheet:   "Enseignants",
		keys:    []string{domain.ColumnInstructor},
		metrics: meanOnly,
		build:   byDescendingMean,
	},
	{
		name:    SectionDepartments,
		sheet:   "Departements",
		keys:    []string{domain.ColumnDepartment},
		metrics: descriptive,
		build:   aggregate,
	},
	{
		name:     SectionReportCards,
		sheet:    "Bulletins",
		keys:     []string{domain.ColumnStudentID, domain.ColumnReportCard},
		metrics:  meanOnly,
		requires: domain.ColumnReportCard,
		build:    aggregate,
	},
	{
		name:  SectionSubjects,
		sheet: "Matieres",
		keys:  []string{domain.ColumnDepartment, domain.ColumnUnit, domain.ColumnSubject},
		metrics: []dataprocessing.Metric{
			dataprocessing.MetricMean,
			dataprocessing.MetricMedian,
			dataprocessing.MetricStd,
			dataprocessing.MetricPassRate,
		},
		build: aggregate,
	},
	{
		name:     SectionSex,
		sheet:    "Sexe",
		keys:     []string{domain.ColumnSex},
		metrics:  meanOnly,
		requires: domain.ColumnSex,
		build:    aggregate,
	},
}

func lookup(name SectionName) (definition, bool) {
	for _, d := range definitions {
		if d.name == name {
			return d, true
		}
	}
	return definition{}, false
}

// DefaultSections returns the sections of the standard export workbook
func DefaultSections() []SectionName {
	return []SectionName{
		SectionStudents,
		SectionGrades,
		SectionInstructors,
		SectionDepartments,
		SectionReportCards,
	}
}

// AllSections returns every known section in presentation order
func AllSections() []SectionName {
	names := make([]SectionName, len(definitions))
	for i, d := range definitions {
		names[i] = d.name
	}
	return names
}

// ParseSection converts a user supplied name into a SectionName
func ParseSection(s string) (SectionName, error) {
	name := SectionName(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := lookup(name); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}
	return name, nil
}

// ParseSections converts a list of names, rejecting the first unknown one
func ParseSections(values []string) ([]SectionName, error) {
	names := make([]SectionName, 0, len(values))
	for _, v := range values {
		name, err := ParseSection(v)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// SheetName returns the workbook sheet name of a section
func (n SectionName) SheetName() string {
	if d, ok := lookup(n); ok {
		return d.sheet
	}
	return string(n)
}

// Requires returns the optional column the section depends on, if any
func (n SectionName) Requires() string {
	d, _ := lookup(n)
	return d.requires
}
