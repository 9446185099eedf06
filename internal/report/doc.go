// Package report composes aggregation tables into the ordered multi-sheet
// artifact consumed by the workbook and CSV exporters and by the HTTP API.
//
// Section order is fixed: Students, Grades, Instructors, Departments and
// Report Cards, followed by the Subjects and Sex breakdowns. Sections that
// need an optional column are left out of the artifact when the filtered
// view does not carry that column.
package report
