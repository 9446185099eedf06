// Package exporter serializes datasets and report artifacts.
//
// CSVWriter: Core CSV writing with headers, streaming and a UTF-8 BOM for
// Excel compatibility.
//
// WorkbookExporter: Writes a report artifact as an xlsx workbook, one sheet
// per section in artifact order. Undefined statistics are left as empty cells.
//
// SectionExporter: Writes each section as its own CSV file and produces the
// flat report cards export.
//
// DatasetExporter: Writes raw record datasets using the school's column titles.
//
// Example usage:
//
//	artifact := report.Assemble(view, report.DefaultSections())
//	err := exporter.NewWorkbookExporter(logger).Save("rapport_EPL.xlsx", artifact)
package exporter
