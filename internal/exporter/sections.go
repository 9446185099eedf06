package exporter

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"epldash/internal/config"
	"epldash/internal/report"
)

// ErrNoReportCards is returned when a bulletins export is requested for an
// artifact without a report cards section
var ErrNoReportCards = errors.New("artifact has no report cards section")

// SectionExporter writes report sections as delimited files
type SectionExporter struct {
	csvWriter *CSVWriter
}

// NewSectionExporter creates a new section exporter
func NewSectionExporter(paths *config.Paths) *SectionExporter {
	return &SectionExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportSections writes one CSV file per section, named after its sheet,
// and returns the written paths in artifact order
func (s *SectionExporter) ExportSections(artifact *report.Artifact, outputDir string) ([]string, error) {
	written := make([]string, 0, len(artifact.Sections))
	for _, sheet := range artifact.Sheets() {
		filePath := filepath.Join(outputDir, sheet.Name+".csv")
		if err := s.csvWriter.WriteSimpleCSV(filePath, sheet.Header, sheetRecords(sheet)); err != nil {
			return written, fmt.Errorf("failed to write section %s: %w", sheet.Name, err)
		}
		written = append(written, s.csvWriter.resolvePath(filePath))
	}
	return written, nil
}

// WriteBulletins writes the flat report cards table, one row per
// (student_id, report_card) with its mean score
func (s *SectionExporter) WriteBulletins(w io.Writer, artifact *report.Artifact) error {
	section, ok := artifact.Section(report.SectionReportCards)
	if !ok {
		return ErrNoReportCards
	}
	sheet := section.ToSheet()
	return s.csvWriter.Encode(w, WriteOptions{
		Headers:   sheet.Header,
		Records:   sheetRecords(sheet),
		BOMPrefix: true,
	})
}

// ExportBulletins writes the report cards table to a file
func (s *SectionExporter) ExportBulletins(artifact *report.Artifact, outputPath string) error {
	section, ok := artifact.Section(report.SectionReportCards)
	if !ok {
		return ErrNoReportCards
	}
	sheet := section.ToSheet()
	return s.csvWriter.WriteSimpleCSV(outputPath, sheet.Header, sheetRecords(sheet))
}

func sheetRecords(sheet report.Sheet) [][]string {
	records := make([][]string, len(sheet.Rows))
	for i, row := range sheet.Rows {
		records[i] = formatRow(row)
	}
	return records
}
