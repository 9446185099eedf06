package exporter

import (
	"fmt"

	"epldash/internal/config"
	"epldash/pkg/contracts/domain"
)

// datasetHeaders are the column titles used in exported datasets.
// They match the names the school's spreadsheets use so files round-trip
// through the loader.
var datasetHeaders = map[string]string{
	domain.ColumnStudentID:  "id_etudiant",
	domain.ColumnDepartment: "departement",
	domain.ColumnUnit:       "UE",
	domain.ColumnSubject:    "matiere",
	domain.ColumnInstructor: "enseignant",
	domain.ColumnScore:      "note",
	domain.ColumnAge:        "age",
	domain.ColumnSex:        "sexe",
	domain.ColumnReportCard: "bulletin",
}

// DatasetExporter writes raw record datasets
type DatasetExporter struct {
	csvWriter *CSVWriter
}

// NewDatasetExporter creates a new dataset exporter
func NewDatasetExporter(paths *config.Paths) *DatasetExporter {
	return &DatasetExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportRecords writes records as a CSV dataset with the columns of schema.
// Records are streamed so large synthetic datasets are never buffered twice.
func (d *DatasetExporter) ExportRecords(records []domain.Record, schema domain.Schema, outputPath string) error {
	stream, err := d.csvWriter.CreateStreamWriter(outputPath, d.getHeaders(schema))
	if err != nil {
		return err
	}

	for i, r := range records {
		if err := stream.WriteRecord(d.recordToCSVRow(r, schema)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Close()
}

func (d *DatasetExporter) getHeaders(schema domain.Schema) []string {
	headers := make([]string, len(schema))
	for i, col := range schema {
		if h, ok := datasetHeaders[col]; ok {
			headers[i] = h
		} else {
			headers[i] = col
		}
	}
	return headers
}

func (d *DatasetExporter) recordToCSVRow(r domain.Record, schema domain.Schema) []string {
	row := make([]string, len(schema))
	for i, col := range schema {
		if col == domain.ColumnScore {
			row[i] = formatFloat(r.Score)
			continue
		}
		row[i], _ = r.Value(col)
	}
	return row
}
