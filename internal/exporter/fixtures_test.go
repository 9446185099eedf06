package exporter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"epldash/internal/dataprocessing"
	"epldash/internal/report"
	"epldash/pkg/contracts/domain"
)

var fullSchema = domain.Schema{
	domain.ColumnStudentID, domain.ColumnDepartment, domain.ColumnUnit, domain.ColumnSubject,
	domain.ColumnInstructor, domain.ColumnScore, domain.ColumnAge, domain.ColumnSex, domain.ColumnReportCard,
}

func sampleRecords() []domain.Record {
	mk := func(id, dept, unit, subject, prof string, score, age float64, sex, card string) domain.Record {
		return domain.Record{
			StudentID: id, Department: dept, Unit: unit, Subject: subject, Instructor: prof,
			Score: score, Age: domain.FloatPtr(age), Sex: domain.StringPtr(sex), ReportCard: domain.StringPtr(card),
		}
	}
	return []domain.Record{
		mk("1", "Informatique", "UE1", "Algorithmique", "Prof A", 12, 20, "F", "S1"),
		mk("1", "Informatique", "UE2", "Réseaux", "Prof B", 9, 20, "F", "S2"),
		mk("2", "Génie Civil", "UE1", "Structures", "Prof C", 15.5, 22, "M", "S1"),
		mk("3", "Génie Civil", "UE1", "Structures", "Prof C", 11, 21, "M", "S1"),
	}
}

func sampleStore(t *testing.T, schema domain.Schema) *dataprocessing.Store {
	t.Helper()
	store, err := dataprocessing.NewStore(schema, sampleRecords())
	require.NoError(t, err)
	return store
}

func sampleArtifact(t *testing.T, schema domain.Schema, sections []report.SectionName) *report.Artifact {
	t.Helper()
	return report.Assemble(sampleStore(t, schema).View(), sections)
}
