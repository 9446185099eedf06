package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"epldash/pkg/contracts/domain"
)

var baseSchema = domain.Schema{
	domain.ColumnStudentID,
	domain.ColumnDepartment,
	domain.ColumnUnit,
	domain.ColumnSubject,
	domain.ColumnInstructor,
	domain.ColumnScore,
}

func rec(id, dept, unit, subject, instructor string, score float64) domain.Record {
	return domain.Record{
		StudentID:  id,
		Department: dept,
		Unit:       unit,
		Subject:    subject,
		Instructor: instructor,
		Score:      score,
	}
}

// sampleRecords is a small dataset spanning two departments and three instructors
func sampleRecords() []domain.Record {
	return []domain.Record{
		rec("1", "Maths", "UE1", "Algèbre", "Prof A", 8),
		rec("1", "Maths", "UE2", "Analyse", "Prof B", 14),
		rec("2", "Maths", "UE1", "Algèbre", "Prof A", 12),
		rec("2", "Maths", "UE2", "Analyse", "Prof B", 16),
		rec("3", "Physique", "UE1", "Mécanique", "Prof C", 9.5),
		rec("3", "Physique", "UE2", "Thermodynamique", "Prof A", 10),
		rec("10", "Physique", "UE1", "Mécanique", "Prof C", 18),
	}
}

func newSampleStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(baseSchema, sampleRecords())
	require.NoError(t, err)
	return store
}

func withOptional(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	for i, r := range records {
		age := 19.0 + float64(i%3)
		sex := "F"
		if i%2 == 1 {
			sex = "M"
		}
		card := "S1"
		if i%2 == 1 {
			card = "S2"
		}
		r.Age = &age
		r.Sex = &sex
		r.ReportCard = &card
		out[i] = r
	}
	return out
}

func fullSchema() domain.Schema {
	return append(append(domain.Schema(nil), baseSchema...),
		domain.ColumnAge, domain.ColumnSex, domain.ColumnReportCard)
}
