package testutil

import (
	"strings"

	"epldash/pkg/contracts/domain"
)

// BaseSchema is the schema of a dataset carrying only the required columns
func BaseSchema() domain.Schema {
	return append(domain.Schema(nil), domain.RequiredColumns...)
}

// FullSchema adds every optional column to BaseSchema
func FullSchema() domain.Schema {
	return append(BaseSchema(), domain.OptionalColumns...)
}

// NewRecord builds a record with the required fields only
func NewRecord(id, department, unit, subject, instructor string, score float64) domain.Record {
	return domain.Record{
		StudentID:  id,
		Department: department,
		Unit:       unit,
		Subject:    subject,
		Instructor: instructor,
		Score:      score,
	}
}

// SampleRecords returns seven scores for four students across two departments.
// Global mean 12.5, median 12, pass rate 5/7.
func SampleRecords() []domain.Record {
	return []domain.Record{
		NewRecord("1", "Maths", "UE1", "Algèbre", "Prof A", 8),
		NewRecord("1", "Maths", "UE2", "Analyse", "Prof B", 14),
		NewRecord("2", "Maths", "UE1", "Algèbre", "Prof A", 12),
		NewRecord("2", "Maths", "UE2", "Analyse", "Prof B", 16),
		NewRecord("3", "Physique", "UE1", "Mécanique", "Prof C", 9.5),
		NewRecord("3", "Physique", "UE2", "Thermodynamique", "Prof A", 10),
		NewRecord("10", "Physique", "UE1", "Mécanique", "Prof C", 18),
	}
}

// SampleCSV is SampleRecords in the French export layout
const SampleCSV = `id_etudiant,departement,UE,matiere,enseignant,note
1,Maths,UE1,Algèbre,Prof A,8
1,Maths,UE2,Analyse,Prof B,14
2,Maths,UE1,Algèbre,Prof A,12
2,Maths,UE2,Analyse,Prof B,16
3,Physique,UE1,Mécanique,Prof C,9.5
3,Physique,UE2,Thermodynamique,Prof A,10
10,Physique,UE1,Mécanique,Prof C,18
`

// SampleCSVWithOptional carries age, sex and report card columns
const SampleCSVWithOptional = `id_etudiant,departement,UE,matiere,enseignant,note,age,sexe,bulletin
1,Maths,UE1,Algèbre,Prof A,8,19,F,S1
1,Maths,UE2,Analyse,Prof B,14,19,F,S2
2,Maths,UE1,Algèbre,Prof A,12,20,M,S1
2,Maths,UE2,Analyse,Prof B,16,20,M,S2
3,Physique,UE1,Mécanique,Prof C,9.5,21,F,S1
3,Physique,UE2,Thermodynamique,Prof A,10,21,F,S2
10,Physique,UE1,Mécanique,Prof C,18,19,M,S1
`

// MissingColumnsCSV lacks the unit and instructor columns
const MissingColumnsCSV = `id_etudiant,departement,matiere,note
1,Maths,Algèbre,8
`

// CSVReader returns a reader over the given fixture
func CSVReader(fixture string) *strings.Reader {
	return strings.NewReader(fixture)
}
