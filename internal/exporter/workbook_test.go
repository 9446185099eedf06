package exporter

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"epldash/internal/report"
	"epldash/pkg/contracts/domain"
)

func TestWorkbookExporter_Write(t *testing.T) {
	artifact := sampleArtifact(t, fullSchema, report.DefaultSections())
	var buf bytes.Buffer

	require.NoError(t, NewWorkbookExporter(nil).Write(&buf, artifact))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Etudiants", "Notes", "Enseignants", "Departements", "Bulletins"}, f.GetSheetList())

	rows, err := f.GetRows("Departements")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"department", "mean", "median", "std", "count"}, rows[0])
	assert.Equal(t, "Génie Civil", rows[1][0])
	assert.Equal(t, "13.25", rows[1][1])
	assert.Equal(t, "2", rows[1][4])

	notes, err := f.GetRows("Notes")
	require.NoError(t, err)
	assert.Equal(t, []string{"student_id", "mean"}, notes[0])
	assert.Equal(t, []string{"2", "15.5"}, notes[1])
}

func TestWorkbookExporter_UndefinedIsEmptyCell(t *testing.T) {
	artifact := sampleArtifact(t, fullSchema, []report.SectionName{report.SectionStudents})
	var buf bytes.Buffer
	require.NoError(t, NewWorkbookExporter(nil).Write(&buf, artifact))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	// age 22 has a single score so its std is undefined
	value, err := f.GetCellValue("Etudiants", "D4")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	age, err := f.GetCellValue("Etudiants", "A4")
	require.NoError(t, err)
	assert.Equal(t, "22", age)
}

func TestWorkbookExporter_OptionalSheetsOmitted(t *testing.T) {
	schema := fullSchema[:6]
	artifact := sampleArtifact(t, schema, report.DefaultSections())

	path := filepath.Join(t.TempDir(), "reports", "rapport_EPL.xlsx")
	require.NoError(t, NewWorkbookExporter(nil).Save(path, artifact))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Notes", "Enseignants", "Departements"}, f.GetSheetList())
}

func TestWorkbookExporter_EmptyArtifact(t *testing.T) {
	artifact := sampleArtifact(t, domain.Schema(fullSchema), nil)
	err := NewWorkbookExporter(nil).Write(&bytes.Buffer{}, artifact)
	assert.ErrorIs(t, err, ErrEmptyArtifact)
}
