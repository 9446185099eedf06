package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"epldash/internal/dataprocessing"
	"epldash/internal/report"
	"epldash/internal/shared/testutil"
	"epldash/pkg/contracts/domain"
)

func newTestService(t *testing.T, maxSessions int) *StatsService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewStatsService(maxSessions, nil, logger)
}

func loadSample(t *testing.T, svc *StatsService, fixture string) DatasetInfo {
	t.Helper()
	info, err := svc.LoadDataset(context.Background(), "notes.csv", testutil.CSVReader(fixture))
	require.NoError(t, err)
	return info
}

func TestLoadDataset(t *testing.T) {
	svc := newTestService(t, 0)

	info := loadSample(t, svc, testutil.SampleCSV)

	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "notes.csv", info.Name)
	assert.Equal(t, "csv", info.Format)
	assert.Equal(t, 7, info.Records)
	assert.Equal(t, 4, info.Students)
	assert.Empty(t, info.Capabilities)
	assert.Equal(t, report.DefaultSections()[1:4], info.Sections[:3])
	assert.NotContains(t, info.Sections, report.SectionReportCards)
	assert.Equal(t, 1, svc.SessionCount())
}

func TestLoadDatasetWithOptionalColumns(t *testing.T) {
	svc := newTestService(t, 0)

	info := loadSample(t, svc, testutil.SampleCSVWithOptional)

	assert.ElementsMatch(t, domain.OptionalColumns, info.Capabilities)
	assert.Contains(t, info.Sections, report.SectionStudents)
	assert.Contains(t, info.Sections, report.SectionReportCards)
}

func TestLoadDatasetErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"schema mismatch", "notes.csv", testutil.MissingColumnsCSV, dataprocessing.ErrSchemaMismatch},
		{"empty upload", "notes.csv", "", ErrEmptyUpload},
		{"unsupported format", "notes.pdf", testutil.SampleCSV, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, 0)
			_, err := svc.LoadDataset(context.Background(), tt.file, strings.NewReader(tt.content))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Zero(t, svc.SessionCount())
		})
	}
}

func TestDatasetLookup(t *testing.T) {
	svc := newTestService(t, 0)
	info := loadSample(t, svc, testutil.SampleCSV)

	got, err := svc.Dataset(info.ID)
	require.NoError(t, err)
	assert.Equal(t, info, got)

	_, err = svc.Dataset("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidDatasetID)

	_, err = svc.Dataset("8d1c7a4e-5f0a-4c1e-9a57-0c2f3e6b9d11")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDropDataset(t *testing.T) {
	svc := newTestService(t, 0)
	info := loadSample(t, svc, testutil.SampleCSV)

	require.NoError(t, svc.DropDataset(context.Background(), info.ID))
	assert.Zero(t, svc.SessionCount())

	err := svc.DropDataset(context.Background(), info.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionEviction(t *testing.T) {
	svc := newTestService(t, 2)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	first := loadSample(t, svc, testutil.SampleCSV)
	second := loadSample(t, svc, testutil.SampleCSV)

	// touch the first so the second becomes the oldest
	_, err := svc.Dataset(first.ID)
	require.NoError(t, err)

	third := loadSample(t, svc, testutil.SampleCSV)
	assert.Equal(t, 2, svc.SessionCount())

	_, err = svc.Dataset(second.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Dataset(first.ID)
	assert.NoError(t, err)

	list := svc.Datasets()
	require.Len(t, list, 2)
	assert.Equal(t, third.ID, list[0].ID)
}

func TestFilterOptions(t *testing.T) {
	svc := newTestService(t, 0)
	info := loadSample(t, svc, testutil.SampleCSV)

	options, err := svc.FilterOptions(context.Background(), info.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"Maths", "Physique"}, options[domain.ColumnDepartment])
	assert.Equal(t, []string{"Prof A", "Prof B", "Prof C"}, options[domain.ColumnInstructor])
	assert.Len(t, options, len(domain.FilterableColumns))
	assert.NotContains(t, options, domain.ColumnSex)

	full := loadSample(t, svc, testutil.SampleCSVWithOptional)
	options, err = svc.FilterOptions(context.Background(), full.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"F", "M"}, options[domain.ColumnSex])
	assert.Equal(t, []string{"S1", "S2"}, options[domain.ColumnReportCard])
	assert.NotContains(t, options, domain.ColumnAge)
}

func TestSummary(t *testing.T) {
	svc := newTestService(t, 0)
	info := loadSample(t, svc, testutil.SampleCSV)
	ctx := context.Background()

	summary, err := svc.Summary(ctx, info.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.Records)
	assert.Equal(t, 4, summary.Students)
	assert.InDelta(t, 12.5, summary.Mean.Float64, 1e-9)

	filtered, err := svc.Summary(ctx, info.ID, dataprocessing.Predicates{
		domain.ColumnDepartment: {"Maths"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, filtered.Records)
	assert.InDelta(t, 12.5, filtered.Mean.Float64, 1e-9)

	empty, err := svc.Summary(ctx, info.ID, dataprocessing.Predicates{
		domain.ColumnDepartment: {"Chimie"},
	})
	require.NoError(t, err)
	assert.Zero(t, empty.Records)
	assert.False(t, empty.Mean.Valid)
}

func TestSection(t *testing.T) {
	svc := newTestService(t, 0)
	info := loadSample(t, svc, testutil.SampleCSV)
	ctx := context.Background()

	section, err := svc.Section(ctx, info.ID, report.SectionDepartments, nil)
	require.NoError(t, err)
	assert.Equal(t, report.SectionDepartments, section.Name)
	require.Len(t, section.Table.Rows, 2)
	assert.Equal(t, []string{"Maths"}, section.Table.Rows[0].Key)

	_, err = svc.Section(ctx, info.ID, report.SectionReportCards, nil)
	assert.ErrorIs(t, err, ErrSectionUnavailable)

	_, err = svc.Section(ctx, info.ID, report.SectionName("nope"), nil)
	assert.ErrorIs(t, err, report.ErrUnknownSection)
}

func TestReport(t *testing.T) {
	svc := newTestService(t, 0)
	info := loadSample(t, svc, testutil.SampleCSV)

	artifact, err := svc.Report(context.Background(), info.ID, nil, nil)
	require.NoError(t, err)

	// age and report card sections are skipped without their columns
	assert.Equal(t, []report.SectionName{
		report.SectionGrades,
		report.SectionInstructors,
		report.SectionDepartments,
	}, artifact.Names())

	_, err = svc.Report(context.Background(), "8d1c7a4e-5f0a-4c1e-9a57-0c2f3e6b9d11", nil, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestExportWorkbook(t *testing.T) {
	svc := newTestService(t, 0)
	info := loadSample(t, svc, testutil.SampleCSVWithOptional)

	var buf bytes.Buffer
	err := svc.ExportWorkbook(context.Background(), info.ID, nil, nil, &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Etudiants", "Notes", "Enseignants", "Departements", "Bulletins"}, f.GetSheetList())
}

func TestExportBulletins(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	plain := loadSample(t, svc, testutil.SampleCSV)
	err := svc.ExportBulletins(ctx, plain.ID, nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrSectionUnavailable)

	full := loadSample(t, svc, testutil.SampleCSVWithOptional)
	var buf bytes.Buffer
	err = svc.ExportBulletins(ctx, full.ID, dataprocessing.Predicates{
		domain.ColumnReportCard: {"S1"},
	}, &buf)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	// header plus one row per student holding an S1 card
	assert.Len(t, rows, 5)
}

func TestConcurrentQueries(t *testing.T) {
	svc := newTestService(t, 0)
	info := loadSample(t, svc, testutil.SampleCSV)
	ctx := context.Background()

	done := make(chan error, 20)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := svc.Summary(ctx, info.ID, nil)
			done <- err
		}()
		go func(i int) {
			_, err := svc.LoadDataset(ctx, fmt.Sprintf("notes-%d.csv", i), testutil.CSVReader(testutil.SampleCSV))
			done <- err
		}(i)
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, <-done)
	}
	assert.Equal(t, 11, svc.SessionCount())
}
