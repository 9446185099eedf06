package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"epldash/internal/config"
	"epldash/internal/dataprocessing"
	apierrors "epldash/internal/errors"
	"epldash/internal/report"
	"epldash/internal/services"
	"epldash/internal/shared/testutil"
	"epldash/pkg/contracts/domain"
)

const testDatasetID = "8d1c7a4e-5f0a-4c1e-9a57-0c2f3e6b9d11"

// MockDatasetService is a mock implementation of DatasetServiceInterface
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) LoadDataset(ctx context.Context, name string, r io.Reader) (services.DatasetInfo, error) {
	args := m.Called(name)
	return args.Get(0).(services.DatasetInfo), args.Error(1)
}

func (m *MockDatasetService) Dataset(id string) (services.DatasetInfo, error) {
	args := m.Called(id)
	return args.Get(0).(services.DatasetInfo), args.Error(1)
}

func (m *MockDatasetService) Datasets() []services.DatasetInfo {
	args := m.Called()
	return args.Get(0).([]services.DatasetInfo)
}

func (m *MockDatasetService) DropDataset(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockDatasetService) FilterOptions(ctx context.Context, id string) (services.FilterOptions, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(services.FilterOptions), args.Error(1)
}

func (m *MockDatasetService) Summary(ctx context.Context, id string, predicates dataprocessing.Predicates) (dataprocessing.Summary, error) {
	args := m.Called(id, predicates)
	return args.Get(0).(dataprocessing.Summary), args.Error(1)
}

func (m *MockDatasetService) Section(ctx context.Context, id string, name report.SectionName, predicates dataprocessing.Predicates) (report.Section, error) {
	args := m.Called(id, name, predicates)
	return args.Get(0).(report.Section), args.Error(1)
}

func (m *MockDatasetService) Report(ctx context.Context, id string, predicates dataprocessing.Predicates, sections []report.SectionName) (*report.Artifact, error) {
	args := m.Called(id, predicates, sections)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Artifact), args.Error(1)
}

func (m *MockDatasetService) ExportWorkbook(ctx context.Context, id string, predicates dataprocessing.Predicates, sections []report.SectionName, w io.Writer) error {
	args := m.Called(id, predicates, sections)
	if args.Error(0) == nil {
		io.WriteString(w, "xlsx-bytes")
	}
	return args.Error(0)
}

func (m *MockDatasetService) ExportBulletins(ctx context.Context, id string, predicates dataprocessing.Predicates, w io.Writer) error {
	args := m.Called(id, predicates)
	if args.Error(0) == nil {
		io.WriteString(w, "student_id,report_card,mean\n")
	}
	return args.Error(0)
}

func newTestHandler(t *testing.T, svc DatasetServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.ReportConfig{
		MaxUploadBytes: 1 << 20,
		MaxSessions:    4,
		WorkbookName:   config.DefaultWorkbookName,
		BulletinsName:  config.DefaultBulletinsName,
	}
	return NewDatasetHandler(svc, cfg, logger, apierrors.NewErrorHandler(logger, false)).Routes()
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func multipartRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDatasetHandler_Upload(t *testing.T) {
	info := services.DatasetInfo{ID: testDatasetID, Name: "notes.csv", Records: 7, Students: 4}

	tests := []struct {
		name           string
		request        func(t *testing.T) *http.Request
		setupMock      func(*MockDatasetService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "successful upload",
			request: func(t *testing.T) *http.Request { return multipartRequest(t, "file", "notes.csv", testutil.SampleCSV) },
			setupMock: func(m *MockDatasetService) {
				m.On("LoadDataset", "notes.csv").Return(info, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   testDatasetID,
		},
		{
			name:    "schema mismatch",
			request: func(t *testing.T) *http.Request { return multipartRequest(t, "file", "notes.csv", testutil.MissingColumnsCSV) },
			setupMock: func(m *MockDatasetService) {
				err := &dataprocessing.SchemaError{Missing: []string{domain.ColumnUnit, domain.ColumnInstructor}}
				m.On("LoadDataset", "notes.csv").Return(services.DatasetInfo{}, err)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "missing_columns",
		},
		{
			name:    "empty upload",
			request: func(t *testing.T) *http.Request { return multipartRequest(t, "file", "notes.csv", "") },
			setupMock: func(m *MockDatasetService) {
				m.On("LoadDataset", "notes.csv").Return(services.DatasetInfo{}, services.ErrEmptyUpload)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   apierrors.CodeInvalidDataset,
		},
		{
			name:           "missing file field",
			request:        func(t *testing.T) *http.Request { return multipartRequest(t, "upload", "notes.csv", testutil.SampleCSV) },
			setupMock:      func(m *MockDatasetService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "A dataset file is required",
		},
		{
			name: "too large",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "notes.csv", strings.Repeat("x", 2<<20))
			},
			setupMock:      func(m *MockDatasetService) {},
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedBody:   apierrors.CodePayloadTooLarge,
		},
		{
			name:           "not multipart",
			request:        func(t *testing.T) *http.Request { return jsonRequest(http.MethodPost, "/", `{}`) },
			setupMock:      func(m *MockDatasetService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   apierrors.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDatasetService)
			tt.setupMock(mockService)
			router := newTestHandler(t, mockService)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tt.request(t))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestDatasetHandler_GetDataset(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{"found", testDatasetID, nil, http.StatusOK, `"status":"success"`},
		{"not found", testDatasetID, services.ErrSessionNotFound, http.StatusNotFound, apierrors.CodeDatasetNotFound},
		{"invalid id", "abc", fmt.Errorf("%w: %q", services.ErrInvalidDatasetID, "abc"), http.StatusBadRequest, apierrors.CodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDatasetService)
			mockService.On("Dataset", tt.id).Return(services.DatasetInfo{ID: tt.id}, tt.err)
			router := newTestHandler(t, mockService)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+tt.id, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestDatasetHandler_ListAndDelete(t *testing.T) {
	mockService := new(MockDatasetService)
	mockService.On("Datasets").Return([]services.DatasetInfo{{ID: testDatasetID}})
	mockService.On("DropDataset", testDatasetID).Return(nil).Once()
	mockService.On("DropDataset", testDatasetID).Return(services.ErrSessionNotFound).Once()
	router := newTestHandler(t, mockService)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/"+testDatasetID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/"+testDatasetID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	mockService.AssertExpectations(t)
}

func TestDatasetHandler_Filters(t *testing.T) {
	mockService := new(MockDatasetService)
	mockService.On("FilterOptions", testDatasetID).Return(services.FilterOptions{
		domain.ColumnDepartment: {"Maths", "Physique"},
	}, nil)
	router := newTestHandler(t, mockService)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+testDatasetID+"/filters", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"department":["Maths","Physique"]`)
}

func TestDatasetHandler_Summary(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		predicates     dataprocessing.Predicates
		callsService   bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no body means no filter",
			body:           "",
			predicates:     dataprocessing.Predicates{},
			callsService:   true,
			expectedStatus: http.StatusOK,
			expectedBody:   `"mean":12.5`,
		},
		{
			name:           "department filter",
			body:           `{"department":["Maths"]}`,
			predicates:     dataprocessing.Predicates{domain.ColumnDepartment: {"Maths"}},
			callsService:   true,
			expectedStatus: http.StatusOK,
			expectedBody:   `"records":7`,
		},
		{
			name:           "empty value rejected",
			body:           `{"department":[""]}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "department[0]",
		},
		{
			name:           "invalid json",
			body:           `{"department":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "INVALID_JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDatasetService)
			if tt.callsService {
				mockService.On("Summary", testDatasetID, tt.predicates).Return(dataprocessing.Summary{
					Records: 7,
					Mean:    dataprocessing.Defined(12.5),
				}, nil)
			}
			router := newTestHandler(t, mockService)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/"+testDatasetID+"/summary", tt.body))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestDatasetHandler_Section(t *testing.T) {
	mockService := new(MockDatasetService)
	mockService.On("Section", testDatasetID, report.SectionDepartments, dataprocessing.Predicates{}).
		Return(report.Section{Name: report.SectionDepartments, Sheet: "Departements"}, nil)
	mockService.On("Section", testDatasetID, report.SectionStudents, dataprocessing.Predicates{}).
		Return(report.Section{}, fmt.Errorf("%w: students requires column age", services.ErrSectionUnavailable))
	router := newTestHandler(t, mockService)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/"+testDatasetID+"/sections/departments", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sheet":"Departements"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/"+testDatasetID+"/sections/students", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), apierrors.CodeSectionMissing)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/"+testDatasetID+"/sections/histogram", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mockService.AssertExpectations(t)
}

func TestDatasetHandler_Report(t *testing.T) {
	artifact := &report.Artifact{Sections: []report.Section{{Name: report.SectionGrades, Sheet: "Notes"}}}

	mockService := new(MockDatasetService)
	mockService.On("Report", testDatasetID,
		dataprocessing.Predicates{domain.ColumnInstructor: {"Prof A"}},
		[]report.SectionName{report.SectionGrades},
	).Return(artifact, nil)
	router := newTestHandler(t, mockService)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/"+testDatasetID+"/report",
		`{"filters":{"instructor":["Prof A"]},"sections":["grades"]}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/"+testDatasetID+"/report", `{"sections":["charts"]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "sections[0]")

	mockService.AssertExpectations(t)
}

func TestDatasetHandler_ExportWorkbook(t *testing.T) {
	mockService := new(MockDatasetService)
	mockService.On("ExportWorkbook", testDatasetID, dataprocessing.Predicates{}, []report.SectionName{}).Return(nil)
	router := newTestHandler(t, mockService)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/"+testDatasetID+"/export/xlsx", `{"file_name":"rapport"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, config.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=rapport.xlsx`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx-bytes", rec.Body.String())
	mockService.AssertExpectations(t)
}

func TestDatasetHandler_ExportBulletins(t *testing.T) {
	mockService := new(MockDatasetService)
	mockService.On("ExportBulletins", testDatasetID, dataprocessing.Predicates{}).Return(nil).Once()
	mockService.On("ExportBulletins", testDatasetID, dataprocessing.Predicates{}).
		Return(services.ErrSectionUnavailable).Once()
	router := newTestHandler(t, mockService)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/"+testDatasetID+"/export/bulletins", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename=bulletins_etudiants.csv`, rec.Header().Get("Content-Disposition"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/"+testDatasetID+"/export/bulletins", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.EqualValues(t, http.StatusNotFound, problem["status"])

	mockService.AssertExpectations(t)
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "rapport_EPL.xlsx", downloadName("", "rapport_EPL.xlsx", ".xlsx"))
	assert.Equal(t, "custom.xlsx", downloadName("custom", "rapport_EPL.xlsx", ".xlsx"))
	assert.Equal(t, "custom.CSV", downloadName("custom.CSV", "x.csv", ".csv"))
}
