package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"epldash/internal/config"
	"epldash/internal/dataprocessing"
	apierrors "epldash/internal/errors"
	"epldash/internal/exporter"
	"epldash/internal/infrastructure"
	"epldash/internal/ingest"
	"epldash/internal/report"
	"epldash/pkg/contracts/domain"
)

// DatasetInfo describes a loaded dataset
type DatasetInfo struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Format       string               `json:"format"`
	Records      int                  `json:"records"`
	Students     int                  `json:"students"`
	Schema       domain.Schema        `json:"schema"`
	Capabilities []string             `json:"capabilities"`
	Sections     []report.SectionName `json:"sections"`
	LoadedAt     time.Time            `json:"loaded_at"`
}

// FilterOptions lists the selectable values of every filterable column
type FilterOptions map[string][]string

type session struct {
	info     DatasetInfo
	store    *dataprocessing.Store
	lastUsed time.Time
}

// StatsService holds uploaded datasets and answers report queries on them.
// Datasets are immutable once loaded; every query filters a fresh view.
type StatsService struct {
	loader      *ingest.Loader
	workbook    *exporter.WorkbookExporter
	sections    *exporter.SectionExporter
	metrics     *infrastructure.ReportMetrics
	tracer      trace.Tracer
	logger      *slog.Logger
	maxSessions int

	mu       sync.Mutex
	sessions map[uuid.UUID]*session

	now func() time.Time
}

// NewStatsService creates the service. A nil metrics set disables
// metric recording; maxSessions <= 0 uses the configured default.
func NewStatsService(maxSessions int, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	if maxSessions <= 0 {
		maxSessions = config.DefaultMaxSessions
	}

	return &StatsService{
		loader:      ingest.NewLoader(logger),
		workbook:    exporter.NewWorkbookExporter(logger),
		sections:    exporter.NewSectionExporter(nil),
		metrics:     metrics,
		tracer:      otel.Tracer(infrastructure.MeterName),
		logger:      logger.With(slog.String("component", "stats_service")),
		maxSessions: maxSessions,
		sessions:    make(map[uuid.UUID]*session),
		now:         time.Now,
	}
}

// countingReader records how many bytes were consumed
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// LoadDataset parses an uploaded file and keeps it as a new session
func (s *StatsService) LoadDataset(ctx context.Context, name string, r io.Reader) (DatasetInfo, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	counter := &countingReader{r: r}

	store, err := s.loader.Load(ctx, name, counter)
	if err != nil && counter.n == 0 && !errors.Is(err, ingest.ErrUnsupportedFormat) {
		err = ErrEmptyUpload
	}
	infrastructure.ObserveUpload(format, counter.n, err)
	if err != nil {
		return DatasetInfo{}, err
	}

	return s.AddDataset(ctx, name, format, store), nil
}

// AddDataset registers an already built store as a session
func (s *StatsService) AddDataset(ctx context.Context, name, format string, store *dataprocessing.Store) DatasetInfo {
	id := uuid.New()
	summary := dataprocessing.Summarize(store.View())

	info := DatasetInfo{
		ID:           id.String(),
		Name:         filepath.Base(name),
		Format:       format,
		Records:      store.Len(),
		Students:     summary.Students,
		Schema:       store.Schema(),
		Capabilities: store.Capabilities().List(),
		Sections:     availableSections(store.View()),
		LoadedAt:     s.now().UTC(),
	}

	s.mu.Lock()
	evicted := s.evictLocked()
	s.sessions[id] = &session{info: info, store: store, lastUsed: s.now()}
	count := len(s.sessions)
	s.mu.Unlock()

	if evicted != uuid.Nil {
		infrastructure.RecordSessionChange(ctx, s.metrics, -1)
		s.logger.InfoContext(ctx, "Dataset session evicted",
			slog.String("dataset_id", evicted.String()))
	}
	infrastructure.RecordSessionChange(ctx, s.metrics, 1)

	s.logger.InfoContext(ctx, "Dataset session created",
		slog.String("dataset_id", info.ID),
		slog.String("name", info.Name),
		slog.Int("records", info.Records),
		slog.Int("sessions", count))
	return info
}

// evictLocked drops the least recently used session when the limit is reached
func (s *StatsService) evictLocked() uuid.UUID {
	if len(s.sessions) < s.maxSessions {
		return uuid.Nil
	}
	var oldest uuid.UUID
	var oldestAt time.Time
	for id, sess := range s.sessions {
		if oldest == uuid.Nil || sess.lastUsed.Before(oldestAt) {
			oldest, oldestAt = id, sess.lastUsed
		}
	}
	delete(s.sessions, oldest)
	return oldest
}

func (s *StatsService) session(id string) (*session, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDatasetID, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.lastUsed = s.now()
	return sess, nil
}

// Dataset returns the description of a loaded dataset
func (s *StatsService) Dataset(id string) (DatasetInfo, error) {
	sess, err := s.session(id)
	if err != nil {
		return DatasetInfo{}, err
	}
	return sess.info, nil
}

// Datasets lists loaded datasets, most recent first
func (s *StatsService) Datasets() []DatasetInfo {
	s.mu.Lock()
	list := make([]DatasetInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess.info)
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].LoadedAt.Equal(list[j].LoadedAt) {
			return list[i].LoadedAt.After(list[j].LoadedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// DropDataset forgets a dataset
func (s *StatsService) DropDataset(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDatasetID, id)
	}

	s.mu.Lock()
	_, ok := s.sessions[uid]
	delete(s.sessions, uid)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	infrastructure.RecordSessionChange(ctx, s.metrics, -1)
	s.logger.InfoContext(ctx, "Dataset session dropped", slog.String("dataset_id", id))
	return nil
}

// SessionCount returns the number of datasets in memory
func (s *StatsService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// FilterOptions returns the distinct values of every filterable column
// present in the dataset
func (s *StatsService) FilterOptions(ctx context.Context, id string) (FilterOptions, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	options := make(FilterOptions)
	for _, column := range filterColumns(sess.store.Capabilities()) {
		options[column] = sess.store.Domain(column)
	}
	return options, nil
}

func filterColumns(caps dataprocessing.Capabilities) []string {
	columns := append([]string(nil), domain.FilterableColumns...)
	for _, optional := range []string{domain.ColumnSex, domain.ColumnReportCard} {
		if caps.Has(optional) {
			columns = append(columns, optional)
		}
	}
	return columns
}

// view filters the dataset inside a "filter" span
func (s *StatsService) view(ctx context.Context, id string, predicates dataprocessing.Predicates) (*dataprocessing.View, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	_, span := s.tracer.Start(ctx, "filter", trace.WithAttributes(
		attribute.String("dataset.id", id),
		attribute.Int("filter.columns", len(predicates)),
	))
	view := sess.store.Filter(predicates)
	span.SetAttributes(attribute.Int("filter.selected", view.Len()))
	span.End()

	infrastructure.RecordFilterSelection(ctx, s.metrics, view.Len(), sess.store.Len())
	return view, nil
}

// Summary computes the global metrics of the filtered dataset
func (s *StatsService) Summary(ctx context.Context, id string, predicates dataprocessing.Predicates) (summary dataprocessing.Summary, err error) {
	start := time.Now()
	defer func() { infrastructure.RecordReportBuild(ctx, s.metrics, "summary", time.Since(start), err) }()

	view, err := s.view(ctx, id, predicates)
	if err != nil {
		return dataprocessing.Summary{}, err
	}

	_, span := s.tracer.Start(ctx, "aggregate", trace.WithAttributes(attribute.String("aggregate.kind", "summary")))
	defer span.End()
	return dataprocessing.Summarize(view), nil
}

// Section computes one report section of the filtered dataset
func (s *StatsService) Section(ctx context.Context, id string, name report.SectionName, predicates dataprocessing.Predicates) (section report.Section, err error) {
	start := time.Now()
	defer func() { infrastructure.RecordReportBuild(ctx, s.metrics, "section", time.Since(start), err) }()

	view, err := s.view(ctx, id, predicates)
	if err != nil {
		return report.Section{}, err
	}

	_, span := s.tracer.Start(ctx, "aggregate", trace.WithAttributes(attribute.String("report.section", string(name))))
	defer span.End()

	section, ok, err := report.Build(view, name)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return report.Section{}, err
	}
	if !ok {
		return report.Section{}, fmt.Errorf("%w: %s requires column %s", ErrSectionUnavailable, name, name.Requires())
	}
	return section, nil
}

// Report assembles the requested sections of the filtered dataset.
// No sections means the default five.
func (s *StatsService) Report(ctx context.Context, id string, predicates dataprocessing.Predicates, sections []report.SectionName) (artifact *report.Artifact, err error) {
	start := time.Now()
	defer func() { infrastructure.RecordReportBuild(ctx, s.metrics, "report", time.Since(start), err) }()

	view, err := s.view(ctx, id, predicates)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, view, sections), nil
}

func (s *StatsService) assemble(ctx context.Context, view *dataprocessing.View, sections []report.SectionName) *report.Artifact {
	if len(sections) == 0 {
		sections = report.DefaultSections()
	}

	_, span := s.tracer.Start(ctx, "assemble", trace.WithAttributes(
		attribute.Int("report.requested", len(sections)),
		attribute.Int("report.records", view.Len()),
	))
	defer span.End()

	artifact := report.Assemble(view, sections)
	span.SetAttributes(attribute.Int("report.sections", len(artifact.Sections)))
	return artifact
}

// ExportWorkbook writes the assembled report as an xlsx workbook
func (s *StatsService) ExportWorkbook(ctx context.Context, id string, predicates dataprocessing.Predicates, sections []report.SectionName, w io.Writer) (err error) {
	start := time.Now()
	defer func() { infrastructure.RecordReportBuild(ctx, s.metrics, "workbook", time.Since(start), err) }()

	view, err := s.view(ctx, id, predicates)
	if err != nil {
		return err
	}

	artifact := s.assemble(ctx, view, sections)
	if err := s.workbook.Write(w, artifact); err != nil {
		infrastructure.RecordError(ctx, err)
		return apierrors.NewExportError("failed to write workbook", err).
			WithContext("dataset_id", id)
	}

	infrastructure.ObserveExport("xlsx")
	return nil
}

// ExportBulletins writes the report cards table as CSV
func (s *StatsService) ExportBulletins(ctx context.Context, id string, predicates dataprocessing.Predicates, w io.Writer) (err error) {
	start := time.Now()
	defer func() { infrastructure.RecordReportBuild(ctx, s.metrics, "bulletins", time.Since(start), err) }()

	view, err := s.view(ctx, id, predicates)
	if err != nil {
		return err
	}
	if !view.Capabilities().Has(domain.ColumnReportCard) {
		return fmt.Errorf("%w: no %s column", ErrSectionUnavailable, domain.ColumnReportCard)
	}

	artifact := s.assemble(ctx, view, []report.SectionName{report.SectionReportCards})
	if err := s.sections.WriteBulletins(w, artifact); err != nil {
		infrastructure.RecordError(ctx, err)
		return apierrors.NewExportError("failed to write bulletins", err).
			WithContext("dataset_id", id)
	}

	infrastructure.ObserveExport("bulletins")
	return nil
}

// availableSections lists every section the view can produce
func availableSections(view *dataprocessing.View) []report.SectionName {
	var names []report.SectionName
	caps := view.Capabilities()
	for _, name := range report.AllSections() {
		if req := name.Requires(); req == "" || caps.Has(req) {
			names = append(names, name)
		}
	}
	return names
}
