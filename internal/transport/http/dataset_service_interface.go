package http

import (
	"context"
	"io"

	"epldash/internal/dataprocessing"
	"epldash/internal/report"
	"epldash/internal/services"
)

// DatasetServiceInterface defines the dataset operations the HTTP layer needs
type DatasetServiceInterface interface {
	LoadDataset(ctx context.Context, name string, r io.Reader) (services.DatasetInfo, error)
	Dataset(id string) (services.DatasetInfo, error)
	Datasets() []services.DatasetInfo
	DropDataset(ctx context.Context, id string) error
	FilterOptions(ctx context.Context, id string) (services.FilterOptions, error)
	Summary(ctx context.Context, id string, predicates dataprocessing.Predicates) (dataprocessing.Summary, error)
	Section(ctx context.Context, id string, name report.SectionName, predicates dataprocessing.Predicates) (report.Section, error)
	Report(ctx context.Context, id string, predicates dataprocessing.Predicates, sections []report.SectionName) (*report.Artifact, error)
	ExportWorkbook(ctx context.Context, id string, predicates dataprocessing.Predicates, sections []report.SectionName, w io.Writer) error
	ExportBulletins(ctx context.Context, id string, predicates dataprocessing.Predicates, w io.Writer) error
}
