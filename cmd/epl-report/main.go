// Command epl-report builds the academic report of a dataset file from the
// command line: the global summary, the multi-sheet workbook, per-section
// CSV files and the flat report cards export.
//
// Usage:
//
//	epl-report summary notes.csv --department Maths
//	epl-report export notes.xlsx --out rapport_EPL.xlsx --csv-dir sections/
//	epl-report bulletins notes.csv --out bulletins_etudiants.csv
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"epldash/internal/dataprocessing"
	"epldash/internal/infrastructure"
	"epldash/internal/ingest"
	"epldash/internal/validation"
	"epldash/pkg/contracts/domain"
)

var (
	logLevel    string
	departments []string
	units       []string
	subjects    []string
	instructors []string
	sexes       []string
	reportCards []string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "epl-report",
	Short:         "Aggregate and export EPL academic records",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringArrayVar(&departments, "department", nil, "Keep records of this department (repeatable)")
	pf.StringArrayVar(&units, "unit", nil, "Keep records of this teaching unit (repeatable)")
	pf.StringArrayVar(&subjects, "subject", nil, "Keep records of this subject (repeatable)")
	pf.StringArrayVar(&instructors, "instructor", nil, "Keep records of this instructor (repeatable)")
	pf.StringArrayVar(&sexes, "sex", nil, "Keep records of this sex, when the dataset has the column (repeatable)")
	pf.StringArrayVar(&reportCards, "report-card", nil, "Keep records of this report card, when the dataset has the column (repeatable)")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(bulletinsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return infrastructure.WithComponent(infrastructure.NewLogger(os.Stderr, logLevel), "epl-report")
}

// predicates collects the filter flags; empty flags do not restrict
func predicates() dataprocessing.Predicates {
	p := dataprocessing.Predicates{}
	add := func(column string, values []string) {
		if len(values) > 0 {
			p[column] = values
		}
	}
	add(domain.ColumnDepartment, departments)
	add(domain.ColumnUnit, units)
	add(domain.ColumnSubject, subjects)
	add(domain.ColumnInstructor, instructors)
	add(domain.ColumnSex, sexes)
	add(domain.ColumnReportCard, reportCards)
	return p
}

// loadView reads the dataset at path and applies the filter flags
func loadView(ctx context.Context, logger *slog.Logger, path string) (*dataprocessing.View, error) {
	if err := validation.NewFileValidator(logger).ValidateDatasetFile(path); err != nil {
		return nil, err
	}

	store, err := ingest.NewLoader(logger).LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	p := predicates()
	view := store.Filter(p)
	logger.InfoContext(ctx, "Filter applied",
		slog.String("dataset", path),
		slog.Any("predicates", p),
		slog.Int("selected", view.Len()),
		slog.Int("total", store.Len()))
	return view, nil
}
