package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"epldash/internal/exporter"
	"epldash/internal/report"
	"epldash/internal/validation"
)

var (
	exportOut      string
	exportCSVDir   string
	exportSections []string
	exportAll      bool
)

var exportCmd = &cobra.Command{
	Use:   "export <dataset>",
	Short: "Write the report workbook and/or one CSV file per section",
	Long: `Assembles the report of the filtered dataset and writes it as an xlsx
workbook (--out) and/or as one CSV file per section (--csv-dir).
Without --section the default five sections are used; sections whose
optional column is missing from the dataset are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportOut, "out", "o", "", "Workbook output path (e.g. rapport_EPL.xlsx)")
	f.StringVar(&exportCSVDir, "csv-dir", "", "Directory receiving one CSV file per section")
	f.StringSliceVar(&exportSections, "section", nil,
		"Sections to include: "+strings.Join(sectionNames(report.AllSections()), ", "))
	f.BoolVar(&exportAll, "all", false, "Include every section the dataset supports")
}

func sectionNames(names []report.SectionName) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

// selectedSections resolves the --section and --all flags
func selectedSections() ([]report.SectionName, error) {
	switch {
	case exportAll:
		return report.AllSections(), nil
	case len(exportSections) == 0:
		return report.DefaultSections(), nil
	}
	return report.ParseSections(exportSections)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportOut == "" && exportCSVDir == "" {
		return fmt.Errorf("nothing to write: pass --out and/or --csv-dir")
	}

	sections, err := selectedSections()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := newLogger()
	validator := validation.NewFileValidator(logger)
	if exportOut != "" {
		if err := validator.ValidateOutputFile(exportOut, ".xlsx"); err != nil {
			return err
		}
	}
	if exportCSVDir != "" {
		if err := validator.ValidateOutputDirectory(exportCSVDir); err != nil {
			return err
		}
	}

	view, err := loadView(ctx, logger, args[0])
	if err != nil {
		return err
	}

	artifact := report.Assemble(view, sections)
	out := cmd.OutOrStdout()

	if exportOut != "" {
		if err := exporter.NewWorkbookExporter(logger).Save(exportOut, artifact); err != nil {
			return err
		}
		fmt.Fprintf(out, "Workbook written: %s (%d sheets)\n", exportOut, len(artifact.Sections))
	}

	if exportCSVDir != "" {
		written, err := exporter.NewSectionExporter(nil).ExportSections(artifact, exportCSVDir)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintf(out, "Section written: %s\n", path)
		}
	}

	logger.InfoContext(ctx, "Report exported",
		slog.Any("sections", artifact.Names()),
		slog.Int("records", view.Len()))
	return nil
}
