package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"epldash/internal/exporter"
	"epldash/internal/report"
	"epldash/internal/validation"
)

var bulletinsOut string

var bulletinsCmd = &cobra.Command{
	Use:   "bulletins <dataset>",
	Short: "Write the mean score of every student per report card",
	Long: `Writes one row per (student_id, report_card) with the mean score.
The dataset must have a report card column. Without --out the CSV goes to
standard output.`,
	Args: cobra.ExactArgs(1),
	RunE: runBulletins,
}

func init() {
	bulletinsCmd.Flags().StringVarP(&bulletinsOut, "out", "o", "", "Output path (e.g. bulletins_etudiants.csv)")
}

func runBulletins(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	if bulletinsOut != "" {
		if err := validation.NewFileValidator(logger).ValidateOutputFile(bulletinsOut, ".csv"); err != nil {
			return err
		}
	}

	view, err := loadView(cmd.Context(), logger, args[0])
	if err != nil {
		return err
	}

	artifact := report.Assemble(view, []report.SectionName{report.SectionReportCards})
	sections := exporter.NewSectionExporter(nil)

	if bulletinsOut == "" {
		err = sections.WriteBulletins(cmd.OutOrStdout(), artifact)
	} else {
		err = sections.ExportBulletins(artifact, bulletinsOut)
	}
	if errors.Is(err, exporter.ErrNoReportCards) {
		return fmt.Errorf("%s has no report card column", args[0])
	}
	if err != nil {
		return err
	}

	if bulletinsOut != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Report cards written: %s\n", bulletinsOut)
	}
	return nil
}
