// Command generate-dataset writes a synthetic academic records dataset in
// the layout the dashboard loads (id_etudiant, departement, UE, matiere,
// enseignant, note and, with --with-optional, age, sexe, bulletin).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"epldash/internal/exporter"
	"epldash/internal/infrastructure"
	"epldash/internal/validation"
)

var (
	outPath string
	opts    Options
)

var rootCmd = &cobra.Command{
	Use:          "generate-dataset",
	Short:        "Generate a synthetic EPL records dataset",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&outPath, "out", "o", "notes.csv", "Output CSV path")
	f.IntVarP(&opts.Students, "students", "n", 1200, "Number of students")
	f.Uint64Var(&opts.Seed, "seed", 42, "Random seed")
	f.BoolVar(&opts.WithOptional, "with-optional", false, "Add age, sex and report card columns")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if opts.Students <= 0 {
		return fmt.Errorf("--students must be positive, got %d", opts.Students)
	}

	logger := infrastructure.WithComponent(infrastructure.NewLogger(os.Stderr, "info"), "generate-dataset")
	if err := validation.NewFileValidator(logger).ValidateOutputFile(outPath, ".csv"); err != nil {
		return err
	}

	records := Generate(opts)
	if err := exporter.NewDatasetExporter(nil).ExportRecords(records, opts.Schema(), outPath); err != nil {
		return err
	}

	logger.InfoContext(cmd.Context(), "Dataset generated",
		slog.String("path", outPath),
		slog.Int("students", opts.Students),
		slog.Int("records", len(records)),
		slog.Bool("with_optional", opts.WithOptional))
	fmt.Fprintf(cmd.OutOrStdout(), "Dataset written: %s (%d records)\n", outPath, len(records))
	return nil
}
