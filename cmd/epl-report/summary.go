package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"epldash/internal/dataprocessing"
)

var summaryText bool

var summaryCmd = &cobra.Command{
	Use:   "summary <dataset>",
	Short: "Print the global metrics of the filtered dataset",
	Long: `Prints the record and student counts, mean, median, sample standard
deviation, pass rate and score distribution of the filtered dataset.
Output is JSON unless --text is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryText, "text", false, "Print a short human readable summary")
}

func runSummary(cmd *cobra.Command, args []string) error {
	view, err := loadView(cmd.Context(), newLogger(), args[0])
	if err != nil {
		return err
	}

	summary := dataprocessing.Summarize(view)
	if summaryText {
		return writeSummaryText(cmd.OutOrStdout(), summary)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func writeSummaryText(w io.Writer, s dataprocessing.Summary) error {
	_, err := fmt.Fprintf(w,
		"Records:   %d\nStudents:  %d\nMean:      %s\nMedian:    %s\nStd:       %s\nPass rate: %s\n",
		s.Records, s.Students, textValue(s.Mean), textValue(s.Median), textValue(s.Std), textValue(s.PassRate))
	return err
}

func textValue(v dataprocessing.NullFloat) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}
