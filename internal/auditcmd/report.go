package auditcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/labelaudit/internal/results"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath, issuesDir, convertPath, accept string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a saved results file",
		Long: `Report rebuilds the summary of a verification run from its results file, and
can write the MISSING/SIMILAR extracts or convert the results to another format.`,
		Example: `  labelaudit report --results verification_results.csv
  labelaudit report --results run.parquet --issues issues/ --convert run.xlsx
  labelaudit report --results run.yaml --accept FOUND,FOUND_NUMERIC_FORMAT`,
		RunE: func(cmd *cobra.Command, args []string) error {
			accepted := verify.DefaultAccepted
			if accept != "" {
				var err error
				if accepted, err = parseStatuses(accept); err != nil {
					return err
				}
			}

			rows, err := results.ReadRows(resultsPath)
			if err != nil {
				return fmt.Errorf("failed to read results: %w", err)
			}
			report := verify.FromRows(rows, accepted)

			out := cmd.OutOrStdout()
			if err := report.WriteSummary(out); err != nil {
				return err
			}

			if issuesDir != "" {
				missing, similar, err := results.WriteIssues(issuesDir, report.Rows)
				if err != nil {
					return fmt.Errorf("failed to write issue extracts: %w", err)
				}
				fmt.Fprintf(out, "MISSING fields: %s\nSIMILAR fields: %s\n", missing, similar)
			}
			if convertPath != "" {
				spec := results.RunSpec{
					Config: results.RunConfig{Records: resultsPath},
					Report: report,
				}
				if err := results.Write(convertPath, spec); err != nil {
					return fmt.Errorf("failed to convert results: %w", err)
				}
				fmt.Fprintf(out, "Results written to: %s\n", convertPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Results file written by verify")
	cmd.Flags().StringVar(&issuesDir, "issues", "", "Directory for the MISSING and SIMILAR extracts")
	cmd.Flags().StringVar(&convertPath, "convert", "", "Write the results again in the format of this path")
	cmd.Flags().StringVar(&accept, "accept", "", "Comma-separated statuses that count as verified")
	_ = cmd.MarkFlagRequired("results")

	return cmd
}
