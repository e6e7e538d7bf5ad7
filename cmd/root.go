package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/labelaudit/internal/auditcmd"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "labelaudit",
		Short: "Check extracted document labels against their source documents",
		Long: `Labelaudit verifies structured labels (JSON records extracted from invoices
and similar documents) against the text of the documents they came from.

Every field is classified as found, found after normalization, similar, missing
or not applicable, and results are summarized per field and per record.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	cmd.AddCommand(auditcmd.NewVerifyCmd())
	cmd.AddCommand(auditcmd.NewMatchCmd())
	cmd.AddCommand(auditcmd.NewConsistencyCmd())
	cmd.AddCommand(auditcmd.NewDuplicatesCmd())
	cmd.AddCommand(auditcmd.NewExtractCmd())
	cmd.AddCommand(auditcmd.NewReportCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
