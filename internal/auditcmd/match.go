package auditcmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
)

// NewMatchCmd creates the match command
func NewMatchCmd() *cobra.Command {
	var text, textFile, field string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match VALUE",
		Short: "Match a single value against a text",
		Args:  cobra.ExactArgs(1),
		Example: `  labelaudit match "03/10/2023" --field "Invoice Date" --text-file invoice.txt
  labelaudit match "INV-001" --text "Invoice no. inv-001" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			switch {
			case textFile != "" && text != "":
				return errors.New("use either --text or --text-file")
			case textFile != "":
				data, err := os.ReadFile(textFile)
				if err != nil {
					return fmt.Errorf("failed to read text: %w", err)
				}
				text = string(data)
			}

			v := matcher.New(cfg.MatcherOptions()).MatchString(args[0], text, field)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			}
			fmt.Fprintf(out, "Status:   %s\n", v.Status)
			fmt.Fprintf(out, "Score:    %.2f\n", v.Score)
			fmt.Fprintf(out, "Evidence: %s\n", v.Evidence)
			if v.DateFormat != "" {
				fmt.Fprintf(out, "Date:     %s\n", v.DateFormat)
			}
			return nil
		},
	}

	addConfigFlag(cmd)
	cmd.Flags().StringVar(&text, "text", "", "Text to search")
	cmd.Flags().StringVar(&textFile, "text-file", "", "File holding the text to search")
	cmd.Flags().StringVar(&field, "field", "", "Field name, used for date and percentage handling")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the verdict as JSON")
	cmd.Flags().Float64("threshold", matcher.DefaultFuzzyThreshold, "Minimum similarity reported as SIMILAR")

	return cmd
}
