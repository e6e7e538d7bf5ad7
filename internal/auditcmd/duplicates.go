package auditcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/labelaudit/internal/dedupe"
)

// NewDuplicatesCmd creates the duplicates command
func NewDuplicatesCmd() *cobra.Command {
	var recordsPath string
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "Find labels with identical content",
		Long: `Duplicates groups labels whose content is identical regardless of key order
and formatting. Each group keeps its alphabetically first id.`,
		Example: `  labelaudit duplicates --records labels/
  labelaudit duplicates --records bundle.jsonl --yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd.Context(), recordsPath)
			if err != nil {
				return err
			}
			groups := dedupe.Find(records)

			out := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(groups)
			}

			if len(groups) == 0 {
				fmt.Fprintf(out, "No duplicates among %d labels.\n", len(records))
				return nil
			}
			n := 0
			for _, g := range groups {
				n += len(g.Duplicates)
			}
			fmt.Fprintf(out, "Found %d duplicate labels in %d groups (of %d labels):\n", n, len(groups), len(records))
			for _, g := range groups {
				fmt.Fprintf(out, "  keep %s, duplicates: %s\n", g.Keep, strings.Join(g.Duplicates, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recordsPath, "records", "", "Directory of <id>.json labels, or a .jsonl/.parquet bundle")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the groups as YAML")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}
