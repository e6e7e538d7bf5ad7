package auditcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/labelaudit/internal/consistency"
	"github.com/lehigh-university-libraries/labelaudit/internal/dataset"
)

// NewConsistencyCmd creates the consistency command
func NewConsistencyCmd() *cobra.Command {
	var recordsDir, documentsDir, documentExts string
	var inventory bool

	cmd := &cobra.Command{
		Use:   "consistency",
		Short: "List labels without a document and documents without a label",
		Long: `Consistency compares the basenames of the label files with the basenames of
the documents and lists the identifiers found on only one side.`,
		Example: `  labelaudit consistency --records labels/ --documents invoices/
  labelaudit consistency --records labels/ --documents invoices/ --document-ext .pdf,.docx --inventory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := dataset.Inventory(recordsDir, ".json")
			if err != nil {
				return fmt.Errorf("failed to list labels: %w", err)
			}
			documents, err := dataset.Inventory(documentsDir, splitList(documentExts)...)
			if err != nil {
				return fmt.Errorf("failed to list documents: %w", err)
			}

			out := cmd.OutOrStdout()
			if inventory {
				for _, inv := range []*dataset.InventoryReport{records, documents} {
					if err := inv.WriteText(out); err != nil {
						return err
					}
					fmt.Fprintln(out)
				}
			}
			return consistency.Check(records.IDs(), documents.IDs()).WriteText(out)
		},
	}

	cmd.Flags().StringVar(&recordsDir, "records", "", "Directory of <id>.json labels")
	cmd.Flags().StringVar(&documentsDir, "documents", "", "Directory of source documents")
	cmd.Flags().StringVar(&documentExts, "document-ext", "", "Comma-separated document extensions to consider (default all)")
	cmd.Flags().BoolVar(&inventory, "inventory", false, "Also describe both directories")
	_ = cmd.MarkFlagRequired("records")
	_ = cmd.MarkFlagRequired("documents")

	return cmd
}
