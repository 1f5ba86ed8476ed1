package cli

import (
	"fmt"
	"os"

	"github.com/me/pricedesk/internal/export"
	"github.com/me/pricedesk/internal/listing"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var format, output, filter string

	cmd := &cobra.Command{
		Use:   "export <type>",
		Short: "Export a pricing resource to CSV or XLSX",
		Long: "Export every item of a pricing resource that matches --filter, across all pages, " +
			"with the same columns as list. Writes to stdout unless -o is given.",
		Example: `  pricedesk export data --format xlsx -o data-plans.xlsx
  pricedesk export airtime --filter 1 > mtn.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := lookupSchema(args[0])
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if err := requireLogin(); err != nil {
				return err
			}

			c := listing.New(schema, client, notifier, logger)
			items, err := c.LoadAll(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("load %s: %w", schema.Name, err)
			}
			table := export.NewTable(schema, items)

			if output == "" {
				return export.Write(cmd.OutOrStdout(), f, table)
			}
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := export.Write(file, f, table); err != nil {
				file.Close()
				return fmt.Errorf("write %s: %w", output, err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d %s items to %s\n", len(items), schema.Name, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format (csv, xlsx)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&filter, "filter", "", "Filter value for the resource's filter field")
	return cmd
}
