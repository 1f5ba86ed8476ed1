package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/me/pricedesk/internal/listing"
	"github.com/me/pricedesk/internal/resource"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var filter string
	var page int

	cmd := &cobra.Command{
		Use:   "list <type>",
		Short: "List a pricing resource",
		Long:  "List one page of a pricing resource. Types: airtime, cable, crypto, data, giftcard, settings.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := lookupSchema(args[0])
			if err != nil {
				return err
			}
			if err := requireLogin(); err != nil {
				return err
			}

			c := listing.New(schema, client, notifier, logger)
			if err := c.Load(cmd.Context(), filter, page); err != nil {
				return fmt.Errorf("list %s: %w", schema.Name, err)
			}
			printView(cmd.OutOrStdout(), c.View())
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Filter value for the resource's filter field")
	cmd.Flags().IntVar(&page, "page", 1, "Page number (clamped to the available range)")
	return cmd
}

// printView prints the visible window as a fixed-width table followed by
// the page indicator.
func printView(w io.Writer, v listing.View) {
	schema := v.Schema
	if len(v.Items) == 0 {
		fmt.Fprintf(w, "No %s found.\n", strings.ToLower(schema.Title))
	} else {
		printRow(w, schema.Columns, func(col resource.Column) string { return col.Header })
		printRow(w, schema.Columns, func(col resource.Column) string { return strings.Repeat("-", len(col.Header)) })
		for _, it := range v.Items {
			printRow(w, schema.Columns, func(col resource.Column) string { return schema.Cell(it, col.Field) })
		}
	}

	fmt.Fprintf(w, "\nPage %d of %d (%d items", v.Page.Page, v.Page.TotalPages(), v.Filtered)
	if v.Filter.Active() {
		fmt.Fprintf(w, ", %s = %q", schema.FilterField, v.Filter.Value)
	}
	fmt.Fprintln(w, ")")
}

func printRow(w io.Writer, cols []resource.Column, cell func(resource.Column) string) {
	parts := make([]string, len(cols))
	for i, col := range cols {
		s := cell(col)
		if r := []rune(s); col.Width > 0 && len(r) > col.Width {
			s = string(r[:col.Width-1]) + "…"
		}
		parts[i] = fmt.Sprintf("%-*s", col.Width, s)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}
