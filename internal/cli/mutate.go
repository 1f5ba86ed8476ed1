package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/me/pricedesk/internal/listing"
	"github.com/me/pricedesk/internal/resource"
	"github.com/me/pricedesk/pkg/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// readValues merges a YAML payload file and --set KEY=VALUE pairs, the pairs
// taking precedence. Only fields of schema are accepted.
func readValues(schema resource.Schema, file string, sets []string) (map[string]string, error) {
	values := map[string]string{}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse payload %s: %w", file, err)
		}
		for k, v := range doc {
			values[k] = model.Stringify(v)
		}
	}

	for _, kv := range sets {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: expected KEY=VALUE", kv)
		}
		values[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	for k := range values {
		if _, ok := schema.Field(k); !ok {
			return nil, fmt.Errorf("unknown field %q for %s", k, schema.Name)
		}
	}
	return values, nil
}

func newCreateCmd() *cobra.Command {
	var file string
	var sets []string

	cmd := &cobra.Command{
		Use:   "create <type>",
		Short: "Create a pricing item",
		Example: `  pricedesk create airtime --set network_id=1 --set buy_price=98.5 --set percentage=2
  pricedesk create data --file plan.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := lookupSchema(args[0])
			if err != nil {
				return err
			}
			if err := requireLogin(); err != nil {
				return err
			}
			values, err := readValues(schema, file, sets)
			if err != nil {
				return err
			}

			c := listing.New(schema, client, notifier, logger)
			c.OpenCreate()
			if err := c.Create(cmd.Context(), values); err != nil {
				return fmt.Errorf("create %s: %w", schema.Name, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with field values")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as KEY=VALUE (repeatable)")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var file string
	var sets []string

	cmd := &cobra.Command{
		Use:   "update <type> <id>",
		Short: "Update a pricing item",
		Long: "Update a pricing item. Fields not given keep the values currently listed " +
			"for the item, so only the changed fields need to be passed.",
		Example: `  pricedesk update cable 7 --set sell_price=4650`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := lookupSchema(args[0])
			if err != nil {
				return err
			}
			if err := requireLogin(); err != nil {
				return err
			}
			changes, err := readValues(schema, file, sets)
			if err != nil {
				return err
			}

			c := listing.New(schema, client, notifier, logger)
			items, err := c.LoadAll(cmd.Context(), "")
			if err != nil {
				return fmt.Errorf("load %s: %w", schema.Name, err)
			}
			values := map[string]string{}
			for _, it := range items {
				if it.ID == args[1] {
					values = schema.FormValues(it)
					break
				}
			}
			for k, v := range changes {
				values[k] = v
			}

			if err := c.UpdateItem(cmd.Context(), args[1], values); err != nil {
				return fmt.Errorf("update %s %s: %w", schema.Name, args[1], err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with field values")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as KEY=VALUE (repeatable)")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Delete a pricing item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := lookupSchema(args[0])
			if err != nil {
				return err
			}
			if err := requireLogin(); err != nil {
				return err
			}

			c := listing.New(schema, client, notifier, logger)
			if err := c.RequestDelete(args[1]); err != nil {
				return err
			}
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete %s %s? [y/N] ", schema.Name, args[1])
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(line)); a != "y" && a != "yes" {
					c.CancelDelete()
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			if err := c.ConfirmDelete(cmd.Context()); err != nil {
				return fmt.Errorf("delete %s %s: %w", schema.Name, args[1], err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
