package cli

import (
	"fmt"

	"github.com/me/pricedesk/internal/listing"
	"github.com/me/pricedesk/internal/resource"
	"github.com/spf13/cobra"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and change service settings",
	}
	cmd.AddCommand(newSettingsListCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsListCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}
			c := listing.New(settingsSchema(), client, notifier, logger)
			if err := c.Load(cmd.Context(), "", page); err != nil {
				return fmt.Errorf("list settings: %w", err)
			}
			printView(cmd.OutOrStdout(), c.View())
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a setting, creating it if absent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(); err != nil {
				return err
			}
			key, value := args[0], args[1]
			schema := settingsSchema()
			c := listing.New(schema, client, notifier, logger)
			items, err := c.LoadAll(cmd.Context(), "")
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			values := map[string]string{"key": key, "value": value}
			for _, it := range items {
				if it.String("key") == key {
					if err := c.UpdateItem(cmd.Context(), it.ID, values); err != nil {
						return fmt.Errorf("update setting %s: %w", key, err)
					}
					return nil
				}
			}
			c.OpenCreate()
			if err := c.Create(cmd.Context(), values); err != nil {
				return fmt.Errorf("create setting %s: %w", key, err)
			}
			return nil
		},
	}
}

func settingsSchema() resource.Schema {
	schema, ok := registry.Lookup(resource.Settings.Name)
	if !ok {
		return resource.Settings
	}
	return schema
}
