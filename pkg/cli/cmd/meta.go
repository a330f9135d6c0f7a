package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rzbill/nocodb-cli/pkg/api/client"
	"github.com/rzbill/nocodb-cli/pkg/cli/format"
)

func newBasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bases",
		Short: "Inspect bases",
	}
	cmd.AddCommand(newBasesListCmd())
	return cmd
}

func newBasesListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bases visible to the configured token",
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := newMetaClient()
			if err != nil {
				return err
			}
			bases, err := meta.ListBases(context.Background())
			if err != nil {
				return err
			}

			if output != "" && output != "table" {
				return outputStructured(bases, output)
			}
			if len(bases) == 0 {
				format.Info("No bases")
				return nil
			}
			table := newListTable([]string{"ID", "TITLE"})
			for _, b := range bases {
				table.AddRow(b.ID, b.Title)
			}
			return table.Render()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")
	return cmd
}

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Inspect tables",
	}
	cmd.AddCommand(newTablesListCmd())
	return cmd
}

func newTablesListCmd() *cobra.Command {
	var base string
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tables of a base",
		Long: `List tables of a base.

The base can be given by id, by alias, or defaults to the effective
workspace's base id.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager()
			if err != nil {
				return err
			}
			api, err := newAPIClient(mgr)
			if err != nil {
				return err
			}

			baseID := base
			if baseID == "" {
				eff := mgr.EffectiveConfig(configOverridesFromFlags())
				if eff.Workspace == nil || eff.Workspace.BaseID == "" {
					return fmt.Errorf("no base id; pass --base or set one on the workspace")
				}
				baseID = eff.Workspace.BaseID
			} else {
				baseID = mgr.ResolveAlias(baseID).ID
			}

			tables, err := client.NewMetaClient(api).ListTables(context.Background(), baseID)
			if err != nil {
				return err
			}

			if output != "" && output != "table" {
				return outputStructured(tables, output)
			}
			if len(tables) == 0 {
				format.Info("No tables in base %s", baseID)
				return nil
			}
			table := newListTable([]string{"ID", "TITLE"})
			for _, t := range tables {
				table.AddRow(t.ID, t.Title)
			}
			return table.Render()
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "base id or alias (default: effective workspace base id)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")
	return cmd
}

func newMetaClient() (*client.MetaClient, error) {
	mgr, err := newConfigManager()
	if err != nil {
		return nil, err
	}
	api, err := newAPIClient(mgr)
	if err != nil {
		return nil, err
	}
	return client.NewMetaClient(api), nil
}
