package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rzbill/nocodb-cli/pkg/cli/format"
	"github.com/rzbill/nocodb-cli/pkg/config"
)

func newAliasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage workspace aliases",
		Long: `Manage workspace aliases.

An alias maps a friendly name to a remote identifier (a table or base id),
scoped to a workspace. Aliases can be used wherever a table or base
identifier is expected, either bare (resolved against the active workspace)
or namespaced as "workspace.alias".`,
	}

	cmd.AddCommand(newAliasSetCmd())
	cmd.AddCommand(newAliasListCmd())
	cmd.AddCommand(newAliasRemoveCmd())
	cmd.AddCommand(newAliasResolveCmd())

	return cmd
}

// aliasWorkspace picks the target workspace: --workspace flag, else active.
func aliasWorkspace(mgr *config.Manager, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if name, ok := mgr.GetActiveWorkspaceName(); ok {
		return name, nil
	}
	return "", fmt.Errorf("no active workspace; pass --workspace or run 'nocodb-cli workspace use'")
}

func newAliasSetCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "set [alias] [id]",
		Short: "Set an alias in a workspace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager()
			if err != nil {
				return err
			}
			ws, err := aliasWorkspace(mgr, workspace)
			if err != nil {
				return err
			}
			if err := mgr.SetAlias(ws, args[0], args[1]); err != nil {
				return err
			}
			format.Success("Alias %s.%s -> %s", ws, args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace to modify (default: active workspace)")
	return cmd
}

func newAliasListCmd() *cobra.Command {
	var workspace string
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List aliases of a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager()
			if err != nil {
				return err
			}
			wsName, err := aliasWorkspace(mgr, workspace)
			if err != nil {
				return err
			}
			ws, ok := mgr.GetWorkspace(wsName)
			if !ok {
				return fmt.Errorf("workspace %q does not exist", wsName)
			}

			if output != "" && output != "table" {
				return outputStructured(ws.Aliases, output)
			}

			if len(ws.Aliases) == 0 {
				format.Info("No aliases in workspace %q", wsName)
				return nil
			}
			names := make([]string, 0, len(ws.Aliases))
			for alias := range ws.Aliases {
				names = append(names, alias)
			}
			sort.Strings(names)

			table := newListTable([]string{"ALIAS", "ID"})
			for _, alias := range names {
				table.AddRow(alias, ws.Aliases[alias])
			}
			return table.Render()
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace to list (default: active workspace)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")
	return cmd
}

func newAliasRemoveCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "remove [alias]",
		Short: "Remove an alias from a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager()
			if err != nil {
				return err
			}
			ws, err := aliasWorkspace(mgr, workspace)
			if err != nil {
				return err
			}
			removed, err := mgr.RemoveAlias(ws, args[0])
			if err != nil {
				return err
			}
			if !removed {
				format.Warning("Alias %q does not exist in workspace %q", args[0], ws)
				return nil
			}
			format.Success("Alias %q removed from workspace %q", args[0], ws)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace to modify (default: active workspace)")
	return cmd
}

func newAliasResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [name]",
		Short: "Show what a name resolves to",
		Long: `Show what a name resolves to.

Resolution order: "workspace.alias" namespaced form, then an alias in the
active workspace, then a workspace name with a default base id, then the
input itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager()
			if err != nil {
				return err
			}
			res := mgr.ResolveAlias(args[0])
			if res.WorkspaceName != "" {
				format.Info("%s (workspace %s)", res.ID, res.WorkspaceName)
			} else {
				format.Info("%s", res.ID)
			}
			return nil
		},
	}
	return cmd
}
