package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rzbill/nocodb-cli/pkg/cli/format"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

func newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspace profiles",
		Long: `Manage workspace profiles.

A workspace binds a NocoDB endpoint URL, auth headers, a default base id,
and a set of friendly-name aliases. One workspace can be marked active and
is used by default for all row and meta commands.`,
	}

	cmd.AddCommand(newWorkspaceAddCmd())
	cmd.AddCommand(newWorkspaceListCmd())
	cmd.AddCommand(newWorkspaceShowCmd())
	cmd.AddCommand(newWorkspaceUseCmd())
	cmd.AddCommand(newWorkspaceRemoveCmd())

	return cmd
}

func newWorkspaceAddCmd() *cobra.Command {
	var baseURL string
	var token string
	var baseID string
	var workspaceID string

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add or update a workspace profile",
		Long: `Add or update a workspace profile.

The first workspace added is automatically marked active.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if baseURL == "" {
				return fmt.Errorf("--base-url is required")
			}

			mgr, err := newConfigManager()
			if err != nil {
				return err
			}

			ws := &types.WorkspaceConfig{
				BaseURL:     baseURL,
				BaseID:      baseID,
				WorkspaceID: workspaceID,
				Headers:     map[string]string{},
			}
			if token != "" {
				ws.Headers[types.AuthHeaderName] = token
			}

			first := len(mgr.ListWorkspaces()) == 0
			if err := mgr.AddWorkspace(name, ws); err != nil {
				return err
			}
			if first {
				if err := mgr.SetActiveWorkspace(name); err != nil {
					return err
				}
			}

			format.Success("Workspace %q saved", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "NocoDB endpoint URL (required)")
	cmd.Flags().StringVar(&token, "token", "", "API token stored in the workspace headers")
	cmd.Flags().StringVar(&baseID, "base-id", "", "default base id for this workspace")
	cmd.Flags().StringVar(&workspaceID, "workspace-id", "", "remote workspace id")

	return cmd
}

func newWorkspaceListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workspace profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager()
			if err != nil {
				return err
			}

			names := mgr.ListWorkspaces()
			if len(names) == 0 {
				format.Info("No workspaces configured")
				return nil
			}

			active, _ := mgr.GetActiveWorkspaceName()

			if output != "" && output != "table" {
				view := make(map[string]*types.WorkspaceConfig, len(names))
				for _, name := range names {
					ws, _ := mgr.GetWorkspace(name)
					maskWorkspaceSecrets(ws)
					view[name] = ws
				}
				return outputStructured(view, output)
			}

			table := newListTable([]string{"", "NAME", "BASE URL", "BASE ID", "ALIASES"})
			for _, name := range names {
				ws, _ := mgr.GetWorkspace(name)
				marker := " "
				if name == active {
					marker = "*"
				}
				table.AddRow(marker, name, ws.BaseURL, ws.BaseID, fmt.Sprintf("%d", len(ws.Aliases)))
			}
			return table.Render()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")
	return cmd
}

func newWorkspaceShowCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show one workspace profile",
		Long: `Show one workspace profile.

Without a name, the active workspace is shown. Header values that look like
secrets are masked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager()
			if err != nil {
				return err
			}

			var name string
			if len(args) > 0 {
				name = args[0]
			} else {
				var ok bool
				if name, ok = mgr.GetActiveWorkspaceName(); !ok {
					return fmt.Errorf("no active workspace; pass a workspace name or run 'nocodb-cli workspace use'")
				}
			}

			ws, ok := mgr.GetWorkspace(name)
			if !ok {
				return fmt.Errorf("workspace %q does not exist", name)
			}
			maskWorkspaceSecrets(ws)

			if output != "" && output != "text" {
				return outputStructured(ws, output)
			}

			format.Heading("Workspace %q", name)
			format.Info("Base URL: %s", ws.BaseURL)
			if ws.BaseID != "" {
				format.Info("Base ID:  %s", ws.BaseID)
			}
			if ws.WorkspaceID != "" {
				format.Info("Workspace ID: %s", ws.WorkspaceID)
			}
			for k, v := range ws.Headers {
				format.Muted("Header:   %s: %s", k, v)
			}
			for alias, id := range ws.Aliases {
				format.Muted("Alias:    %s -> %s", alias, id)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")
	return cmd
}

func newWorkspaceUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use [name]",
		Short: "Switch the active workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager()
			if err != nil {
				return err
			}
			if err := mgr.SetActiveWorkspace(args[0]); err != nil {
				return err
			}
			format.Success("Switched to workspace %q", args[0])
			return nil
		},
	}
	return cmd
}

func newWorkspaceRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove a workspace profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager()
			if err != nil {
				return err
			}
			removed, err := mgr.RemoveWorkspace(args[0])
			if err != nil {
				return err
			}
			if !removed {
				format.Warning("Workspace %q does not exist", args[0])
				return nil
			}
			format.Success("Workspace %q removed", args[0])
			return nil
		},
	}
	return cmd
}

// maskWorkspaceSecrets masks the auth token header for display.
func maskWorkspaceSecrets(ws *types.WorkspaceConfig) {
	if ws == nil {
		return
	}
	if token, ok := ws.Headers[types.AuthHeaderName]; ok {
		ws.Headers[types.AuthHeaderName] = maskToken(token)
	}
}
